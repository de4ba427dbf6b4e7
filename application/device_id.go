package application

import "fmt"

type HardwareIDProvider interface {
	HardwareID() (uint64, error)
}

// FormatDeviceID renders the upper 16 bits followed by the lower 32 bits of
// id as 12 uppercase, zero padded hex digits.
func FormatDeviceID(id uint64) string {
	return fmt.Sprintf("%04X%08X", uint16(id>>48), uint32(id))
}
