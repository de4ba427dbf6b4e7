package adapters

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"

	"device-to-mqtt/application"
)

var (
	ErrNoHardwareAddr = fmt.Errorf("no network interface with a hardware address")
)

// StaticHardwareID is a hardware id supplied by configuration.
type StaticHardwareID uint64

func (s StaticHardwareID) HardwareID() (uint64, error) {
	return uint64(s), nil
}

// ParseHardwareID parses a hex hardware id, with or without a 0x prefix.
func ParseHardwareID(s string) (StaticHardwareID, error) {
	hex := strings.TrimSpace(s)
	hex = strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "0X")

	id, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hardware id %q: %w", s, err)
	}
	return StaticHardwareID(id), nil
}

// InterfaceHardwareID reads the MAC address of a network interface. An empty
// Name picks the first non loopback interface with a 6 byte address.
type InterfaceHardwareID struct {
	Name string

	InterfacesFunc func() ([]net.Interface, error)
}

func (h InterfaceHardwareID) HardwareID() (uint64, error) {
	interfacesFunc := h.InterfacesFunc
	if interfacesFunc == nil {
		interfacesFunc = net.Interfaces
	}

	interfaces, err := interfacesFunc()
	if err != nil {
		return 0, err
	}

	for _, iface := range interfaces {
		if h.Name != "" && iface.Name != h.Name {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) != 6 {
			continue
		}
		return PackMAC(iface.HardwareAddr), nil
	}

	if h.Name != "" {
		return 0, fmt.Errorf("%w: %s", ErrNoHardwareAddr, h.Name)
	}
	return 0, ErrNoHardwareAddr
}

// PackMAC lays mac out like the ESP32 efuse MAC, first octet in the lowest byte.
func PackMAC(mac net.HardwareAddr) uint64 {
	var b [8]byte
	copy(b[:], mac)
	return binary.LittleEndian.Uint64(b[:])
}

var _ application.HardwareIDProvider = StaticHardwareID(0)
var _ application.HardwareIDProvider = InterfaceHardwareID{}
