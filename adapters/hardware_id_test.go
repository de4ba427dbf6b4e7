package adapters

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"device-to-mqtt/application"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHardwareID(t *testing.T) {
	testCases := map[string]uint64{
		"0x1234ABCD56789ABC": 0x1234ABCD56789ABC,
		"1234abcd56789abc":   0x1234ABCD56789ABC,
		"0XA4CF12345678":     0xA4CF12345678,
		" 0x1 ":              1,
	}

	for input, expected := range testCases {
		t.Run(input, func(t *testing.T) {
			id, err := ParseHardwareID(input)
			require.NoError(t, err)

			value, err := id.HardwareID()
			require.NoError(t, err)
			assert.Equal(t, expected, value)
		})
	}
}

func TestParseHardwareID_Invalid(t *testing.T) {
	for _, input := range []string{"", "0x", "xyz", "0x1234ABCD56789ABC00"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseHardwareID(input)
			require.Error(t, err)
		})
	}
}

func TestPackMAC(t *testing.T) {
	mac := net.HardwareAddr{0xA4, 0xCF, 0x12, 0x34, 0x56, 0x78}

	id := PackMAC(mac)
	assert.Equal(t, uint64(0x78563412CFA4), id)
	assert.Equal(t, "00003412CFA4", application.FormatDeviceID(id))
}

func testInterfaces() ([]net.Interface, error) {
	return []net.Interface{
		{Name: "lo", Flags: net.FlagLoopback | net.FlagUp},
		{Name: "tun0", Flags: net.FlagUp},
		{Name: "eth0", Flags: net.FlagUp, HardwareAddr: net.HardwareAddr{0x02, 0x42, 0xAC, 0x11, 0x00, 0x02}},
		{Name: "wlan0", Flags: net.FlagUp, HardwareAddr: net.HardwareAddr{0xA4, 0xCF, 0x12, 0x34, 0x56, 0x78}},
	}, nil
}

func TestInterfaceHardwareID(t *testing.T) {
	id, err := InterfaceHardwareID{InterfacesFunc: testInterfaces}.HardwareID()
	require.NoError(t, err)
	assert.Equal(t, PackMAC(net.HardwareAddr{0x02, 0x42, 0xAC, 0x11, 0x00, 0x02}), id)

	id, err = InterfaceHardwareID{Name: "wlan0", InterfacesFunc: testInterfaces}.HardwareID()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x78563412CFA4), id)
}

func TestInterfaceHardwareID_NotFound(t *testing.T) {
	_, err := InterfaceHardwareID{Name: "tun0", InterfacesFunc: testInterfaces}.HardwareID()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoHardwareAddr))

	_, err = InterfaceHardwareID{InterfacesFunc: func() ([]net.Interface, error) {
		return nil, nil
	}}.HardwareID()
	assert.Equal(t, ErrNoHardwareAddr, err)

	_, err = InterfaceHardwareID{InterfacesFunc: func() ([]net.Interface, error) {
		return nil, fmt.Errorf("netlink")
	}}.HardwareID()
	require.Error(t, err)
}

func TestInterfaceHardwareID_Registry(t *testing.T) {
	registry, err := application.NewTopicRegistry(application.TopicRegistryParams{
		HardwareID: InterfaceHardwareID{Name: "wlan0", InterfacesFunc: testInterfaces},
	})
	require.NoError(t, err)
	assert.Equal(t, "00003412CFA4", registry.DeviceID())
}
