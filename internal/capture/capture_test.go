package capture

import (
	"errors"
	"testing"

	"github.com/gopacket/gopacket/pcap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubDevs(t *testing.T, fn func() ([]pcap.Interface, error)) {
	t.Helper()
	original := findAllDevs
	t.Cleanup(func() { findAllDevs = original })
	findAllDevs = fn
}

func TestDeviceNames(t *testing.T) {
	calls := 0
	stubDevs(t, func() ([]pcap.Interface, error) {
		calls++
		return []pcap.Interface{
			{Name: `\Device\NPF_{A}`, Description: "Ethernet adapter"},
			{Name: `\Device\NPF_Loopback`},
		}, nil
	})

	var b Backend
	names, err := b.DeviceNames()
	require.NoError(t, err)
	assert.Equal(t, []string{`\Device\NPF_{A}`, `\Device\NPF_Loopback`}, names)

	// 第二次调用命中缓存
	_, err = b.DeviceNames()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	b.Refresh()
	_, err = b.DeviceNames()
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDeviceNamesError(t *testing.T) {
	stubDevs(t, func() ([]pcap.Interface, error) {
		return nil, errors.New("wpcap.dll missing")
	})

	var b Backend
	names, err := b.DeviceNames()
	assert.Error(t, err)
	assert.Empty(t, names)
}

func TestDeviceNamesEmpty(t *testing.T) {
	stubDevs(t, func() ([]pcap.Interface, error) {
		return []pcap.Interface{}, nil
	})

	var b Backend
	names, err := b.DeviceNames()
	require.NoError(t, err)
	assert.Empty(t, names)
}
