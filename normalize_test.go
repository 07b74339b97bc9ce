package winiface

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	raw := rawAdapter("{A}", 5, "Ethernet",
		ipv6("fe80::1"),
		ipv4("192.168.1.50"),
	)
	raw.Anycast = []RawAddress{ipv6("2001:db8::1")}
	raw.Multicast = []RawAddress{ipv4("224.0.0.1")}

	info, err := Normalize(&raw, false)
	require.NoError(t, err)
	assert.Equal(t, "Ethernet", info.Name)
	assert.Equal(t, "Ethernet adapter", info.Description)
	assert.Equal(t, 5, info.Index)
	assert.Equal(t, "{A}", info.ID)
	assert.Equal(t, "00:11:22:33:44:05", info.MAC)
	assert.Equal(t, uint32(10), info.IPv4Metric)
	assert.Equal(t, uint32(20), info.IPv6Metric)
	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("fe80::1"),
		netip.MustParseAddr("192.168.1.50"),
	}, info.IPs)

	info, err = Normalize(&raw, true)
	require.NoError(t, err)
	assert.Len(t, info.IPs, 4)
	assert.Equal(t, netip.MustParseAddr("2001:db8::1"), info.IPs[2])
	assert.Equal(t, netip.MustParseAddr("224.0.0.1"), info.IPs[3])
}

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		name   string
		addr   []byte
		length int
		want   string
	}{
		{"six bytes", []byte{0xAA, 0xBB, 0xCC, 0x0D, 0x0E, 0x0F}, 6, "aa:bb:cc:0d:0e:0f"},
		{"eight byte buffer, six valid", []byte{1, 2, 3, 4, 5, 6, 7, 8}, 6, "01:02:03:04:05:06"},
		{"tunnel adapter", []byte{0, 0, 0, 0, 0, 0, 0, 0xe0}, 8, ""},
		{"no address", nil, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawAdapter{AdapterName: "{A}", PhysicalAddress: tt.addr, PhysicalLength: tt.length}
			info, err := Normalize(&raw, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.MAC)
		})
	}
}

func TestNormalizeSkipsBadBuffers(t *testing.T) {
	raw := rawAdapter("{A}", 5, "Ethernet",
		RawAddress{Family: FamilyIPv4},
		RawAddress{Family: FamilyIPv6, Bytes: []byte{1, 2, 3, 4}},
		ipv4("10.0.0.1"),
	)

	info, err := Normalize(&raw, false)
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("10.0.0.1")}, info.IPs)
}

func TestNormalizeMalformed(t *testing.T) {
	raw := rawAdapter("{A}", 5, "Ethernet", RawAddress{Family: 17, Bytes: []byte{1, 2}})

	_, err := Normalize(&raw, false)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	raw = rawAdapter("{A}", 5, "Ethernet")
	raw.Multicast = []RawAddress{{Family: 99}}
	_, err = Normalize(&raw, false)
	assert.NoError(t, err, "multicast list is ignored unless extended")
	_, err = Normalize(&raw, true)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}
