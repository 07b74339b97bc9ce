package manuf

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Wireshark manuf
00:00:0C	Cisco	Cisco Systems, Inc
00:1B:C5	IeeeRegi	IEEE Registration Authority
00:1B:C5:00:00:00/36	Converge	Converging Systems Inc.

08:00:27	PcsCompu	PCS Computer Systems GmbH
`

func TestParseAndLookup(t *testing.T) {
	db, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	tests := []struct {
		mac  string
		want string
		ok   bool
	}{
		{mac: "00:00:0c:12:34:56", want: "Cisco", ok: true},
		{mac: "08:00:27:aa:bb:cc", want: "PcsCompu", ok: true},
		// 更长的前缀优先
		{mac: "00:1b:c5:00:0f:01", want: "Converge", ok: true},
		{mac: "00:1b:c5:10:00:01", want: "IeeeRegi", ok: true},
		{mac: "11:22:33:44:55:66"},
	}
	for _, tc := range tests {
		t.Run(tc.mac, func(t *testing.T) {
			hw, err := net.ParseMAC(tc.mac)
			require.NoError(t, err)

			got, ok := db.Lookup(hw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveMAC(t *testing.T) {
	db, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "Cisco:12:34:56", db.ResolveMAC("00:00:0c:12:34:56"))
	assert.Equal(t, "11:22:33:44:55:66", db.ResolveMAC("11:22:33:44:55:66"))
	assert.Equal(t, "", db.ResolveMAC(""))
}

func TestParseError(t *testing.T) {
	_, err := Parse(strings.NewReader("zz:00:0C\tBroken\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("00:00:0C/99\tBroken\n"))
	assert.Error(t, err)
}
