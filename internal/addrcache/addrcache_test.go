package addrcache

import (
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	const doc = `
interfaces:
  napatech0:
    id: '\Device\NPF_{D3F3C9A2-1B1E-4A8E-9C7D-1E2F3A4B5C6D}'
    ips: [10.0.0.5, "fe80::1"]
  dummy:
    id: "{AAAA}"
`
	got, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, `\Device\NPF_{D3F3C9A2-1B1E-4A8E-9C7D-1E2F3A4B5C6D}`, got["napatech0"].ID)
	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("10.0.0.5"),
		netip.MustParseAddr("fe80::1"),
	}, got["napatech0"].IPs)
	assert.Empty(t, got["dummy"].IPs)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		description string
		doc         string
	}{
		{description: "bad ip", doc: "interfaces:\n  a:\n    id: x\n    ips: [not-an-ip]\n"},
		{description: "missing id", doc: "interfaces:\n  a:\n    ips: [10.0.0.1]\n"},
		{description: "bad yaml", doc: "interfaces: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	got, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, got)

	path := filepath.Join(dir, "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interfaces:\n  a:\n    id: \"{A}\"\n"), 0600))
	got, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "{A}", got["a"].ID)
}
