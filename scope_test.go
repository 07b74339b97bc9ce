package winiface

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeOf(t *testing.T) {
	tests := []struct {
		addr string
		want Scope
	}{
		{"::", ScopeUnspecified},
		{"::1", ScopeLoopback},
		{"fe80::1", ScopeLinkLocal},
		{"fec0::1", ScopeSiteLocal},
		{"2001:db8::1", ScopeGlobal},
		{"fd00::1", ScopeGlobal},
		{"ff01::1", ScopeNodeLocal},
		{"ff02::1", ScopeLinkLocal},
		{"ff05::2", ScopeSiteLocal},
		{"ff0e::1", ScopeGlobal},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, ScopeOf(netip.MustParseAddr(tt.addr)))
		})
	}
}

func TestDefaultSourceSelector(t *testing.T) {
	local := func(s string) LocalAddr6 {
		ip := netip.MustParseAddr(s)
		return LocalAddr6{Addr: ip, Scope: ScopeOf(ip)}
	}
	addrs := []LocalAddr6{
		local("fe80::10"),
		local("2001:db8::10"),
		local("fec0::10"),
		local("2001:db8::20"),
	}
	pfx := netip.MustParsePrefix

	tests := []struct {
		name string
		dst  netip.Prefix
		want []netip.Addr
	}{
		{"default route", pfx("::/0"), []netip.Addr{netip.MustParseAddr("2001:db8::10"), netip.MustParseAddr("2001:db8::20")}},
		{"unspecified host", pfx("::/128"), nil},
		{"link-local", pfx("fe80::/64"), []netip.Addr{netip.MustParseAddr("fe80::10")}},
		{"site-local", pfx("fec0::/10"), []netip.Addr{netip.MustParseAddr("fec0::10")}},
		{"node-local multicast", pfx("ff01::/16"), []netip.Addr{netip.IPv6Loopback()}},
		{"link-local multicast", pfx("ff02::/16"), []netip.Addr{netip.MustParseAddr("fe80::10")}},
		{"global multicast", pfx("ff0e::/16"), []netip.Addr{netip.MustParseAddr("2001:db8::10"), netip.MustParseAddr("2001:db8::20")}},
		{"loopback", pfx("::1/128"), nil},
		{"multicast catch-all", pfx("ff00::/8"), nil},
		{"organization-local multicast", pfx("ff08::/16"), nil},
		{"transient multicast", pfx("ff12::/16"), nil},
		{"unique local", pfx("fd00::/8"), nil},
		{"nat64", pfx("64:ff9b::/96"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultSourceSelector(tt.dst, addrs)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultSourceSelectorPrefersNative(t *testing.T) {
	addrs := []LocalAddr6{
		{Addr: netip.MustParseAddr("2002:c000:204::1"), Scope: ScopeGlobal},
		{Addr: netip.MustParseAddr("2001:db8::1"), Scope: ScopeGlobal},
		{Addr: netip.MustParseAddr("2002:c000:205::1"), Scope: ScopeGlobal},
		{Addr: netip.MustParseAddr("2001:db8::2"), Scope: ScopeGlobal},
	}

	got := DefaultSourceSelector(netip.MustParsePrefix("::/0"), addrs)
	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("2001:db8::1"),
		netip.MustParseAddr("2001:db8::2"),
		netip.MustParseAddr("2002:c000:204::1"),
		netip.MustParseAddr("2002:c000:205::1"),
	}, got)
}
