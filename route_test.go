package winiface

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	modern bool
	rows4  []ForwardRow
	rows6  []ForwardRow
	legacy []LegacyForwardRow
	err    error
}

func (f *fakeTable) ModernAvailable() bool { return f.modern }

func (f *fakeTable) ForwardTable(_ context.Context, family AddressFamily) ([]ForwardRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	if family == FamilyIPv6 {
		return f.rows6, nil
	}
	return f.rows4, nil
}

func (f *fakeTable) LegacyForwardTable(context.Context) ([]LegacyForwardRow, error) {
	return f.legacy, f.err
}

func routeRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	lo := rawAdapter("{LO}", 1, "Loopback", ipv4("127.0.0.1"), ipv6("::1"))
	lo.Loopback = true
	reg, _ := loadedRegistry(t,
		[]RawAdapter{
			lo,
			rawAdapter("{A}", 5, "Ethernet", ipv4("192.168.1.50"), ipv6("2001:db8::50"), ipv6("fe80::50")),
			rawAdapter("{B}", 7, "Wi-Fi", ipv4("0.0.0.0")),
		},
		[]string{device("{LO}"), device("{A}"), device("{B}")},
		opts...,
	)
	return reg
}

func TestRoutesEffectiveMetric(t *testing.T) {
	reg := routeRegistry(t)
	table := &fakeTable{
		modern: true,
		rows4: []ForwardRow{
			{Destination: netip.MustParsePrefix("0.0.0.0/0"), NextHop: netip.MustParseAddr("192.168.1.1"), InterfaceIndex: 5, Metric: 256},
		},
	}

	routes := NewRouteBuilder(reg, table, nil).Routes(context.Background())
	require.Len(t, routes, 1)
	r := routes[0]
	assert.Equal(t, netip.MustParsePrefix("0.0.0.0/0"), r.Destination)
	assert.Equal(t, netip.MustParseAddr("0.0.0.0"), r.Netmask())
	assert.Equal(t, netip.MustParseAddr("192.168.1.1"), r.NextHop)
	assert.Equal(t, "{A}", r.Interface.ID)
	assert.Equal(t, netip.MustParseAddr("192.168.1.50"), r.Source)
	assert.Equal(t, uint32(266), r.Metric)
}

func TestRoutesSkipsUnresolvable(t *testing.T) {
	reg := routeRegistry(t)
	table := &fakeTable{
		modern: true,
		rows4: []ForwardRow{
			{Destination: netip.MustParsePrefix("10.0.0.0/8"), InterfaceIndex: 99, Metric: 1},
			{Destination: netip.MustParsePrefix("10.1.0.0/16"), InterfaceIndex: 7, Metric: 1},
			{Destination: netip.MustParsePrefix("127.0.0.0/8"), InterfaceIndex: 1, Metric: 1},
		},
	}

	routes := NewRouteBuilder(reg, table, nil).Routes(context.Background())
	require.Len(t, routes, 1)
	assert.Equal(t, "{LO}", routes[0].Interface.ID)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), routes[0].Source)
}

func TestRoutesLegacy(t *testing.T) {
	reg := routeRegistry(t)
	table := &fakeTable{
		legacy: []LegacyForwardRow{{
			Destination:    netip.MustParseAddr("192.168.1.0"),
			Mask:           netip.MustParseAddr("255.255.255.0"),
			NextHop:        netip.MustParseAddr("0.0.0.0"),
			InterfaceIndex: 5,
			Metric:         20,
		}},
	}

	routes := NewRouteBuilder(reg, table, nil).Routes(context.Background())
	require.Len(t, routes, 1)
	assert.Equal(t, netip.MustParsePrefix("192.168.1.0/24"), routes[0].Destination)
	assert.Equal(t, netip.MustParseAddr("255.255.255.0"), routes[0].Netmask())
	assert.Equal(t, uint32(30), routes[0].Metric)
}

func TestRoutesFailure(t *testing.T) {
	logger, logs := observedLogger()
	reg := routeRegistry(t, WithLogger(logger))
	b := NewRouteBuilder(reg, &fakeTable{modern: true, err: errors.New("access denied")}, nil)

	assert.Empty(t, b.Routes(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Error building IPv4 routing table").Len())

	assert.Empty(t, b.Routes6(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Error building IPv6 routing table").Len())

	b = NewRouteBuilder(reg, &fakeTable{modern: true}, nil)
	assert.Empty(t, b.Routes(context.Background()))
	assert.Equal(t, 1, logs.FilterMessageSnippet("No default IPv4 routes found").Len())
}

func TestRoutesFilters(t *testing.T) {
	reg := routeRegistry(t)
	table := &fakeTable{
		modern: true,
		rows4: []ForwardRow{
			{Destination: netip.MustParsePrefix("0.0.0.0/0"), InterfaceIndex: 5, Metric: 256},
			{Destination: netip.MustParsePrefix("192.168.1.0/24"), InterfaceIndex: 5, Metric: 1},
			{Destination: netip.MustParsePrefix("127.0.0.0/8"), InterfaceIndex: 1, Metric: 1},
		},
	}
	b := NewRouteBuilder(reg, table, nil)
	ctx := context.Background()

	assert.Len(t, b.Routes(ctx), 3)
	assert.Len(t, b.Routes(ctx, WithInterfaceIndex(5)), 2)
	assert.Len(t, b.Routes(ctx, WithInterfaceName("ETHERNET")), 2)
	assert.Len(t, b.Routes(ctx, WithInterfaceIndex(5), WithMetric(11)), 1)

	routes := b.Routes(ctx, WithDestinationPrefix(netip.MustParsePrefix("127.0.0.0/8")))
	require.Len(t, routes, 1)
	assert.True(t, routes[0].Interface.IsLoopback())
}

func TestRoutes6(t *testing.T) {
	reg := routeRegistry(t)
	table := &fakeTable{
		modern: true,
		rows6: []ForwardRow{
			{Destination: netip.MustParsePrefix("::/0"), NextHop: netip.MustParseAddr("fe80::1"), InterfaceIndex: 5, Metric: 256},
			{Destination: netip.MustParsePrefix("fe80::/64"), InterfaceIndex: 5, Metric: 256},
			{Destination: netip.MustParsePrefix("ff00::/8"), InterfaceIndex: 5, Metric: 256},
			{Destination: netip.MustParsePrefix("::/128"), InterfaceIndex: 5, Metric: 256},
			{Destination: netip.MustParsePrefix("::/0"), InterfaceIndex: 1, Metric: 256},
			{Destination: netip.MustParsePrefix("::1/128"), InterfaceIndex: 1, Metric: 256},
		},
	}

	routes := NewRouteBuilder(reg, table, nil).Routes6(context.Background())
	require.Len(t, routes, 3)

	assert.Equal(t, netip.MustParsePrefix("::/0"), routes[0].Destination)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("2001:db8::50")}, routes[0].Candidates)
	assert.Equal(t, uint32(276), routes[0].Metric)

	assert.Equal(t, []netip.Addr{netip.MustParseAddr("fe80::50")}, routes[1].Candidates)

	// ff00::/8 没有候选源地址，路由被丢弃
	assert.Equal(t, netip.MustParsePrefix("::1/128"), routes[2].Destination)
	assert.Equal(t, []netip.Addr{netip.IPv6Loopback()}, routes[2].Candidates)
}

func TestRoutes6Unavailable(t *testing.T) {
	reg := routeRegistry(t)
	table := &fakeTable{rows6: []ForwardRow{{Destination: netip.MustParsePrefix("::/0"), InterfaceIndex: 5}}}

	assert.Empty(t, NewRouteBuilder(reg, table, nil).Routes6(context.Background()))
}

func TestRoutes6CustomSelector(t *testing.T) {
	reg := routeRegistry(t)
	table := &fakeTable{
		modern: true,
		rows6:  []ForwardRow{{Destination: netip.MustParsePrefix("2001:db8::/32"), InterfaceIndex: 5}},
	}

	var seen []LocalAddr6
	sel := func(_ netip.Prefix, addrs []LocalAddr6) []netip.Addr {
		seen = addrs
		return nil
	}
	assert.Empty(t, NewRouteBuilder(reg, table, sel).Routes6(context.Background()))
	require.Len(t, seen, 2)
	for _, a := range seen {
		assert.Equal(t, "{A}", a.Interface.ID)
	}
}

func TestDefaultInterface(t *testing.T) {
	reg := routeRegistry(t)
	table := &fakeTable{
		modern: true,
		rows4: []ForwardRow{
			{Destination: netip.MustParsePrefix("127.0.0.0/8"), InterfaceIndex: 1},
			{Destination: netip.MustParsePrefix("0.0.0.0/0"), InterfaceIndex: 5},
		},
	}
	b := NewRouteBuilder(reg, table, nil)

	iface := b.DefaultInterface(b.Routes(context.Background()))
	require.NotNil(t, iface)
	assert.Equal(t, "{A}", iface.ID)

	assert.Same(t, reg.Loopback(), b.DefaultInterface(nil))
}
