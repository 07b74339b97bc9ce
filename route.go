package winiface

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"net/netip"
	"strings"

	"go.uber.org/zap"
)

// ForwardTableSource 提供系统转发表。
type ForwardTableSource interface {
	// ModernAvailable 报告 GetIpForwardTable2 是否可用 (Vista 及以上)。
	ModernAvailable() bool
	// ForwardTable 返回指定协议族的转发表。
	ForwardTable(ctx context.Context, family AddressFamily) ([]ForwardRow, error)
	// LegacyForwardTable 返回旧式 IPv4 转发表。
	LegacyForwardTable(ctx context.Context) ([]LegacyForwardRow, error)
}

var errSkipRoute = errors.New("route skipped")

// ---- 过滤器 ----

// RouteEntry 是 Route 和 Route6 的公共视图。
type RouteEntry interface {
	Prefix() netip.Prefix
	Iface() *NetworkInterface
	Cost() uint32
}

func (r *Route) Prefix() netip.Prefix     { return r.Destination }
func (r *Route) Iface() *NetworkInterface { return r.Interface }
func (r *Route) Cost() uint32             { return r.Metric }

func (r *Route6) Prefix() netip.Prefix     { return r.Destination }
func (r *Route6) Iface() *NetworkInterface { return r.Interface }
func (r *Route6) Cost() uint32             { return r.Metric }

// FilterOption 是一个函数类型，用于定义对路由的过滤条件。
type FilterOption func(r RouteEntry) bool

// WithDestinationPrefix 创建一个过滤器，仅保留目标网段完全匹配的路由。
func WithDestinationPrefix(prefix netip.Prefix) FilterOption {
	return func(r RouteEntry) bool {
		return r.Prefix() == prefix
	}
}

// WithInterfaceIndex 创建一个过滤器，仅保留通过指定接口索引的路由。
func WithInterfaceIndex(index int) FilterOption {
	return func(r RouteEntry) bool {
		return r.Iface().Index == index
	}
}

// WithInterfaceName 创建一个过滤器，仅保留通过指定接口名（不区分大小写）的路由。
func WithInterfaceName(name string) FilterOption {
	return func(r RouteEntry) bool {
		return strings.EqualFold(r.Iface().Name, name)
	}
}

// WithMetric 创建一个过滤器，仅保留有效 Metric 等于指定值的路由。
func WithMetric(metric uint32) FilterOption {
	return func(r RouteEntry) bool {
		return r.Cost() == metric
	}
}

func matches(r RouteEntry, filters []FilterOption) bool {
	for _, filter := range filters {
		if !filter(r) {
			return false
		}
	}
	return true
}

// ---- RouteBuilder ----

// RouteBuilder 把系统转发表与 Registry 中的接口关联起来。
// 每次调用都会重新查询转发表，不做缓存。
type RouteBuilder struct {
	reg      *Registry
	table    ForwardTableSource
	selector SourceSelector
	logger   *zap.Logger
}

// NewRouteBuilder 创建一个 RouteBuilder。selector 为 nil 时使用 DefaultSourceSelector。
func NewRouteBuilder(reg *Registry, table ForwardTableSource, selector SourceSelector) *RouteBuilder {
	if selector == nil {
		selector = DefaultSourceSelector
	}
	return &RouteBuilder{
		reg:      reg,
		table:    table,
		selector: selector,
		logger:   reg.logger,
	}
}

// Routes 构建 IPv4 路由表，并可选择性地应用一个或多个过滤器。
// 构建失败时只记录警告并返回空表。
func (b *RouteBuilder) Routes(ctx context.Context, filters ...FilterOption) []Route {
	routes, err := b.routes4(ctx)
	if err != nil {
		b.logger.Warn("Error building IPv4 routing table", zap.Error(err))
		return nil
	}
	if len(routes) == 0 {
		b.logger.Warn("No default IPv4 routes found. Your Windows release may not be supported and you have to enter your routes manually")
		return routes
	}

	res := routes[:0]
	for i := range routes {
		if matches(&routes[i], filters) {
			res = append(res, routes[i])
		}
	}
	return res
}

// Routes6 构建 IPv6 路由表。没有现代转发表 API 的系统上返回空表。
func (b *RouteBuilder) Routes6(ctx context.Context, filters ...FilterOption) []Route6 {
	if !b.table.ModernAvailable() {
		return nil
	}
	routes, err := b.routes6(ctx)
	if err != nil {
		b.logger.Warn("Error building IPv6 routing table", zap.Error(err))
		return nil
	}

	res := routes[:0]
	for i := range routes {
		if matches(&routes[i], filters) {
			res = append(res, routes[i])
		}
	}
	return res
}

// owner 通过索引查找路由所属接口。找不到或没有 IPv4 地址的接口返回 errSkipRoute。
func (b *RouteBuilder) owner(index uint32) (*NetworkInterface, error) {
	iface, err := b.reg.DevFromIndex(int(index))
	if err != nil {
		b.logger.Debug("skipping route", zap.Uint32("ifindex", index), zap.Error(err))
		return nil, errSkipRoute
	}
	if iface.IP.IsValid() && iface.IP.Is4() && iface.IP.IsUnspecified() {
		return nil, errSkipRoute
	}
	return iface, nil
}

func (b *RouteBuilder) routes4(ctx context.Context) ([]Route, error) {
	// 每次调用都重新探测 API 是否可用
	if !b.table.ModernAvailable() {
		return b.legacyRoutes4(ctx)
	}

	rows, err := b.table.ForwardTable(ctx, FamilyIPv4)
	if err != nil {
		return nil, fmt.Errorf("failed to get IPv4 forward table: %w", err)
	}

	routes := make([]Route, 0, len(rows))
	for _, row := range rows {
		iface, err := b.owner(row.InterfaceIndex)
		if err != nil {
			continue
		}
		routes = append(routes, Route{
			Destination: row.Destination,
			NextHop:     row.NextHop,
			Interface:   iface,
			Source:      iface.IP,
			Metric:      row.Metric + iface.IPv4Metric,
		})
	}
	return routes, nil
}

func (b *RouteBuilder) legacyRoutes4(ctx context.Context) ([]Route, error) {
	rows, err := b.table.LegacyForwardTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get legacy IPv4 forward table: %w", err)
	}

	routes := make([]Route, 0, len(rows))
	for _, row := range rows {
		iface, err := b.owner(row.InterfaceIndex)
		if err != nil {
			continue
		}
		mask := row.Mask.As4()
		ones := bits.OnesCount32(uint32(mask[0])<<24 | uint32(mask[1])<<16 | uint32(mask[2])<<8 | uint32(mask[3]))
		routes = append(routes, Route{
			Destination: netip.PrefixFrom(row.Destination, ones),
			NextHop:     row.NextHop,
			Interface:   iface,
			Source:      iface.IP,
			Metric:      row.Metric + iface.IPv4Metric,
		})
	}
	return routes, nil
}

func (b *RouteBuilder) routes6(ctx context.Context) ([]Route6, error) {
	rows, err := b.table.ForwardTable(ctx, FamilyIPv6)
	if err != nil {
		return nil, fmt.Errorf("failed to get IPv6 forward table: %w", err)
	}
	local := b.reg.IfAddrs6()

	routes := make([]Route6, 0, len(rows))
	for _, row := range rows {
		iface, err := b.owner(row.InterfaceIndex)
		if err != nil {
			continue
		}

		var cset []netip.Addr
		if iface.IsLoopback() {
			if row.Destination.Addr().IsUnspecified() {
				continue
			}
			cset = []netip.Addr{netip.IPv6Loopback()}
		} else {
			var devaddrs []LocalAddr6
			for _, a := range local {
				if a.Interface == iface {
					devaddrs = append(devaddrs, a)
				}
			}
			cset = b.selector(row.Destination, devaddrs)
		}
		if len(cset) == 0 {
			continue
		}

		routes = append(routes, Route6{
			Destination: row.Destination,
			NextHop:     row.NextHop,
			Interface:   iface,
			Candidates:  cset,
			Metric:      row.Metric + iface.IPv6Metric,
		})
	}
	return routes, nil
}

// DefaultInterface 返回前缀最短 (通常是默认路由) 的路由所使用的接口。
// 没有路由时返回环回接口。
func (b *RouteBuilder) DefaultInterface(routes []Route) *NetworkInterface {
	var best *Route
	for i := range routes {
		if best == nil || routes[i].Destination.Bits() < best.Destination.Bits() {
			best = &routes[i]
		}
	}
	if best == nil {
		return b.reg.Loopback()
	}
	return best.Interface
}
