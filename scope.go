package winiface

import (
	"net/netip"
	"sort"
)

// Scope 是 IPv6 地址的作用域。
type Scope int

const (
	ScopeUnspecified Scope = iota
	ScopeLoopback
	ScopeLinkLocal
	ScopeSiteLocal
	ScopeGlobal
	ScopeNodeLocal
)

var siteLocalPrefix = netip.MustParsePrefix("fec0::/10")

// ScopeOf 返回 IPv6 地址的作用域。
func ScopeOf(ip netip.Addr) Scope {
	switch {
	case ip.IsUnspecified():
		return ScopeUnspecified
	case ip.IsLoopback():
		return ScopeLoopback
	case ip.IsMulticast():
		return multicastScope(ip)
	case ip.IsLinkLocalUnicast():
		return ScopeLinkLocal
	case siteLocalPrefix.Contains(ip):
		return ScopeSiteLocal
	}
	return ScopeGlobal
}

func multicastScope(ip netip.Addr) Scope {
	switch ip.As16()[1] & 0x0f {
	case 0x1:
		return ScopeNodeLocal
	case 0x2:
		return ScopeLinkLocal
	case 0x5:
		return ScopeSiteLocal
	}
	return ScopeGlobal
}

// SourceSelector 为目标前缀从本地地址中选出有序的候选源地址集合。
type SourceSelector func(dst netip.Prefix, addrs []LocalAddr6) []netip.Addr

var (
	globalUnicastPrefix = netip.MustParsePrefix("2000::/3")
	sixToFourPrefix     = netip.MustParsePrefix("2002::/16")
)

// DefaultSourceSelector 按目标地址的作用域筛选候选源地址。
// 只有全局单播、链路本地、站点本地、ff01/ff02/ff05/ff0e 多播和 ::/0 有候选集合，
// 其余目标返回 nil，对应的路由会被丢弃。全局地址中原生地址排在 6to4 地址之前。
func DefaultSourceSelector(dst netip.Prefix, addrs []LocalAddr6) []netip.Addr {
	addr := dst.Addr()

	var want Scope
	switch {
	case globalUnicastPrefix.Contains(addr):
		want = ScopeGlobal
	case addr.IsLinkLocalUnicast():
		want = ScopeLinkLocal
	case siteLocalPrefix.Contains(addr):
		want = ScopeSiteLocal
	case addr.IsMulticast():
		// 只认 flags 为 0 的四种作用域
		switch addr.As16()[1] {
		case 0x01:
			return []netip.Addr{netip.IPv6Loopback()}
		case 0x02:
			want = ScopeLinkLocal
		case 0x05:
			want = ScopeSiteLocal
		case 0x0e:
			want = ScopeGlobal
		default:
			return nil
		}
	case addr.IsUnspecified() && dst.Bits() == 0:
		want = ScopeGlobal
	default:
		return nil
	}

	var res []netip.Addr
	for _, a := range addrs {
		if a.Scope == want {
			res = append(res, a.Addr)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return !sixToFourPrefix.Contains(res[i]) && sixToFourPrefix.Contains(res[j])
	})
	return res
}
