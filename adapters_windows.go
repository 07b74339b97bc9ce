//go:build windows

package winiface

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.zx2c4.com/wireguard/windows/tunnel/winipcfg"
)

// SystemAdapters 通过 GetAdaptersAddresses 枚举本机适配器。
type SystemAdapters struct{}

var _ AdapterSource = SystemAdapters{}

// Adapters 实现 AdapterSource。
func (SystemAdapters) Adapters(_ context.Context) ([]RawAdapter, error) {
	adapters, err := winipcfg.GetAdaptersAddresses(windows.AF_UNSPEC, windows.GAA_FLAG_INCLUDE_PREFIX)
	if err != nil {
		return nil, fmt.Errorf("failed to get adapters addresses: %w", err)
	}

	res := make([]RawAdapter, 0, len(adapters))
	for _, a := range adapters {
		phys := a.PhysicalAddress()
		raw := RawAdapter{
			FriendlyName:    a.FriendlyName(),
			Description:     a.Description(),
			AdapterName:     a.AdapterName(),
			IfIndex:         a.IfIndex,
			PhysicalAddress: phys,
			PhysicalLength:  len(phys),
			IPv4Metric:      a.Ipv4Metric,
			IPv6Metric:      a.Ipv6Metric,
			Loopback:        isLoopbackAdapter(a.FriendlyName(), a.Description()),
		}
		for u := a.FirstUnicastAddress; u != nil; u = u.Next {
			raw.Unicast = appendRawAddress(raw.Unicast, u.Address)
		}
		for u := a.FirstAnycastAddress; u != nil; u = u.Next {
			raw.Anycast = appendRawAddress(raw.Anycast, u.Address)
		}
		for u := a.FirstMulticastAddress; u != nil; u = u.Next {
			raw.Multicast = appendRawAddress(raw.Multicast, u.Address)
		}
		res = append(res, raw)
	}
	return res, nil
}

// appendRawAddress 在协作者边界把 sockaddr 解码成带协议族标签的地址。
func appendRawAddress(list []RawAddress, sa windows.SocketAddress) []RawAddress {
	if sa.Sockaddr == nil {
		return list
	}
	switch sa.Sockaddr.Addr.Family {
	case windows.AF_INET:
		return append(list, RawAddress{Family: FamilyIPv4, Bytes: sa.IP().To4()})
	case windows.AF_INET6:
		return append(list, RawAddress{Family: FamilyIPv6, Bytes: sa.IP().To16()})
	}
	return list
}
