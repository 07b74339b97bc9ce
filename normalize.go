package winiface

import (
	"fmt"
	"net/netip"
	"strings"
)

// Normalize 将原始适配器记录转换为 InterfaceInfo。
// extended 为 true 时同时包含 anycast 和 multicast 地址。
func Normalize(raw *RawAdapter, extended bool) (InterfaceInfo, error) {
	ips, err := decodeAddresses(raw.Unicast)
	if err != nil {
		return InterfaceInfo{}, fmt.Errorf("adapter %s unicast: %w", raw.AdapterName, err)
	}
	if extended {
		for _, list := range [][]RawAddress{raw.Anycast, raw.Multicast} {
			more, err := decodeAddresses(list)
			if err != nil {
				return InterfaceInfo{}, fmt.Errorf("adapter %s: %w", raw.AdapterName, err)
			}
			ips = append(ips, more...)
		}
	}

	return InterfaceInfo{
		Name:        raw.FriendlyName,
		Description: raw.Description,
		Index:       int(raw.IfIndex),
		ID:          raw.AdapterName,
		MAC:         formatMAC(raw.PhysicalAddress, raw.PhysicalLength),
		IPv4Metric:  raw.IPv4Metric,
		IPv6Metric:  raw.IPv6Metric,
		IPs:         ips,
		Loopback:    raw.Loopback,
	}, nil
}

// formatMAC 只接受 6 字节的物理地址，其余情况返回空字符串。
func formatMAC(addr []byte, length int) string {
	if length != 6 || len(addr) < 6 {
		return ""
	}
	parts := make([]string, 6)
	for i, b := range addr[:6] {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

func decodeAddresses(list []RawAddress) ([]netip.Addr, error) {
	ips := make([]netip.Addr, 0, len(list))
	for _, a := range list {
		var want int
		switch a.Family {
		case FamilyIPv4:
			want = 4
		case FamilyIPv6:
			want = 16
		default:
			return nil, fmt.Errorf("address family %d: %w", a.Family, ErrMalformedRecord)
		}
		// 空的或长度不符的缓冲区直接跳过
		if len(a.Bytes) != want {
			continue
		}
		ip, ok := netip.AddrFromSlice(a.Bytes)
		if !ok {
			continue
		}
		ips = append(ips, ip)
	}
	return ips, nil
}
