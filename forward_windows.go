//go:build windows

package winiface

import (
	"context"
	"fmt"
	"net/netip"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.zx2c4.com/wireguard/windows/tunnel/winipcfg"
)

var (
	modiphlpapi            = windows.NewLazySystemDLL("iphlpapi.dll")
	procGetIpForwardTable  = modiphlpapi.NewProc("GetIpForwardTable")
	procGetIpForwardTable2 = modiphlpapi.NewProc("GetIpForwardTable2")
)

// mibIPForwardRow 对应 MIB_IPFORWARDROW。
type mibIPForwardRow struct {
	ForwardDest      uint32
	ForwardMask      uint32
	ForwardPolicy    uint32
	ForwardNextHop   uint32
	ForwardIfIndex   uint32
	ForwardType      uint32
	ForwardProto     uint32
	ForwardAge       uint32
	ForwardNextHopAS uint32
	ForwardMetric1   uint32
	ForwardMetric2   uint32
	ForwardMetric3   uint32
	ForwardMetric4   uint32
	ForwardMetric5   uint32
}

// SystemForwardTable 通过 iphlpapi 读取系统转发表。
type SystemForwardTable struct{}

var _ ForwardTableSource = SystemForwardTable{}

// ModernAvailable 探测 GetIpForwardTable2 是否存在，XP 上不存在。
func (SystemForwardTable) ModernAvailable() bool {
	return procGetIpForwardTable2.Find() == nil
}

// ForwardTable 实现 ForwardTableSource。
func (SystemForwardTable) ForwardTable(_ context.Context, family AddressFamily) ([]ForwardRow, error) {
	af := winipcfg.AddressFamily(windows.AF_INET)
	if family == FamilyIPv6 {
		af = winipcfg.AddressFamily(windows.AF_INET6)
	}

	baseRoutes, err := winipcfg.GetIPForwardTable2(af)
	if err != nil {
		return nil, fmt.Errorf("failed to get base routing table: %w", err)
	}

	rows := make([]ForwardRow, 0, len(baseRoutes))
	for i := range baseRoutes {
		baseRoute := &baseRoutes[i]
		rows = append(rows, ForwardRow{
			Destination:    baseRoute.DestinationPrefix.Prefix(),
			NextHop:        baseRoute.NextHop.Addr(),
			InterfaceIndex: baseRoute.InterfaceIndex,
			Metric:         baseRoute.Metric,
		})
	}
	return rows, nil
}

// LegacyForwardTable 通过 GetIpForwardTable 读取 IPv4 转发表。
func (SystemForwardTable) LegacyForwardTable(_ context.Context) ([]LegacyForwardRow, error) {
	if err := procGetIpForwardTable.Find(); err != nil {
		return nil, fmt.Errorf("GetIpForwardTable: %w", err)
	}

	size := uint32(unsafe.Sizeof(uint32(0)) + 16*unsafe.Sizeof(mibIPForwardRow{}))
	var buf []byte
	for {
		buf = make([]byte, size)
		r, _, _ := procGetIpForwardTable.Call(
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&size)),
			0,
		)
		if r == 0 {
			break
		}
		if windows.Errno(r) != windows.ERROR_INSUFFICIENT_BUFFER {
			return nil, fmt.Errorf("GetIpForwardTable: %w", windows.Errno(r))
		}
	}

	n := *(*uint32)(unsafe.Pointer(&buf[0]))
	if n == 0 {
		return nil, nil
	}
	// 表项紧跟在 dwNumEntries 之后
	table := unsafe.Slice((*mibIPForwardRow)(unsafe.Pointer(&buf[unsafe.Sizeof(uint32(0))])), n)

	rows := make([]LegacyForwardRow, 0, n)
	for _, row := range table {
		rows = append(rows, LegacyForwardRow{
			Destination:    dwordAddr(row.ForwardDest),
			Mask:           dwordAddr(row.ForwardMask),
			NextHop:        dwordAddr(row.ForwardNextHop),
			InterfaceIndex: row.ForwardIfIndex,
			Metric:         row.ForwardMetric1,
		})
	}
	return rows, nil
}

// dwordAddr 把网络字节序的 DWORD 转成地址。
func dwordAddr(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}
