package winiface

import (
	"fmt"
	"net/netip"
	"sync"
)

// LoopbackName 是 Npcap 环回适配器的固定名称。
const LoopbackName = "Npcap Loopback Adapter"

// ZeroMAC 用于环回接口和合成接口。
const ZeroMAC = "00:00:00:00:00:00"

// AddressFamily 是原始地址记录携带的协议族标签。
type AddressFamily uint16

const (
	FamilyIPv4 AddressFamily = 2  // AF_INET
	FamilyIPv6 AddressFamily = 23 // AF_INET6 (Windows)
)

// RawAddress 是枚举 API 返回的单个地址条目。
type RawAddress struct {
	Family AddressFamily
	Bytes  []byte
}

// RawAdapter 是系统适配器枚举返回的原始记录。
type RawAdapter struct {
	FriendlyName    string
	Description     string
	AdapterName     string // 例如 "{4D36E972-E325-11CE-BFC1-08002BE10318}"
	IfIndex         uint32
	PhysicalAddress []byte
	PhysicalLength  int
	IPv4Metric      uint32
	IPv6Metric      uint32
	Loopback        bool // Npcap 环回适配器 (名字或描述为 LoopbackName)
	Unicast         []RawAddress
	Anycast         []RawAddress
	Multicast       []RawAddress
}

// InterfaceInfo 是规范化之后的适配器信息。
type InterfaceInfo struct {
	Name        string
	Description string
	Index       int
	ID          string
	MAC         string
	IPv4Metric  uint32
	IPv6Metric  uint32
	IPs         []netip.Addr
	Loopback    bool
}

// NetworkInterface 代表注册表中的一个本地网络接口。
type NetworkInterface struct {
	ID          string // 适配器标识符 (GUID)，注册表的唯一键
	Name        string // 用户友好的名字, e.g., "以太网"
	Description string
	Index       int
	MAC         string
	IPv4Metric  uint32
	IPv6Metric  uint32
	IPs         []netip.Addr
	IP          netip.Addr // 主 IPv4 地址
	CaptureName string     // 抓包设备名, e.g., `\Device\NPF_{...}`

	invalid bool

	// 无线能力相关状态，受 mu 保护。
	mu    sync.Mutex
	wlan  *wlanEnv
	dot11 dot11Support
	mode  monitorState
}

// Invalid 报告该接口是否没有匹配的抓包设备。
func (i *NetworkInterface) Invalid() bool {
	return i.invalid
}

// IsLoopback 报告该接口是否为环回接口。
func (i *NetworkInterface) IsLoopback() bool {
	return i.Name == LoopbackName
}

func (i *NetworkInterface) String() string {
	return fmt.Sprintf("<NetworkInterface [%s] %s>", i.Description, i.ID)
}

// Route 代表一条 IPv4 路由。
type Route struct {
	Destination netip.Prefix // 目标网段 (网络地址 + 掩码)
	NextHop     netip.Addr
	Interface   *NetworkInterface // 由 Registry 持有，Reload 之后需重建
	Source      netip.Addr
	Metric      uint32 // 路由 metric + 接口 IPv4 metric
}

// Netmask 以点分形式返回目标网段的掩码。
func (r *Route) Netmask() netip.Addr {
	bits := r.Destination.Bits()
	var m [4]byte
	for i := 0; i < 4 && bits > 0; i++ {
		if bits >= 8 {
			m[i] = 0xff
			bits -= 8
			continue
		}
		m[i] = byte(0xff << (8 - bits))
		bits = 0
	}
	return netip.AddrFrom4(m)
}

// Route6 代表一条 IPv6 路由及其候选源地址集合。
type Route6 struct {
	Destination netip.Prefix
	NextHop     netip.Addr
	Interface   *NetworkInterface
	Candidates  []netip.Addr
	Metric      uint32 // 路由 metric + 接口 IPv6 metric
}

// ForwardRow 是现代转发表 (GetIpForwardTable2) 的一行。
type ForwardRow struct {
	Destination    netip.Prefix
	NextHop        netip.Addr
	InterfaceIndex uint32
	Metric         uint32
}

// LegacyForwardRow 是旧式 IPv4 转发表 (GetIpForwardTable) 的一行。
type LegacyForwardRow struct {
	Destination    netip.Addr
	Mask           netip.Addr
	NextHop        netip.Addr
	InterfaceIndex uint32
	Metric         uint32
}

// CachedInterface 是宿主程序持久化的地址缓存中的一项。
type CachedInterface struct {
	ID  string
	IPs []netip.Addr
}
