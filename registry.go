// Package winiface 维护本机网络适配器与抓包设备之间的映射，
// 解析 IPv4/IPv6 路由表，并通过 Npcap 提供 802.11 模式控制。
package winiface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const npfDevicePrefix = `\DEVICE\NPF_`

// Registry 是以适配器标识符为键的接口集合。
// 宿主程序创建一次，并把同一个实例传给所有使用者。
type Registry struct {
	mu        sync.RWMutex
	data      map[string]*NetworkInterface
	loopback  *NetworkInterface
	restarted bool

	adapters    AdapterSource
	devices     DeviceLister
	service     ServiceController
	prompt      Prompter
	interactive bool
	reinit      func(context.Context) error
	cache       map[string]CachedInterface
	vendors     VendorResolver
	extended    bool
	wlan        *wlanEnv
	logger      *zap.Logger
}

// New 创建一个空的 Registry，需要调用 Load 填充。
func New(opts ...Option) (*Registry, error) {
	r := Registry{
		data:   make(map[string]*NetworkInterface),
		logger: zap.NewNop(),
		wlan: &wlanEnv{
			timeout: DefaultHelperTimeout,
			logger:  zap.NewNop(),
		},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(&r); err != nil {
			return nil, err
		}
	}

	return &r, nil
}

// Load 枚举系统适配器并填充注册表。
// 枚举失败 (平台不可用、服务未运行) 只记录警告，注册表保持为空。
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Reload 清空注册表 (包括环回接口引用)，重新初始化抓包后端，然后再次 Load。
// 之前构建的路由引用旧的接口对象，需要重新构建。
func (r *Registry) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.restarted = false
	r.loopback = nil
	clear(r.data)
	if r.reinit != nil {
		if err := r.reinit(ctx); err != nil {
			r.logger.Warn("failed to re-initialize capture backend", zap.Error(err))
		}
	}
	return r.load(ctx)
}

func (r *Registry) load(ctx context.Context) error {
	if r.adapters == nil {
		r.logger.Warn("no adapter source configured: interfaces won't work")
		return nil
	}

	raws, err := r.adapters.Adapters(ctx)
	if err != nil {
		if errors.Is(err, ErrPlatformUnavailable) {
			r.logger.Warn("adapter enumeration unavailable: routes, interfaces and much more won't work", zap.Error(err))
			return nil
		}
		return fmt.Errorf("failed to enumerate adapters: %w", err)
	}

	devices := r.deviceNames()
	for i := range raws {
		info, err := Normalize(&raws[i], r.extended)
		if err != nil {
			r.logger.Warn("skipping adapter", zap.String("adapter", raws[i].AdapterName), zap.Error(err))
			continue
		}
		r.data[info.ID] = newNetworkInterface(info, devices, r.wlan)
	}

	if len(r.data) == 0 && r.service != nil {
		if done, err := r.recoverService(ctx); done {
			return err
		}
	} else if lo := r.findLoopback(); lo != nil {
		r.loopback = lo
	}

	r.mergeCache(devices)
	return nil
}

// recoverService 在注册表为空时检查抓包服务，必要时启动它并重新加载一次。
// done 为 true 表示已经通过重新加载完成了 load。
func (r *Registry) recoverService(ctx context.Context) (done bool, err error) {
	msg := "No match between your pcap and windows network interfaces found. "

	running, serr := r.service.Running(ctx)
	if serr != nil {
		r.logger.Debug("failed to query pcap service status", zap.Error(serr))
	}

	if !running && !r.restarted {
		r.logger.Warn("pcap service is not running")
		if !r.interactive || r.prompt.Confirm("Do you want to start it ?") {
			serr = r.service.Start(ctx, r.interactive)
			r.restarted = true
			if serr == nil {
				r.logger.Info("pcap service started")
				return true, r.load(ctx)
			}
			r.logger.Debug("failed to start pcap service", zap.Error(serr))
		}
		msg = "Could not start the pcap service ! "
	}

	r.logger.Warn(msg +
		"You probably won't be able to send packets. " +
		"Deactivating unneeded interfaces and restarting might help. " +
		"Check your pcap installation and access rights.")
	return false, nil
}

// findLoopback 返回名为 LoopbackName 的接口，优先选择有抓包设备的那个。
func (r *Registry) findLoopback() *NetworkInterface {
	var found *NetworkInterface
	for _, iface := range r.sorted() {
		if !iface.IsLoopback() {
			continue
		}
		if !iface.Invalid() {
			return iface
		}
		if found == nil {
			found = iface
		}
	}
	return found
}

// mergeCache 为地址缓存中存在、但系统枚举中缺失的接口 (例如 Napatech 网卡) 合成条目。
func (r *Registry) mergeCache(devices []string) {
	for name, entry := range r.cache {
		id := strings.ToUpper(entry.ID)
		id = strings.TrimPrefix(id, npfDevicePrefix)
		if _, exists := r.data[id]; exists {
			continue
		}
		info := InterfaceInfo{
			Name:        name,
			Description: "[Unknown] " + name,
			Index:       -1,
			ID:          id,
			MAC:         ZeroMAC,
			IPs:         entry.IPs,
		}
		r.data[id] = newNetworkInterface(info, devices, r.wlan)
	}
}

func (r *Registry) deviceNames() []string {
	if r.devices == nil {
		return nil
	}
	names, err := r.devices.DeviceNames()
	if err != nil {
		r.logger.Warn("failed to list capture devices", zap.Error(err))
		return nil
	}
	return names
}

// ---- 查询 ----

// DevFromName 返回名字或描述等于 name 的第一个接口。
func (r *Registry) DevFromName(name string) (*NetworkInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devFromName(name)
}

func (r *Registry) devFromName(name string) (*NetworkInterface, error) {
	for _, iface := range r.sorted() {
		if iface.Name == name || iface.Description == name {
			return iface, nil
		}
	}
	return nil, fmt.Errorf("unknown network interface %q: %w", name, ErrNotFound)
}

// DevFromCaptureName 返回抓包设备名等于 name 的接口。
func (r *Registry) DevFromCaptureName(name string) (*NetworkInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, iface := range r.sorted() {
		if iface.CaptureName != "" && iface.CaptureName == name {
			return iface, nil
		}
	}
	return nil, fmt.Errorf("unknown capture device %q: %w", name, ErrNotFound)
}

// DevFromIndex 返回指定索引的接口。
// 索引 1 在找不到时回退到环回接口 (如果已经加载)。
// 多个接口索引相同时 (例如合成的 -1) 返回标识符最小的那个。
func (r *Registry) DevFromIndex(index int) (*NetworkInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devFromIndex(index)
}

func (r *Registry) devFromIndex(index int) (*NetworkInterface, error) {
	for _, iface := range r.sorted() {
		if iface.Index == index {
			return iface, nil
		}
	}
	if index == 1 && r.loopback != nil {
		return r.loopback, nil
	}
	return nil, fmt.Errorf("unknown network interface index %d: %w", index, ErrNotFound)
}

// Find 根据标识符（可以是 Index、名字、描述或抓包设备名）查找接口。
func (r *Registry) Find(identifier string) (*NetworkInterface, error) {
	if index, err := strconv.Atoi(identifier); err == nil {
		if iface, err := r.DevFromIndex(index); err == nil {
			return iface, nil
		}
	}
	if iface, err := r.DevFromName(identifier); err == nil {
		return iface, nil
	}
	if iface, err := r.DevFromCaptureName(identifier); err == nil {
		return iface, nil
	}

	return nil, fmt.Errorf("interface '%s' not found: %w", identifier, ErrNotFound)
}

// Interfaces 返回按标识符排序的接口快照。
func (r *Registry) Interfaces() []*NetworkInterface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted()
}

func (r *Registry) sorted() []*NetworkInterface {
	ifaces := make([]*NetworkInterface, 0, len(r.data))
	for _, iface := range r.data {
		ifaces = append(ifaces, iface)
	}
	sort.Slice(ifaces, func(i, j int) bool {
		return ifaces[i].ID < ifaces[j].ID
	})
	return ifaces
}

// Loopback 返回环回接口，未加载时为 nil。
func (r *Registry) Loopback() *NetworkInterface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loopback
}

// Npcap 报告抓包后端是否为 Npcap。
func (r *Registry) Npcap() bool {
	return r.wlan.npcap
}

// IPs 返回每个接口上指定协议族的地址。
func (r *Registry) IPs(v6 bool) map[*NetworkInterface][]netip.Addr {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ips(v6)
}

func (r *Registry) ips(v6 bool) map[*NetworkInterface][]netip.Addr {
	res := make(map[*NetworkInterface][]netip.Addr, len(r.data))
	for _, iface := range r.data {
		var ips []netip.Addr
		for _, ip := range iface.IPs {
			if ip.Is6() == v6 {
				ips = append(ips, ip)
			}
		}
		res[iface] = ips
	}
	return res
}

// IPFromName 返回指定接口上该协议族的第一个地址。
func (r *Registry) IPFromName(name string, v6 bool) (netip.Addr, error) {
	iface, err := r.DevFromName(name)
	if err != nil {
		return netip.Addr{}, err
	}
	for _, ip := range iface.IPs {
		if ip.Is6() == v6 {
			return ip, nil
		}
	}
	return netip.Addr{}, nil
}

// CaptureNameOf 返回接口的抓包设备名。
func CaptureNameOf(iface *NetworkInterface) (string, error) {
	if iface.Invalid() {
		return "", fmt.Errorf("interface %s: %w", iface.ID, ErrInvalidInterface)
	}
	return iface.CaptureName, nil
}

// CaptureName 返回逻辑名对应的抓包设备名。
func (r *Registry) CaptureName(name string) (string, error) {
	iface, err := r.DevFromName(name)
	if err != nil {
		return "", err
	}
	return CaptureNameOf(iface)
}

// HardwareAddr 返回抓包设备名对应接口的 MAC 地址。
func (r *Registry) HardwareAddr(captureName string) (net.HardwareAddr, error) {
	iface, err := r.DevFromCaptureName(captureName)
	if err != nil {
		return nil, err
	}
	return net.ParseMAC(iface.MAC)
}

// ValidID 返回环回接口的标识符，否则返回第一个有效接口的标识符。
func (r *Registry) ValidID() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.loopback != nil {
		return r.loopback.ID, true
	}
	for _, iface := range r.sorted() {
		if !iface.Invalid() {
			return iface.ID, true
		}
	}
	return "", false
}

// LocalAddr6 是本机分配的一个 IPv6 地址。
type LocalAddr6 struct {
	Addr      netip.Addr
	Scope     Scope
	Interface *NetworkInterface
}

// IfAddrs6 返回本机所有 IPv6 地址及其作用域和所属接口。
func (r *Registry) IfAddrs6() []LocalAddr6 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ifAddrs6()
}

func (r *Registry) ifAddrs6() []LocalAddr6 {
	var addrs []LocalAddr6
	for _, iface := range r.sorted() {
		for _, ip := range iface.IPs {
			if ip.Is6() {
				addrs = append(addrs, LocalAddr6{Addr: ip, Scope: ScopeOf(ip), Interface: iface})
			}
		}
	}
	// Npcap 环回接口
	if r.wlan.npcap && r.loopback != nil {
		addrs = append(addrs, LocalAddr6{Addr: netip.IPv6Loopback(), Scope: ScopeOf(netip.IPv6Loopback()), Interface: r.loopback})
	}
	return addrs
}
