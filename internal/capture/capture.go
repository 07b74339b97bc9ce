// Package capture 基于 gopacket/pcap 列出抓包设备并打开抓包句柄。
package capture

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopacket/gopacket/pcap"
)

// findAllDevs 是 libpcap 设备发现调用，测试时可以替换。
var findAllDevs = pcap.FindAllDevs

// Options 是打开句柄时的参数。
type Options struct {
	SnapLen int
	Promisc bool
	Timeout time.Duration
	Monitor bool
}

// Backend 缓存 pcap 设备列表；Npcap 上枚举设备比较慢。
type Backend struct {
	m     sync.Mutex
	names []string
}

// DeviceNames 返回抓包设备名，例如 `\Device\NPF_{GUID}`。
func (b *Backend) DeviceNames() ([]string, error) {
	b.m.Lock()
	defer b.m.Unlock()

	if b.names != nil {
		return b.names, nil
	}
	devices, err := findAllDevs()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}
	b.names = names
	return names, nil
}

// Refresh 丢弃缓存的设备列表，下次调用 DeviceNames 时重新枚举。
func (b *Backend) Refresh() {
	b.m.Lock()
	defer b.m.Unlock()
	b.names = nil
}

// Open 打开设备的抓包句柄。
func (b *Backend) Open(device string, opts Options) (*pcap.Handle, error) {
	inactive, err := pcap.NewInactiveHandle(device)
	if err != nil {
		return nil, fmt.Errorf("failed to create handle for %s: %w", device, err)
	}
	defer inactive.CleanUp()

	if opts.SnapLen > 0 {
		if err := inactive.SetSnapLen(opts.SnapLen); err != nil {
			return nil, fmt.Errorf("set snaplen: %w", err)
		}
	}
	if err := inactive.SetPromisc(opts.Promisc); err != nil {
		return nil, fmt.Errorf("set promisc: %w", err)
	}
	if opts.Timeout != 0 {
		if err := inactive.SetTimeout(opts.Timeout); err != nil {
			return nil, fmt.Errorf("set timeout: %w", err)
		}
	}
	if opts.Monitor {
		if err := inactive.SetRFMon(true); err != nil {
			return nil, fmt.Errorf("set monitor mode: %w", err)
		}
	}

	return inactive.Activate()
}
