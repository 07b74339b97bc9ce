package winiface

import (
	"net/netip"
	"strings"
)

var loopbackIPv4 = netip.AddrFrom4([4]byte{127, 0, 0, 1})

// newNetworkInterface 根据规范化后的信息构建接口，并解析抓包设备名。
// devices 是抓包子系统可见的设备名列表。
func newNetworkInterface(info InterfaceInfo, devices []string, wlan *wlanEnv) *NetworkInterface {
	iface := &NetworkInterface{wlan: wlan}
	iface.update(info, devices)
	return iface
}

func (i *NetworkInterface) update(info InterfaceInfo, devices []string) {
	i.Name = info.Name
	if info.Loopback {
		// 部分 Windows 系统会改写环回适配器的名字
		i.Name = LoopbackName
	}
	i.Description = info.Description
	i.Index = info.Index
	i.ID = info.ID
	i.MAC = info.MAC
	i.IPv4Metric = info.IPv4Metric
	i.IPv6Metric = info.IPv6Metric
	i.IPs = info.IPs
	i.IP = netip.Addr{}

	i.resolveCaptureName(devices)

	if i.IsLoopback() {
		i.MAC = ZeroMAC
		i.IP = loopbackIPv4
		return
	}
	for _, ip := range i.IPs {
		if ip.Is4() {
			i.IP = ip
			break
		}
	}
}

// isLoopbackAdapter 报告适配器是否为 Npcap 环回适配器。
// 部分 Windows 系统会改写它的友好名，但描述保持不变；
// Windows 自带的 "Loopback Pseudo-Interface 1" 不算。
func isLoopbackAdapter(friendlyName, description string) bool {
	return friendlyName == LoopbackName || description == LoopbackName
}

// resolveCaptureName 在设备列表中查找以接口标识符结尾的第一个设备名。
func (i *NetworkInterface) resolveCaptureName(devices []string) {
	if i.invalid {
		return
	}
	for _, name := range devices {
		if strings.HasSuffix(name, i.ID) {
			i.CaptureName = name
			return
		}
	}
	i.CaptureName = ""
	i.invalid = true
}
