//go:build windows

package winiface

import (
	"errors"
	"fmt"
	"net/netip"

	"golang.org/x/sys/windows"
	"golang.zx2c4.com/wireguard/windows/tunnel/winipcfg"
)

// AddRoute 通过接口添加一条新路由。
// 注意：通过此 API 添加的路由在系统重启后不会保留（非持久化）。
// 已构建的路由表不会自动更新，需要重新调用 RouteBuilder。
func AddRoute(iface *NetworkInterface, destination netip.Prefix, nextHop netip.Addr, metric uint32) error {
	luid, err := interfaceLUID(iface)
	if err != nil {
		return err
	}
	if err := luid.AddRoute(destination, nextHop, metric); err != nil {
		// 检查是否因为路由已存在而失败
		if errors.Is(err, windows.ERROR_OBJECT_ALREADY_EXISTS) {
			return fmt.Errorf("route to %s already exists: %w", destination, err)
		}
		return fmt.Errorf("failed to create route: %w", err)
	}
	return nil
}

// DeleteRoute 删除一条精确匹配的路由。
func DeleteRoute(iface *NetworkInterface, destination netip.Prefix, nextHop netip.Addr) error {
	luid, err := interfaceLUID(iface)
	if err != nil {
		return err
	}
	if err := luid.DeleteRoute(destination, nextHop); err != nil {
		if errors.Is(err, windows.ERROR_NOT_FOUND) {
			return fmt.Errorf("route to %s not found: %w", destination, ErrNotFound)
		}
		return fmt.Errorf("failed to delete route: %w", err)
	}
	return nil
}

func interfaceLUID(iface *NetworkInterface) (winipcfg.LUID, error) {
	// 从地址缓存合成的接口没有系统索引
	if iface.Index < 0 {
		return 0, fmt.Errorf("interface %s has no system index: %w", iface.ID, ErrNotFound)
	}
	luid, err := winipcfg.LUIDFromIndex(uint32(iface.Index))
	if err != nil {
		return 0, fmt.Errorf("failed to convert interface index to LUID: %w", err)
	}
	return luid, nil
}
