//go:build windows

// Package npcap 读取 Npcap 的安装位置和 802.11 配置。
package npcap

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

const parametersKey = `SYSTEM\CurrentControlSet\Services\npcap\Parameters`

// Dir 返回 Npcap 的安装目录，例如 C:\Windows\System32\Npcap。
func Dir() string {
	root := os.Getenv("SystemRoot")
	if root == "" {
		root = `C:\Windows`
	}
	return filepath.Join(root, "System32", "Npcap")
}

// Installed 报告 Npcap 是否已安装。
func Installed() bool {
	_, err := os.Stat(filepath.Join(Dir(), "wpcap.dll"))
	return err == nil
}

// WlanHelperPath 返回 WlanHelper.exe 的路径。
func WlanHelperPath() string {
	return filepath.Join(Dir(), "WlanHelper.exe")
}

// Dot11 从注册表读取 Npcap 的 Dot11Adapters 列表。
type Dot11 struct{}

// Dot11Adapters 返回启用了原始 802.11 的适配器列表。
// Npcap 未启用 802.11 支持时 ok 为 false。
func (Dot11) Dot11Adapters() (string, bool, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, parametersKey, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	defer key.Close()

	list, _, err := key.GetStringValue("Dot11Adapters")
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return list, true, nil
}
