// Package addrcache 读取宿主程序持久化的接口地址缓存。
//
// 文件格式:
//
//	interfaces:
//	  napatech0:
//	    id: '\Device\NPF_{D3F3C9A2-1B1E-4A8E-9C7D-1E2F3A4B5C6D}'
//	    ips: [10.0.0.5, fe80::1]
package addrcache

import (
	"bytes"
	"fmt"
	"io"
	"net/netip"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry 是缓存中的一个接口。
type Entry struct {
	ID  string
	IPs []netip.Addr
}

type file struct {
	Interfaces map[string]struct {
		ID  string   `yaml:"id"`
		IPs []string `yaml:"ips"`
	} `yaml:"interfaces"`
}

// Load 从文件读取缓存。文件不存在时返回空缓存。
func Load(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read address cache: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode 解析缓存内容。
func Decode(r io.Reader) (map[string]Entry, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode address cache: %w", err)
	}

	res := make(map[string]Entry, len(f.Interfaces))
	for name, v := range f.Interfaces {
		if v.ID == "" {
			return nil, fmt.Errorf("interface %q: missing id", name)
		}
		entry := Entry{ID: v.ID}
		for _, s := range v.IPs {
			ip, err := netip.ParseAddr(s)
			if err != nil {
				return nil, fmt.Errorf("interface %q: %w", name, err)
			}
			entry.IPs = append(entry.IPs, ip)
		}
		res[name] = entry
	}
	return res, nil
}
