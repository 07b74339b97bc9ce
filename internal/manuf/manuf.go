// Package manuf 解析 Wireshark 的 manuf 文件，把 MAC 地址前缀解析为厂商名。
package manuf

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
)

type entry struct {
	prefix uint64 // 高位对齐的 48 位前缀
	bits   int
	short  string
}

// DB 是厂商数据库。
type DB struct {
	entries []entry // 按前缀长度降序
}

// Load 读取 manuf 文件。
func Load(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse 解析 manuf 格式:
//
//	00:00:0C	Cisco	Cisco Systems, Inc
//	00:1B:C5:00:00:00/36	Converge	Converging Systems Inc.
func Parse(r io.Reader) (*DB, error) {
	db := &DB{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			continue
		}
		e, err := parsePrefix(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e.short = fields[1]
		db.entries = append(db.entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(db.entries, func(i, j int) bool {
		return db.entries[i].bits > db.entries[j].bits
	})
	return db, nil
}

func parsePrefix(s string) (entry, error) {
	bits := -1
	if i := strings.IndexByte(s, '/'); i >= 0 {
		n, err := strconv.Atoi(s[i+1:])
		if err != nil || n <= 0 || n > 48 {
			return entry{}, fmt.Errorf("invalid prefix length in %q", s)
		}
		bits, s = n, s[:i]
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == '-' || r == '.' })
	if len(parts) == 0 || len(parts) > 6 {
		return entry{}, fmt.Errorf("invalid prefix %q", s)
	}
	var v uint64
	for _, p := range parts {
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return entry{}, fmt.Errorf("invalid prefix %q", s)
		}
		v = v<<8 | b
	}
	v <<= 8 * uint(6-len(parts))
	if bits < 0 {
		bits = 8 * len(parts)
	}
	return entry{prefix: v, bits: bits}, nil
}

// Lookup 返回 MAC 地址对应的厂商短名。
func (db *DB) Lookup(mac net.HardwareAddr) (string, bool) {
	if len(mac) != 6 {
		return "", false
	}
	var v uint64
	for _, b := range mac {
		v = v<<8 | uint64(b)
	}
	for _, e := range db.entries {
		shift := uint(48 - e.bits)
		if v>>shift == e.prefix>>shift {
			return e.short, true
		}
	}
	return "", false
}

// ResolveMAC 把 "00:00:0c:12:34:56" 解析为 "Cisco:12:34:56"。
// 无法解析时原样返回。
func (db *DB) ResolveMAC(mac string) string {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return mac
	}
	short, ok := db.Lookup(hw)
	if !ok {
		return mac
	}
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return mac
	}
	return short + ":" + strings.Join(parts[3:], ":")
}
