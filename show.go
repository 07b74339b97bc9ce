package winiface

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// ShowRow 是接口列表中的一行。
type ShowRow struct {
	Index       string
	Description string
	IP          string
	MAC         string
}

// Show 返回按标识符排序的接口列表。resolveMAC 为 true 时 MAC 带厂商名。
func (r *Registry) Show(resolveMAC bool) []ShowRow {
	ifaces := r.Interfaces()
	rows := make([]ShowRow, 0, len(ifaces))
	for _, iface := range ifaces {
		mac := iface.MAC
		if resolveMAC && r.vendors != nil {
			mac = r.vendors.ResolveMAC(mac)
		}
		ip := "None"
		if iface.IP.IsValid() {
			ip = iface.IP.String()
		}
		rows = append(rows, ShowRow{
			Index:       strconv.Itoa(iface.Index),
			Description: iface.Description,
			IP:          ip,
			MAC:         mac,
		})
	}
	return rows
}

// PrintTable 以表格形式输出接口列表。
func (r *Registry) PrintTable(out io.Writer, resolveMAC bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "INDEX\tIFACE\tIP\tMAC")
	for _, row := range r.Show(resolveMAC) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Index, row.Description, row.IP, row.MAC)
	}
	return w.Flush()
}
