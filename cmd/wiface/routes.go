//go:build windows

package main

import (
	"fmt"
	"net/netip"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bnkrr/winiface"

	"github.com/spf13/cobra"
)

// routeFilters builds the filter options shared by the routes commands.
func routeFilters(cmd *cobra.Command) ([]winiface.FilterOption, error) {
	var filters []winiface.FilterOption

	// Destination Prefix Filter
	if destStr, _ := cmd.Flags().GetString("destination"); destStr != "" {
		prefix, err := netip.ParsePrefix(destStr)
		if err != nil {
			return nil, fmt.Errorf("invalid destination prefix '%s': %w", destStr, err)
		}
		filters = append(filters, winiface.WithDestinationPrefix(prefix))
	}

	// Interface Index Filter
	if cmd.Flags().Changed("if-index") {
		ifIndex, _ := cmd.Flags().GetInt("if-index")
		filters = append(filters, winiface.WithInterfaceIndex(ifIndex))
	}

	// Interface Name Filter
	if ifName, _ := cmd.Flags().GetString("if-name"); ifName != "" {
		filters = append(filters, winiface.WithInterfaceName(ifName))
	}

	// Metric Filter
	if cmd.Flags().Changed("metric") {
		metric, _ := cmd.Flags().GetUint32("metric")
		filters = append(filters, winiface.WithMetric(metric))
	}
	return filters, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("destination", "d", "", "Filter by destination prefix (e.g., 192.168.1.0/24)")
	cmd.Flags().IntP("if-index", "i", 0, "Filter by interface index")
	cmd.Flags().StringP("if-name", "a", "", "Filter by interface name (case-insensitive)")
	cmd.Flags().Uint32P("metric", "m", 0, "Filter by effective route metric")
}

// ---- routesCmd ----
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Show the IPv4 routing table",
	Long:  `Resolves the IPv4 routing table against the interface registry. The metric shown is route metric + interface metric.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := routeFilters(cmd)
		if err != nil {
			return err
		}

		routes := the.routes.Routes(cmd.Context(), filters...)
		if len(routes) == 0 {
			fmt.Println("No routes found matching the criteria.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NETWORK\tNETMASK\tGATEWAY\tIFACE\tOUTPUT IP\tMETRIC")
		for _, route := range routes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
				route.Destination.Addr(),
				route.Netmask(),
				route.NextHop,
				route.Interface.Description,
				route.Source,
				route.Metric,
			)
		}
		return w.Flush()
	},
}

// ---- routes6Cmd ----
var routes6Cmd = &cobra.Command{
	Use:   "routes6",
	Short: "Show the IPv6 routing table",
	Long:  `Resolves the IPv6 routing table and the candidate source addresses of every route.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := routeFilters(cmd)
		if err != nil {
			return err
		}

		routes := the.routes.Routes6(cmd.Context(), filters...)
		if len(routes) == 0 {
			fmt.Println("No routes found matching the criteria.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "DESTINATION\tNEXT HOP\tIFACE\tSRC CANDIDATES\tMETRIC")
		for _, route := range routes {
			cands := make([]string, len(route.Candidates))
			for i, c := range route.Candidates {
				cands[i] = c.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				route.Destination,
				route.NextHop,
				route.Interface.Description,
				strings.Join(cands, ", "),
				route.Metric,
			)
		}
		return w.Flush()
	},
}

// ---- defaultCmd ----
var defaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Show the interface used for outbound traffic",
	RunE: func(cmd *cobra.Command, args []string) error {
		iface := the.routes.DefaultInterface(the.routes.Routes(cmd.Context()))
		if iface == nil {
			return fmt.Errorf("no default interface: %w", winiface.ErrNotFound)
		}
		fmt.Printf("%s\t%s\t%s\n", iface.Name, iface.IP, iface.CaptureName)
		return nil
	},
}

// ---- addCmd ----
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new route",
	Long:  `Adds a new, non-persistent route to the Windows routing table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		destStr, _ := cmd.Flags().GetString("destination")
		nextHopStr, _ := cmd.Flags().GetString("next-hop")
		ifaceStr, _ := cmd.Flags().GetString("iface")
		metric, _ := cmd.Flags().GetUint32("metric")

		destination, err := netip.ParsePrefix(destStr)
		if err != nil {
			return fmt.Errorf("invalid destination prefix '%s': %w", destStr, err)
		}
		nextHop, err := netip.ParseAddr(nextHopStr)
		if err != nil {
			return fmt.Errorf("invalid next-hop address '%s': %w", nextHopStr, err)
		}
		iface, err := the.reg.Find(ifaceStr)
		if err != nil {
			return err
		}

		return winiface.AddRoute(iface, destination, nextHop, metric)
	},
}

// ---- deleteCmd ----
var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a single, specific route",
	Long:  `Deletes a single route by precisely matching its destination, next hop, and interface.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		destStr, _ := cmd.Flags().GetString("destination")
		nextHopStr, _ := cmd.Flags().GetString("next-hop")
		ifaceStr, _ := cmd.Flags().GetString("iface")

		destination, err := netip.ParsePrefix(destStr)
		if err != nil {
			return fmt.Errorf("invalid destination prefix '%s': %w", destStr, err)
		}
		nextHop, err := netip.ParseAddr(nextHopStr)
		if err != nil {
			return fmt.Errorf("invalid next-hop address '%s': %w", nextHopStr, err)
		}
		iface, err := the.reg.Find(ifaceStr)
		if err != nil {
			return err
		}

		return winiface.DeleteRoute(iface, destination, nextHop)
	},
}

func init() {
	addFilterFlags(routesCmd)
	addFilterFlags(routes6Cmd)

	addCmd.Flags().StringP("destination", "d", "", "Destination prefix for the new route (e.g., 10.0.0.0/8)")
	addCmd.Flags().StringP("next-hop", "n", "", "Next hop address for the new route (e.g., 192.168.1.1)")
	addCmd.Flags().StringP("iface", "i", "", "Interface index, name or capture device")
	addCmd.Flags().Uint32P("metric", "m", 0, "Metric for the new route (lower is more preferred)")
	addCmd.MarkFlagRequired("destination")
	addCmd.MarkFlagRequired("next-hop")
	addCmd.MarkFlagRequired("iface")

	deleteCmd.Flags().StringP("destination", "d", "", "Destination prefix of the route to delete (e.g., 10.0.0.0/8)")
	deleteCmd.Flags().StringP("next-hop", "n", "", "Next hop address of the route to delete (e.g., 192.168.1.1)")
	deleteCmd.Flags().StringP("iface", "i", "", "Interface index, name or capture device")
	deleteCmd.MarkFlagRequired("destination")
	deleteCmd.MarkFlagRequired("next-hop")
	deleteCmd.MarkFlagRequired("iface")
}
