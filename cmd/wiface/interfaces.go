//go:build windows

package main

import (
	"os"

	"github.com/spf13/cobra"
)

// ---- listCmd ----
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List network interfaces",
	Long:  `Lists the network interfaces known to both Windows and the capture driver, sorted by adapter identifier.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		noResolve, _ := cmd.Flags().GetBool("no-resolve")
		return the.reg.PrintTable(os.Stdout, !noResolve)
	},
}

// ---- reloadCmd ----
var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-enumerate interfaces and print them",
	Long:  `Clears the interface registry, refreshes the capture device list and loads everything again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := the.reg.Reload(cmd.Context()); err != nil {
			return err
		}
		return the.reg.PrintTable(os.Stdout, true)
	},
}

func init() {
	listCmd.Flags().Bool("no-resolve", false, "Do not resolve MAC vendors")
}
