//go:build windows

package main

import (
	"fmt"
	"time"

	"github.com/bnkrr/winiface"

	"github.com/spf13/cobra"
)

// ---- captureCmd ----
var captureCmd = &cobra.Command{
	Use:   "capture <iface>",
	Short: "Open a capture handle on an interface",
	Long: `Opens (and closes again) a capture handle on the interface, switching
monitor mode first when --monitor is given. Useful to check that an adapter
can actually be captured on.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := the.reg.Find(args[0])
		if err != nil {
			return err
		}

		snapLen, _ := cmd.Flags().GetInt("snaplen")
		promisc, _ := cmd.Flags().GetBool("promisc")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		opts := winiface.CaptureOptions{
			SnapLen: snapLen,
			Promisc: promisc,
			Timeout: timeout,
		}
		if cmd.Flags().Changed("monitor") {
			monitor, _ := cmd.Flags().GetBool("monitor")
			opts.Monitor = &monitor
		}

		handle, err := the.opener.OpenCapture(cmd.Context(), iface, opts)
		if err != nil {
			return err
		}
		defer handle.Close()

		fmt.Printf("capture handle opened on %s (%s)\n", iface.Name, iface.CaptureName)
		return nil
	},
}

func init() {
	captureCmd.Flags().Int("snaplen", 65535, "Snapshot length")
	captureCmd.Flags().Bool("promisc", true, "Promiscuous mode")
	captureCmd.Flags().Duration("timeout", time.Second, "Read timeout")
	captureCmd.Flags().Bool("monitor", false, "Switch the adapter to (or out of) monitor mode first")
}
