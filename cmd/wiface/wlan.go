//go:build windows

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnkrr/winiface"

	"github.com/spf13/cobra"
)

// ---- wlanCmd ----
var wlanCmd = &cobra.Command{
	Use:   "wlan",
	Short: "Query or change 802.11 settings of an Npcap wireless adapter",
	Long: `All wlan subcommands take the interface (index, name or capture device)
as their first argument and talk to Npcap's WlanHelper.`,
}

// wlanIface resolves the first positional argument.
func wlanIface(args []string) (*winiface.NetworkInterface, error) {
	return the.reg.Find(args[0])
}

// reportSet turns the (ok, err) pair of the setters into a command error.
func reportSet(what, value string, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("failed to set %s to %s: %w", what, value, winiface.ErrHelperFailure)
	}
	fmt.Printf("%s set to %s\n", what, value)
	return nil
}

func printList[T ~string](list []T) {
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = string(v)
	}
	fmt.Println(strings.Join(parts, ", "))
}

var wlanModeCmd = &cobra.Command{
	Use:   "mode <iface>",
	Short: "Show the current 802.11 mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		mode, err := iface.Mode(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(mode)
		return nil
	},
}

var wlanModesCmd = &cobra.Command{
	Use:   "modes <iface>",
	Short: "List the supported 802.11 modes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		modes, err := iface.AvailableModes(cmd.Context())
		if err != nil {
			return err
		}
		printList(modes)
		return nil
	},
}

var wlanSetModeCmd = &cobra.Command{
	Use:   "set-mode <iface> <mode>",
	Short: "Set the 802.11 mode (name or number 0-5)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		mode := winiface.Mode(args[1])
		if n, err := strconv.Atoi(args[1]); err == nil {
			mode = winiface.ModeFromIndex(n)
			if mode == winiface.ModeUnknown {
				return fmt.Errorf("unknown mode number %d: %w", n, winiface.ErrInvalidInput)
			}
		}
		ok, err := iface.SetMode(cmd.Context(), mode)
		return reportSet("mode", string(mode), ok, err)
	},
}

var wlanChannelCmd = &cobra.Command{
	Use:   "channel <iface>",
	Short: "Show the current channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		ch, err := iface.Channel(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(ch)
		return nil
	},
}

var wlanSetChannelCmd = &cobra.Command{
	Use:   "set-channel <iface> <channel>",
	Short: "Set the channel (1-14)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		ch, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid channel '%s': %w", args[1], err)
		}
		ok, err := iface.SetChannel(cmd.Context(), ch)
		return reportSet("channel", args[1], ok, err)
	},
}

var wlanFreqCmd = &cobra.Command{
	Use:   "freq <iface>",
	Short: "Show the current frequency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		freq, err := iface.Frequency(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(freq)
		return nil
	},
}

var wlanSetFreqCmd = &cobra.Command{
	Use:   "set-freq <iface> <freq>",
	Short: "Set the frequency",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		freq, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid frequency '%s': %w", args[1], err)
		}
		ok, err := iface.SetFrequency(cmd.Context(), freq)
		return reportSet("frequency", args[1], ok, err)
	},
}

var wlanModuCmd = &cobra.Command{
	Use:   "modu <iface>",
	Short: "Show the current modulation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		modu, err := iface.Modulation(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(modu)
		return nil
	},
}

var wlanModusCmd = &cobra.Command{
	Use:   "modus <iface>",
	Short: "List the supported modulations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		modus, err := iface.AvailableModulations(cmd.Context())
		if err != nil {
			return err
		}
		printList(modus)
		return nil
	},
}

var wlanSetModuCmd = &cobra.Command{
	Use:   "set-modu <iface> <modulation>",
	Short: "Set the modulation (name or number 0-10)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		modu := winiface.Modulation(args[1])
		if n, err := strconv.Atoi(args[1]); err == nil {
			modu = winiface.ModulationFromIndex(n)
		}
		ok, err := iface.SetModulation(cmd.Context(), modu)
		return reportSet("modulation", string(modu), ok, err)
	},
}

var wlanMonitorCmd = &cobra.Command{
	Use:   "monitor <iface> [on|off]",
	Short: "Show or switch monitor mode",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := wlanIface(args)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Println(iface.IsMonitor(cmd.Context()))
			return nil
		}

		var enable bool
		switch strings.ToLower(args[1]) {
		case "on", "true", "1":
			enable = true
		case "off", "false", "0":
		default:
			return errors.New("monitor state must be 'on' or 'off'")
		}
		ok, err := iface.SetMonitor(cmd.Context(), enable)
		return reportSet("monitor mode", args[1], ok, err)
	},
}

func init() {
	wlanCmd.AddCommand(wlanModeCmd, wlanModesCmd, wlanSetModeCmd)
	wlanCmd.AddCommand(wlanChannelCmd, wlanSetChannelCmd)
	wlanCmd.AddCommand(wlanFreqCmd, wlanSetFreqCmd)
	wlanCmd.AddCommand(wlanModuCmd, wlanModusCmd, wlanSetModuCmd)
	wlanCmd.AddCommand(wlanMonitorCmd)
}
