//go:build windows

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ---- serviceCmd ----
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Inspect or control the capture driver service",
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the capture driver service is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		running, err := the.service.Running(cmd.Context())
		if err != nil {
			return err
		}
		state := "stopped"
		if running {
			state = "running"
		}
		fmt.Printf("%s: %s\n", the.service.Name, state)
		return nil
	},
}

var serviceStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the capture driver service",
	RunE: func(cmd *cobra.Command, args []string) error {
		elevate, _ := cmd.Flags().GetBool("elevate")
		if err := the.service.Start(cmd.Context(), elevate); err != nil {
			return err
		}
		fmt.Printf("%s started\n", the.service.Name)
		return nil
	},
}

var serviceStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the capture driver service",
	RunE: func(cmd *cobra.Command, args []string) error {
		elevate, _ := cmd.Flags().GetBool("elevate")
		if err := the.service.Stop(cmd.Context(), elevate); err != nil {
			return err
		}
		fmt.Printf("%s stopped\n", the.service.Name)
		return nil
	},
}

func init() {
	serviceStartCmd.Flags().BoolP("elevate", "e", false, "Run sc.exe through a UAC prompt")
	serviceStopCmd.Flags().BoolP("elevate", "e", false, "Run sc.exe through a UAC prompt")

	serviceCmd.AddCommand(serviceStatusCmd, serviceStartCmd, serviceStopCmd)
}
