//go:build windows

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bnkrr/winiface"
	"github.com/bnkrr/winiface/internal/config"
	"github.com/bnkrr/winiface/internal/svcctl"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds everything the subcommands share. It is built once in
// PersistentPreRunE.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	reg     *winiface.Registry
	routes  *winiface.RouteBuilder
	opener  *winiface.Opener
	service *svcctl.Controller
}

var (
	cfgFile string
	devMode bool
	the     app
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wiface",
	Short: "Inspect Windows network interfaces, routes and Npcap 802.11 settings.",
	Long: `wiface lists the local network adapters as seen by both Windows and
the packet capture driver, resolves the IPv4/IPv6 routing tables, and
controls the 802.11 mode, channel and modulation of Npcap-enabled
wireless adapters.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return the.setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if the.logger != nil {
			_ = the.logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// provideLogger builds the zap logger, switching to a colored debug
// console logger in development mode.
func provideLogger(cfg config.Config, dev bool) (*zap.Logger, error) {
	lc := cfg.Logger
	if dev {
		lc.EncoderConfig.EncodeLevel = "capitalColor"
		lc.EncoderConfig.EncodeTime = "RFC3339"
		lc.Level = "DEBUG"
		lc.Development = true
		lc.Encoding = "console"
		lc.OutputPaths = []string{"stderr"}
		lc.ErrorOutputPaths = []string{"stderr"}
	}
	return lc.Build()
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = provideLogger(cfg, devMode)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	sys, err := newSystem(cfg, a.logger)
	if err != nil {
		return err
	}
	a.service = sys.service

	a.reg, err = winiface.New(sys.options...)
	if err != nil {
		return fmt.Errorf("failed to create registry: %w", err)
	}
	if err := a.reg.Load(ctx); err != nil {
		return err
	}

	a.routes = winiface.NewRouteBuilder(a.reg, winiface.SystemForwardTable{}, nil)
	a.opener = winiface.NewOpener(a.reg, sys.backend)
	return nil
}

// ---- init ----
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&devMode, "dev", "d", false, "Run in development mode (debug logging)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(routes6Cmd)
	rootCmd.AddCommand(defaultCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(wlanCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(captureCmd)
}
