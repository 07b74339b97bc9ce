//go:build windows

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnkrr/winiface"
	"github.com/bnkrr/winiface/internal/addrcache"
	"github.com/bnkrr/winiface/internal/capture"
	"github.com/bnkrr/winiface/internal/config"
	"github.com/bnkrr/winiface/internal/elevation"
	"github.com/bnkrr/winiface/internal/manuf"
	"github.com/bnkrr/winiface/internal/npcap"
	"github.com/bnkrr/winiface/internal/svcctl"
	"github.com/bnkrr/winiface/internal/wlanhelper"

	"go.uber.org/zap"
)

// system is the set of Windows collaborators wired into the registry.
type system struct {
	options []winiface.Option
	backend winiface.CaptureBackend
	service *svcctl.Controller
}

func newSystem(cfg config.Config, logger *zap.Logger) (*system, error) {
	useNpcap := cfg.Backend == config.BackendNpcap ||
		(cfg.Backend == "" && npcap.Installed())

	devices := &capture.Backend{}
	service := &svcctl.Controller{Name: svcctl.ServiceName(useNpcap)}

	opts := []winiface.Option{
		winiface.WithLogger(logger),
		winiface.WithAdapterSource(winiface.SystemAdapters{}),
		winiface.WithDeviceLister(devices),
		winiface.WithService(service),
		winiface.HelperTimeout(cfg.HelperTimeout),
		winiface.OnReload(func(context.Context) error {
			devices.Refresh()
			return nil
		}),
	}
	if cfg.Extended {
		opts = append(opts, winiface.Extended())
	}
	if cfg.Interactive {
		opts = append(opts, winiface.Interactive(stdinPrompter{}))
	}
	if useNpcap {
		path := cfg.HelperPath
		if path == "" {
			path = npcap.WlanHelperPath()
		}
		opts = append(opts, winiface.Npcap(npcap.Dot11{}, wlanhelper.New(path, elevation.Run)))
	}

	if cfg.AddressCache != "" {
		entries, err := addrcache.Load(cfg.AddressCache)
		if err != nil {
			return nil, err
		}
		cache := make(map[string]winiface.CachedInterface, len(entries))
		for name, e := range entries {
			cache[name] = winiface.CachedInterface{ID: e.ID, IPs: e.IPs}
		}
		opts = append(opts, winiface.WithAddressCache(cache))
	}

	if db := loadManuf(cfg, logger); db != nil {
		opts = append(opts, winiface.WithVendorResolver(db))
	}

	return &system{
		options: opts,
		backend: pcapBackend{devices},
		service: service,
	}, nil
}

// loadManuf reads the vendor database, falling back to the one shipped
// with Wireshark.
func loadManuf(cfg config.Config, logger *zap.Logger) *manuf.DB {
	path := cfg.ManufFile
	if path == "" {
		path = filepath.Join(os.Getenv("ProgramFiles"), "Wireshark", "manuf")
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	db, err := manuf.Load(path)
	if err != nil {
		logger.Warn("cannot read manuf", zap.String("path", path), zap.Error(err))
		return nil
	}
	return db
}

// pcapBackend adapts the gopacket capture backend to winiface.CaptureBackend.
type pcapBackend struct {
	*capture.Backend
}

func (b pcapBackend) Open(device string, opts winiface.CaptureOptions) (winiface.CaptureHandle, error) {
	h, err := b.Backend.Open(device, capture.Options{
		SnapLen: opts.SnapLen,
		Promisc: opts.Promisc,
		Timeout: opts.Timeout,
		Monitor: opts.Monitor != nil && *opts.Monitor,
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// stdinPrompter asks yes/no questions on the console.
type stdinPrompter struct{}

func (stdinPrompter) Confirm(question string) bool {
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s (yes/no) [y]: ", question)
		if !in.Scan() {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(in.Text())) {
		case "yes", "y", "":
			return true
		case "no", "n":
			return false
		}
	}
}
