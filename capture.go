package winiface

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CaptureOptions 是打开抓包句柄时的参数。
type CaptureOptions struct {
	SnapLen int
	Promisc bool
	Timeout time.Duration
	// Monitor 为 nil 表示沿用接口当前的监听模式状态。
	Monitor *bool
}

// CaptureHandle 是抓包子系统返回的句柄。
type CaptureHandle interface {
	Close()
}

// CaptureBackend 是抓包子系统的抽象。
type CaptureBackend interface {
	DeviceLister
	Open(device string, opts CaptureOptions) (CaptureHandle, error)
}

// Opener 在打开抓包句柄之前根据注册表状态处理监听模式。
type Opener struct {
	reg     *Registry
	backend CaptureBackend
	logger  *zap.Logger
}

// NewOpener 创建一个 Opener。
func NewOpener(reg *Registry, backend CaptureBackend) *Opener {
	return &Opener{
		reg:     reg,
		backend: backend,
		logger:  reg.logger,
	}
}

// OpenCaptureByName 按逻辑名 (名字或描述) 打开抓包句柄。
func (o *Opener) OpenCaptureByName(ctx context.Context, name string, opts CaptureOptions) (CaptureHandle, error) {
	iface, err := o.reg.DevFromName(name)
	if err != nil {
		return nil, err
	}
	return o.OpenCapture(ctx, iface, opts)
}

// OpenCapture 打开接口的抓包句柄。
// 使用 Npcap 时，未指定 Monitor 则沿用接口当前状态；
// 指定的状态与当前不同则先切换接口模式。
func (o *Opener) OpenCapture(ctx context.Context, iface *NetworkInterface, opts CaptureOptions) (CaptureHandle, error) {
	device, err := CaptureNameOf(iface)
	if err != nil {
		return nil, err
	}

	if o.reg.Npcap() {
		monitored := iface.IsMonitor(ctx)
		switch {
		case opts.Monitor == nil:
			opts.Monitor = &monitored
		case *opts.Monitor != monitored:
			if _, err := iface.SetMonitor(ctx, *opts.Monitor); err != nil {
				o.logger.Warn("failed to switch monitor mode",
					zap.String("iface", iface.ID), zap.Bool("monitor", *opts.Monitor), zap.Error(err))
			}
		}
	}

	h, err := o.backend.Open(device, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture on %s: %w", device, err)
	}
	return h, nil
}
