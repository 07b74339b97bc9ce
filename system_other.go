//go:build !windows

package winiface

import "context"

// SystemAdapters 在非 Windows 平台上不可用。
type SystemAdapters struct{}

// Adapters 总是返回 ErrPlatformUnavailable。
func (SystemAdapters) Adapters(_ context.Context) ([]RawAdapter, error) {
	return nil, ErrPlatformUnavailable
}

// SystemForwardTable 在非 Windows 平台上不可用。
type SystemForwardTable struct{}

func (SystemForwardTable) ModernAvailable() bool { return false }

func (SystemForwardTable) ForwardTable(_ context.Context, _ AddressFamily) ([]ForwardRow, error) {
	return nil, ErrPlatformUnavailable
}

func (SystemForwardTable) LegacyForwardTable(_ context.Context) ([]LegacyForwardRow, error) {
	return nil, ErrPlatformUnavailable
}
