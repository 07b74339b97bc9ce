package winiface

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AdapterSource 枚举系统适配器。平台不支持时返回 ErrPlatformUnavailable。
type AdapterSource interface {
	Adapters(ctx context.Context) ([]RawAdapter, error)
}

// DeviceLister 列出抓包子系统可见的设备名。
type DeviceLister interface {
	DeviceNames() ([]string, error)
}

// ServiceController 控制抓包后端的系统服务 (npcap / npf)。
type ServiceController interface {
	Running(ctx context.Context) (bool, error)
	Start(ctx context.Context, elevate bool) error
	Stop(ctx context.Context, elevate bool) error
}

// Prompter 在交互模式下询问用户是否启动服务。
type Prompter interface {
	Confirm(question string) bool
}

// VendorResolver 将 MAC 地址解析为带厂商名的形式。
type VendorResolver interface {
	ResolveMAC(mac string) string
}

// Dot11Source 读取 Npcap 的 Dot11Adapters 列表。
// ok 为 false 表示 Npcap 未启用 802.11 支持。
type Dot11Source interface {
	Dot11Adapters() (list string, ok bool, err error)
}

// Helper 是 WlanHelper 这类外部辅助程序的抽象。
// id 是去掉花括号的适配器 GUID。
type Helper interface {
	Get(ctx context.Context, id, key string) (string, error)
	Set(ctx context.Context, id, key, value string) error
}

// Option 是用于配置 Registry 的接口。
type Option interface {
	apply(*Registry) error
}

type optionFunc func(*Registry) error

var _ Option = optionFunc(nil)

func (f optionFunc) apply(r *Registry) error {
	return f(r)
}

type nilOptionFunc func(*Registry)

var _ Option = nilOptionFunc(nil)

func (f nilOptionFunc) apply(r *Registry) error {
	f(r)
	return nil
}

// WithAdapterSource 设置适配器枚举来源。
func WithAdapterSource(src AdapterSource) Option {
	return nilOptionFunc(func(r *Registry) {
		r.adapters = src
	})
}

// WithDeviceLister 设置抓包设备列表来源。
func WithDeviceLister(dl DeviceLister) Option {
	return nilOptionFunc(func(r *Registry) {
		r.devices = dl
	})
}

// WithService 设置抓包服务控制器。未设置时 Load 不会尝试启动服务。
func WithService(sc ServiceController) Option {
	return nilOptionFunc(func(r *Registry) {
		r.service = sc
	})
}

// Interactive 表示宿主程序运行在交互终端中，p 用于询问用户。
func Interactive(p Prompter) Option {
	return nilOptionFunc(func(r *Registry) {
		r.prompt = p
		r.interactive = p != nil
	})
}

// OnReload 设置 Reload 时在重新加载之前执行的底层初始化函数。
func OnReload(fn func(context.Context) error) Option {
	return nilOptionFunc(func(r *Registry) {
		r.reinit = fn
	})
}

// WithAddressCache 设置用于合成未知接口的地址缓存 (逻辑名 -> 标识符和地址)。
func WithAddressCache(cache map[string]CachedInterface) Option {
	return nilOptionFunc(func(r *Registry) {
		r.cache = cache
	})
}

// WithVendorResolver 设置 Show 使用的 MAC 厂商解析器。
func WithVendorResolver(v VendorResolver) Option {
	return nilOptionFunc(func(r *Registry) {
		r.vendors = v
	})
}

// Extended 使枚举结果包含 anycast 和 multicast 地址。
func Extended() Option {
	return nilOptionFunc(func(r *Registry) {
		r.extended = true
	})
}

// Npcap 声明抓包后端为 Npcap，启用 802.11 扩展和 Npcap 环回接口。
// dot11 和 helper 可以为 nil，此时所有无线操作都返回 ErrCapabilityUnsupported。
func Npcap(dot11 Dot11Source, helper Helper) Option {
	return nilOptionFunc(func(r *Registry) {
		r.wlan.npcap = true
		r.wlan.dot11 = dot11
		r.wlan.helper = helper
	})
}

// HelperTimeout 设置单次辅助进程调用的超时时间，0 表示使用默认值。
func HelperTimeout(d time.Duration) Option {
	return optionFunc(func(r *Registry) error {
		if d < 0 {
			return ErrInvalidInput
		}
		if d == 0 {
			d = DefaultHelperTimeout
		}
		r.wlan.timeout = d
		return nil
	})
}

// WithLogger 设置日志记录器，默认不输出任何日志。
func WithLogger(logger *zap.Logger) Option {
	return nilOptionFunc(func(r *Registry) {
		if logger == nil {
			logger = zap.NewNop()
		}
		r.logger = logger
		r.wlan.logger = logger
	})
}
