package winiface

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultHelperTimeout 是单次 WlanHelper 调用的默认超时时间。
const DefaultHelperTimeout = 10 * time.Second

// Mode 是 802.11 工作模式。
type Mode string

const (
	ModeManaged   Mode = "managed"    // Extensible Station Mode
	ModeMonitor   Mode = "monitor"    // Network Monitor Mode
	ModeMaster    Mode = "master"     // Extensible Access Point (Windows 7+)
	ModeWFDDevice Mode = "wfd_device" // Wi-Fi Direct Device (Windows 8+)
	ModeWFDOwner  Mode = "wfd_owner"  // Wi-Fi Direct Group Owner (Windows 8+)
	ModeWFDClient Mode = "wfd_client" // Wi-Fi Direct Client (Windows 8+)
	ModeUnknown   Mode = "unknown"
)

var modes = map[int]Mode{
	0: ModeManaged,
	1: ModeMonitor,
	2: ModeMaster,
	3: ModeWFDDevice,
	4: ModeWFDOwner,
	5: ModeWFDClient,
}

// ModeFromIndex 将整数模式编号映射为 Mode，未知编号返回 ModeUnknown。
func ModeFromIndex(i int) Mode {
	if m, ok := modes[i]; ok {
		return m
	}
	return ModeUnknown
}

// Modulation 是 802.11 调制方式。
type Modulation string

var modulations = map[int]Modulation{
	0:  "dsss",
	1:  "fhss",
	2:  "irbaseband",
	3:  "ofdm",
	4:  "hrdss",
	5:  "erp",
	6:  "ht",
	7:  "vht",
	8:  "ihv",
	9:  "mimo-ofdm",
	10: "mimo-ofdm",
}

// ModulationFromIndex 将整数调制编号映射为 Modulation，未知编号返回 "unknown"。
func ModulationFromIndex(i int) Modulation {
	if m, ok := modulations[i]; ok {
		return m
	}
	return "unknown"
}

// dot11Support 是接口是否支持原始 802.11 的缓存。
type dot11Support int

const (
	dot11Unknown dot11Support = iota
	dot11Unsupported
	dot11Supported
)

// monitorState 是接口监听模式的本地状态机。
// SetMonitor 成功后乐观地进入目标状态，失败则回到 monitorUnknown。
type monitorState int

const (
	monitorUnknown monitorState = iota
	monitorManaged
	monitorOn
)

// wlanEnv 是所有接口共享的无线能力环境。
type wlanEnv struct {
	npcap   bool
	dot11   Dot11Source
	helper  Helper
	timeout time.Duration
	logger  *zap.Logger
}

// 调用方必须持有 i.mu。
func (i *NetworkInterface) checkDot11() error {
	if i.wlan == nil || !i.wlan.npcap {
		return fmt.Errorf("this operation requires Npcap: %w", ErrCapabilityUnsupported)
	}
	if i.dot11 == dot11Unknown {
		i.dot11 = dot11Unsupported
		if i.wlan.dot11 != nil {
			list, ok, err := i.wlan.dot11.Dot11Adapters()
			if err != nil {
				i.wlan.logger.Debug("failed to read Dot11Adapters", zap.Error(err))
			}
			if err == nil && ok && strings.Contains(strings.ToLower(list), strings.ToLower(i.ID)) {
				i.dot11 = dot11Supported
			}
		}
	}
	if i.dot11 != dot11Supported || i.wlan.helper == nil {
		return fmt.Errorf("interface %s does not support raw 802.11: %w", i.ID, ErrCapabilityUnsupported)
	}
	return nil
}

// helperID 去掉 GUID 两端的花括号。
func (i *NetworkInterface) helperID() string {
	return strings.TrimSuffix(strings.TrimPrefix(i.ID, "{"), "}")
}

func (i *NetworkInterface) get(ctx context.Context, key string) (string, error) {
	if err := i.checkDot11(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, i.wlan.timeout)
	defer cancel()

	out, err := i.wlan.helper.Get(ctx, i.helperID(), key)
	if err != nil {
		return "", fmt.Errorf("get %s: %w: %w", key, ErrHelperFailure, err)
	}
	return strings.TrimSpace(out), nil
}

// set 返回的 error 只表示能力检查失败；辅助进程失败体现在 bool 上。
func (i *NetworkInterface) set(ctx context.Context, key, value string) (bool, error) {
	if err := i.checkDot11(); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, i.wlan.timeout)
	defer cancel()

	if err := i.wlan.helper.Set(ctx, i.helperID(), key, value); err != nil {
		i.wlan.logger.Debug("WlanHelper set failed",
			zap.String("iface", i.ID), zap.String("key", key), zap.String("value", value), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (i *NetworkInterface) getInt(ctx context.Context, key string) (int, error) {
	out, err := i.get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("get %s: unexpected output %q: %w", key, out, ErrHelperFailure)
	}
	return n, nil
}

func (i *NetworkInterface) getList(ctx context.Context, key string) ([]string, error) {
	out, err := i.get(ctx, key)
	if err != nil {
		return nil, err
	}
	return strings.Split(out, ","), nil
}

// Mode 返回接口当前的工作模式。
func (i *NetworkInterface) Mode(ctx context.Context) (Mode, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.currentMode(ctx)
}

func (i *NetworkInterface) currentMode(ctx context.Context) (Mode, error) {
	out, err := i.get(ctx, "mode")
	return Mode(out), err
}

// AvailableModes 返回接口支持的所有工作模式。
func (i *NetworkInterface) AvailableModes(ctx context.Context) ([]Mode, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	list, err := i.getList(ctx, "modes")
	if err != nil {
		return nil, err
	}
	res := make([]Mode, len(list))
	for n, m := range list {
		res[n] = Mode(m)
	}
	return res, nil
}

// SetMode 设置接口工作模式。
// 可以使用 ModeFromIndex 把 0-5 的编号转换为 Mode。
func (i *NetworkInterface) SetMode(ctx context.Context, mode Mode) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	ok, err := i.set(ctx, "mode", string(mode))
	if err == nil {
		// 模式已经被外部改变，缓存不再可信
		i.mode = monitorUnknown
	}
	return ok, err
}

// Channel 返回接口当前信道。
func (i *NetworkInterface) Channel(ctx context.Context) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.getInt(ctx, "channel")
}

// SetChannel 设置接口信道 (1-14)。
func (i *NetworkInterface) SetChannel(ctx context.Context, channel int) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.set(ctx, "channel", strconv.Itoa(channel))
}

// Frequency 返回接口当前频率。
func (i *NetworkInterface) Frequency(ctx context.Context) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.getInt(ctx, "freq")
}

// SetFrequency 设置接口频率。
func (i *NetworkInterface) SetFrequency(ctx context.Context, freq int) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.set(ctx, "freq", strconv.Itoa(freq))
}

// Modulation 返回接口当前的 802.11 调制方式。
func (i *NetworkInterface) Modulation(ctx context.Context) (Modulation, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	out, err := i.get(ctx, "modu")
	return Modulation(out), err
}

// AvailableModulations 返回接口支持的所有调制方式。
func (i *NetworkInterface) AvailableModulations(ctx context.Context) ([]Modulation, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	list, err := i.getList(ctx, "modus")
	if err != nil {
		return nil, err
	}
	res := make([]Modulation, len(list))
	for n, m := range list {
		res[n] = Modulation(m)
	}
	return res, nil
}

// SetModulation 设置接口调制方式。
func (i *NetworkInterface) SetModulation(ctx context.Context, modu Modulation) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.set(ctx, "modu", string(modu))
}

// IsMonitor 报告接口是否处于监听模式。
// 优先返回缓存的状态；不支持 802.11 的接口返回 false。
func (i *NetworkInterface) IsMonitor(ctx context.Context) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch i.mode {
	case monitorOn:
		return true
	case monitorManaged:
		return false
	}

	mode, err := i.currentMode(ctx)
	if err != nil {
		return false
	}
	if mode == ModeMonitor {
		i.mode = monitorOn
		return true
	}
	i.mode = monitorManaged
	return false
}

// SetMonitor 切换接口的监听模式，等价于 SetMode(monitor) 或 SetMode(managed)。
func (i *NetworkInterface) SetMonitor(ctx context.Context, enable bool) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	target, state := ModeManaged, monitorManaged
	if enable {
		target, state = ModeMonitor, monitorOn
	}

	ok, err := i.set(ctx, "mode", string(target))
	if err != nil {
		return false, err
	}
	if !ok {
		i.mode = monitorUnknown
		i.wlan.logger.Error("Npcap WlanHelper returned with an error code",
			zap.String("iface", i.ID), zap.String("mode", string(target)))
		return false, nil
	}
	i.mode = state
	return true, nil
}
