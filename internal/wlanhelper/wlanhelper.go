// Package wlanhelper 调用 Npcap 的 WlanHelper.exe 查询和设置 802.11 参数。
//
//	WlanHelper.exe <guid> mode            查询
//	WlanHelper.exe <guid> mode monitor    设置（需要管理员权限）
package wlanhelper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrFailure 表示 WlanHelper 返回了错误、超时或无法启动。
var ErrFailure = errors.New("WlanHelper failed")

// ElevateFunc 以管理员权限运行 exe 并返回退出码。
type ElevateFunc func(ctx context.Context, exe string, args string) (uint32, error)

// Helper 是 WlanHelper.exe 的包装。
type Helper struct {
	path    string
	elevate ElevateFunc
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// New 创建一个 Helper。elevate 为 nil 时设置命令也直接运行。
func New(path string, elevate ElevateFunc) *Helper {
	return &Helper{
		path:    path,
		elevate: elevate,
		command: exec.CommandContext,
	}
}

// Get 查询 key 的当前值，返回 WlanHelper 的标准输出。
func (h *Helper) Get(ctx context.Context, id, key string) (string, error) {
	var stdout bytes.Buffer
	cmd := h.command(ctx, h.path, id, key)
	cmd.Stdout = &stdout
	hideWindow(cmd)

	if err := cmd.Run(); err != nil {
		return "", h.failure(ctx, err)
	}
	return string(bytes.TrimSpace(stdout.Bytes())), nil
}

// Set 设置 key 的值。
func (h *Helper) Set(ctx context.Context, id, key, value string) error {
	if h.elevate == nil {
		cmd := h.command(ctx, h.path, id, key, value)
		hideWindow(cmd)
		if err := cmd.Run(); err != nil {
			return h.failure(ctx, err)
		}
		return nil
	}

	code, err := h.elevate(ctx, h.path, id+" "+key+" "+value)
	if err != nil {
		return h.failure(ctx, err)
	}
	if code != 0 {
		return fmt.Errorf("%w: exit code %d", ErrFailure, code)
	}
	return nil
}

func (h *Helper) failure(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrFailure, ctxErr)
	}
	return fmt.Errorf("%w: %w", ErrFailure, err)
}
