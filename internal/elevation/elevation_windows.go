//go:build windows

// Package elevation 以管理员权限 (UAC) 启动进程并等待其退出。
package elevation

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ErrTimeout 表示提权进程在 context 截止前没有退出。
var ErrTimeout = errors.New("elevated process timed out")

const (
	seeMaskNoCloseProcess = 0x00000040
	waitTimeout           = 0x00000102
)

// shellExecuteInfo 对应 SHELLEXECUTEINFOW。
type shellExecuteInfo struct {
	cbSize       uint32
	fMask        uint32
	hwnd         uintptr
	lpVerb       *uint16
	lpFile       *uint16
	lpParameters *uint16
	lpDirectory  *uint16
	nShow        int32
	hInstApp     uintptr
	lpIDList     uintptr
	lpClass      *uint16
	hkeyClass    uintptr
	dwHotKey     uint32
	hIcon        uintptr
	hProcess     windows.Handle
}

var (
	shell32         = windows.NewLazySystemDLL("shell32.dll")
	shellExecuteExW = shell32.NewProc("ShellExecuteExW")
)

// Run 以 "runas" 启动 exe 并隐藏窗口，返回进程退出码。
// ctx 带截止时间时，超时后终止进程并返回 ErrTimeout。
func Run(ctx context.Context, exe string, args string) (uint32, error) {
	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return 0, err
	}
	file, err := windows.UTF16PtrFromString(exe)
	if err != nil {
		return 0, err
	}
	params, err := windows.UTF16PtrFromString(args)
	if err != nil {
		return 0, err
	}

	sei := shellExecuteInfo{
		fMask:        seeMaskNoCloseProcess,
		lpVerb:       verb,
		lpFile:       file,
		lpParameters: params,
		nShow:        0, // SW_HIDE
	}
	sei.cbSize = uint32(unsafe.Sizeof(sei))

	r1, _, errCall := shellExecuteExW.Call(uintptr(unsafe.Pointer(&sei)))
	if r1 == 0 {
		return 0, fmt.Errorf("ShellExecuteEx: %w", errCall)
	}
	if sei.hProcess == 0 {
		return 0, nil
	}
	defer windows.CloseHandle(sei.hProcess)

	wait := uint32(windows.INFINITE)
	if deadline, ok := ctx.Deadline(); ok {
		wait = uint32(max(time.Until(deadline), 0) / time.Millisecond)
	}
	event, err := windows.WaitForSingleObject(sei.hProcess, wait)
	if err != nil {
		return 0, fmt.Errorf("WaitForSingleObject: %w", err)
	}
	if event == waitTimeout {
		_ = windows.TerminateProcess(sei.hProcess, 1)
		return 0, ErrTimeout
	}

	var code uint32
	if err := windows.GetExitCodeProcess(sei.hProcess, &code); err != nil {
		return 0, fmt.Errorf("GetExitCodeProcess: %w", err)
	}
	return code, nil
}
