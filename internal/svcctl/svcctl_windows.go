//go:build windows

// Package svcctl 查询和控制抓包后端的 Windows 服务 (npcap / npf)。
package svcctl

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"

	"github.com/bnkrr/winiface/internal/elevation"
)

// ServiceName 返回抓包后端的服务名。
func ServiceName(npcap bool) string {
	if npcap {
		return "npcap"
	}
	return "npf"
}

// Controller 控制一个 Windows 服务。
type Controller struct {
	Name string
}

// Running 检查服务是否正在运行（不需要管理员权限）。
func (c *Controller) Running(_ context.Context) (bool, error) {
	h, err := windows.OpenSCManager(nil, nil, windows.SC_MANAGER_CONNECT)
	if err != nil {
		return false, fmt.Errorf("failed to connect to SCM: %w", err)
	}
	defer windows.CloseServiceHandle(h)

	name, err := windows.UTF16PtrFromString(c.Name)
	if err != nil {
		return false, err
	}
	s, err := windows.OpenService(h, name, windows.SERVICE_QUERY_STATUS)
	if err != nil {
		return false, fmt.Errorf("service %s not found: %w", c.Name, err)
	}
	defer windows.CloseServiceHandle(s)

	var status windows.SERVICE_STATUS
	if err := windows.QueryServiceStatus(s, &status); err != nil {
		return false, fmt.Errorf("failed to query service %s: %w", c.Name, err)
	}
	return status.CurrentState == windows.SERVICE_RUNNING, nil
}

// Start 启动服务。elevate 为 true 时通过 UAC 运行 sc.exe。
func (c *Controller) Start(ctx context.Context, elevate bool) error {
	if elevate {
		return c.elevated(ctx, "start")
	}

	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(c.Name)
	if err != nil {
		return fmt.Errorf("service %s not found: %w", c.Name, err)
	}
	defer s.Close()

	return s.Start()
}

// Stop 停止服务。elevate 为 true 时通过 UAC 运行 sc.exe。
func (c *Controller) Stop(ctx context.Context, elevate bool) error {
	if elevate {
		return c.elevated(ctx, "stop")
	}

	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(c.Name)
	if err != nil {
		return fmt.Errorf("service %s not found: %w", c.Name, err)
	}
	defer s.Close()

	_, err = s.Control(svc.Stop)
	return err
}

func (c *Controller) elevated(ctx context.Context, action string) error {
	code, err := elevation.Run(ctx, "sc.exe", action+" "+c.Name)
	if err != nil {
		return fmt.Errorf("sc %s %s: %w", action, c.Name, err)
	}
	if code != 0 {
		return fmt.Errorf("sc %s %s: exit code %d", action, c.Name, code)
	}
	return nil
}
