package winiface

import "errors"

// ErrNotFound 表示未找到指定的接口或路由。
var ErrNotFound = errors.New("not found")

// ErrPlatformUnavailable 表示当前平台无法枚举适配器。
var ErrPlatformUnavailable = errors.New("platform unavailable")

// ErrCapabilityUnsupported 表示接口或抓包后端不支持所请求的无线操作。
var ErrCapabilityUnsupported = errors.New("capability unsupported")

// ErrHelperFailure 表示外部辅助进程执行失败、超时或返回非零退出码。
var ErrHelperFailure = errors.New("helper process failure")

// ErrMalformedRecord 表示原始适配器记录的嵌套结构无法解析。
var ErrMalformedRecord = errors.New("malformed adapter record")

// ErrInvalidInterface 表示接口没有可用的抓包设备。
var ErrInvalidInterface = errors.New("interface has no capture device")

// ErrInvalidInput 表示传入的选项参数无效。
var ErrInvalidInput = errors.New("invalid input")
