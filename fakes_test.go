package winiface

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAdapters struct {
	raws  []RawAdapter
	err   error
	calls int
}

func (f *fakeAdapters) Adapters(context.Context) ([]RawAdapter, error) {
	f.calls++
	return f.raws, f.err
}

type fakeDevices []string

func (f fakeDevices) DeviceNames() ([]string, error) {
	return f, nil
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Running(context.Context) (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *mockService) Start(_ context.Context, elevate bool) error {
	return m.Called(elevate).Error(0)
}

func (m *mockService) Stop(_ context.Context, elevate bool) error {
	return m.Called(elevate).Error(0)
}

type mockHelper struct {
	mock.Mock
}

func (m *mockHelper) Get(_ context.Context, id, key string) (string, error) {
	args := m.Called(id, key)
	return args.String(0), args.Error(1)
}

func (m *mockHelper) Set(_ context.Context, id, key, value string) error {
	return m.Called(id, key, value).Error(0)
}

type fakePrompter struct {
	answer bool
	asked  []string
}

func (p *fakePrompter) Confirm(q string) bool {
	p.asked = append(p.asked, q)
	return p.answer
}

type fakeDot11 struct {
	list string
	ok   bool
	err  error
}

func (f fakeDot11) Dot11Adapters() (string, bool, error) {
	return f.list, f.ok, f.err
}

type fakeVendors struct{}

func (fakeVendors) ResolveMAC(mac string) string {
	return "Acme:" + mac
}

func ipv4(s string) RawAddress {
	return RawAddress{Family: FamilyIPv4, Bytes: netip.MustParseAddr(s).AsSlice()}
}

func ipv6(s string) RawAddress {
	return RawAddress{Family: FamilyIPv6, Bytes: netip.MustParseAddr(s).AsSlice()}
}

// rawAdapter 构造一个带 6 字节 MAC 的原始适配器记录。
func rawAdapter(id string, index uint32, name string, addrs ...RawAddress) RawAdapter {
	return RawAdapter{
		FriendlyName:    name,
		Description:     name + " adapter",
		AdapterName:     id,
		IfIndex:         index,
		PhysicalAddress: []byte{0x00, 0x11, 0x22, 0x33, 0x44, byte(index)},
		PhysicalLength:  6,
		IPv4Metric:      10,
		IPv6Metric:      20,
		Unicast:         addrs,
	}
}

func device(id string) string {
	return `\Device\NPF_` + id
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func loadedRegistry(t *testing.T, raws []RawAdapter, devices []string, opts ...Option) (*Registry, *observer.ObservedLogs) {
	t.Helper()
	logger, logs := observedLogger()
	opts = append([]Option{
		WithLogger(logger),
		WithAdapterSource(&fakeAdapters{raws: raws}),
		WithDeviceLister(fakeDevices(devices)),
	}, opts...)

	reg, err := New(opts...)
	require.NoError(t, err)
	require.NoError(t, reg.Load(context.Background()))
	return reg, logs
}
