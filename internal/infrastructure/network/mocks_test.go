package network

import (
	"context"
	"time"

	domainErrors "nettune/internal/domain/errors"

	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor는 테스트용 Mock CommandExecutor입니다
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	argList := []interface{}{ctx, command}
	for _, arg := range args {
		argList = append(argList, arg)
	}
	mockArgs := m.Called(argList...)
	return mockArgs.Get(0).([]byte), mockArgs.Error(1)
}

func (m *MockCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	argList := []interface{}{ctx, timeout, command}
	for _, arg := range args {
		argList = append(argList, arg)
	}
	mockArgs := m.Called(argList...)
	return mockArgs.Get(0).([]byte), mockArgs.Error(1)
}

var errLinkNotFound = domainErrors.NewNotFoundError("link not found")

// fakeLinks는 LinkManager 테스트 더블입니다
type fakeLinks struct {
	defaultIface string
	defaultErr   error
	mtu          map[string]int
	qdisc        map[string]string
}

func (f *fakeLinks) DefaultRouteInterface() (string, error) {
	return f.defaultIface, f.defaultErr
}

func (f *fakeLinks) LinkMTU(name string) (int, error) {
	mtu, ok := f.mtu[name]
	if !ok {
		return 0, errLinkNotFound
	}
	return mtu, nil
}

func (f *fakeLinks) SetLinkMTU(name string, mtu int) error {
	if _, ok := f.mtu[name]; !ok {
		return errLinkNotFound
	}
	f.mtu[name] = mtu
	return nil
}

func (f *fakeLinks) RootQdisc(name string) (string, error) {
	q, ok := f.qdisc[name]
	if !ok {
		return "", errLinkNotFound
	}
	return q, nil
}

// fakeNIC는 NICManager 테스트 더블입니다
type fakeNIC struct {
	driver     string
	features   map[string]bool
	coalesce   map[string]uint32
	setErr     error
	featureErr error
}

func (f *fakeNIC) DriverName(string) (string, error) { return f.driver, nil }

func (f *fakeNIC) Features(string) (map[string]bool, error) {
	if f.featureErr != nil {
		return nil, f.featureErr
	}
	out := make(map[string]bool, len(f.features))
	for k, v := range f.features {
		out[k] = v
	}
	return out, nil
}

func (f *fakeNIC) SetFeature(_ string, feature string, enabled bool) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.features[feature] = enabled
	return nil
}

func (f *fakeNIC) Coalesce(string) (map[string]uint32, error) {
	out := make(map[string]uint32, len(f.coalesce))
	for k, v := range f.coalesce {
		out[k] = v
	}
	return out, nil
}

func (f *fakeNIC) SetCoalesce(_ string, param string, value uint32) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.coalesce[param] = value
	return nil
}

func (f *fakeNIC) Close() {}

// fakeKernel은 KernelManager 테스트 더블입니다
type fakeKernel struct {
	sysctls        map[string]string
	loaded         map[string]bool
	builtin        map[string]bool
	available      map[string]bool
	availableErr   error
	ccs            []string
	ccErr          error
	irqs           []int
	affinity       map[int]string
	cpus           int
	failingModules map[string]bool
	qdiscs         map[string]string
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		sysctls:        map[string]string{},
		loaded:         map[string]bool{},
		builtin:        map[string]bool{},
		available:      map[string]bool{},
		affinity:       map[int]string{},
		failingModules: map[string]bool{},
		qdiscs:         map[string]string{},
		cpus:           2,
	}
}

func (k *fakeKernel) ReadSysctl(key string) (string, error) {
	v, ok := k.sysctls[key]
	if !ok {
		return "", domainErrors.NewSystemError("no such sysctl "+key, nil)
	}
	return v, nil
}

func (k *fakeKernel) WriteSysctl(_ context.Context, key, value string) error {
	k.sysctls[key] = value
	return nil
}

func (k *fakeKernel) ReloadSysctl(context.Context) error { return nil }

func (k *fakeKernel) ModuleLoaded(name string) bool { return k.loaded[name] || k.builtin[name] }

func (k *fakeKernel) ModuleAvailable(_ context.Context, name string) (bool, error) {
	if k.availableErr != nil {
		return false, k.availableErr
	}
	return k.ModuleLoaded(name) || k.available[name], nil
}

func (k *fakeKernel) LoadModule(_ context.Context, name string) error {
	if k.failingModules[name] {
		return domainErrors.NewMutationError("modprobe "+name+" 실패", nil)
	}
	k.loaded[name] = true
	return nil
}

func (k *fakeKernel) AvailableCongestionControls() ([]string, error) { return k.ccs, k.ccErr }

func (k *fakeKernel) SetRootQdisc(_ context.Context, iface, qdisc string) error {
	k.qdiscs[iface] = qdisc
	return nil
}

func (k *fakeKernel) InterfaceIRQs(string) ([]int, error) { return k.irqs, nil }

func (k *fakeKernel) ReadIRQAffinity(irq int) (string, error) {
	v, ok := k.affinity[irq]
	if !ok {
		return "", domainErrors.NewSystemError("no irq", nil)
	}
	return v, nil
}

func (k *fakeKernel) WriteIRQAffinity(irq int, cpuList string) error {
	k.affinity[irq] = cpuList
	return nil
}

func (k *fakeKernel) CPUCount() int { return k.cpus }
