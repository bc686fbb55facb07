package usecases

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"nettune/internal/domain/entities"
	domainErrors "nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"
	"nettune/internal/domain/services"
	"nettune/internal/infrastructure/adapters"
	"nettune/internal/infrastructure/config"
	infraServices "nettune/internal/infrastructure/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeHost는 키/값 상태를 가진 가짜 리눅스 호스트입니다.
// Probe와 Mutator를 함께 구현하여 apply 결과가 다음 조회에 반영됩니다.
type fakeHost struct {
	iface     string
	cpus      int
	irqs      []int
	bbr       entities.Capability
	cake      entities.Capability
	values    map[string]string
	failing   map[string]error
	clamp     map[string]string
	detectErr error

	mutated []string
	reloads int
}

// newFakeHost는 배포판 기본값을 가진 호스트를 만듭니다
func newFakeHost() *fakeHost {
	return &fakeHost{
		iface: "eth0",
		cpus:  2,
		irqs:  []int{40, 41},
		bbr:   entities.CapabilitySupported,
		cake:  entities.CapabilitySupported,
		values: map[string]string{
			"module/tcp_bbr":                  entities.ModuleAbsent,
			"module/sch_cake":                 entities.ModuleAbsent,
			"net.core.default_qdisc":          "fq_codel",
			"net.ipv4.tcp_congestion_control": "cubic",
			"net.core.rmem_max":               "212992",
			"net.core.wmem_max":               "212992",
			"net.ipv4.tcp_rmem":               "4096\t131072\t6291456",
			"net.ipv4.tcp_wmem":               "4096\t16384\t4194304",
			"net.core.somaxconn":              "4096",
			"link/eth0/qdisc":                 "fq_codel",
			"link/eth0/mtu":                   "1500",
			"nic/eth0/feature/gro":            "on",
			"nic/eth0/feature/gso":            "on",
			"nic/eth0/feature/tso":            "on",
			"nic/eth0/feature/lro":            "off",
			"nic/eth0/coalesce/adaptive-rx":   "off",
			"nic/eth0/coalesce/rx-usecs":      "3",
			"nic/eth0/coalesce/tx-usecs":      "0",
			"irq/40/smp_affinity_list":        "0-1",
			"irq/41/smp_affinity_list":        "0-1",
		},
		failing: map[string]error{},
		clamp:   map[string]string{},
	}
}

func (h *fakeHost) Detect(ctx context.Context, override string) (entities.Environment, error) {
	if h.detectErr != nil {
		return entities.Environment{}, h.detectErr
	}
	iface := h.iface
	if override != "" {
		if override != h.iface {
			return entities.Environment{}, domainErrors.NewDetectionError(fmt.Sprintf("interface %s not found", override), nil)
		}
		iface = override
	}
	mtu, _ := strconv.Atoi(h.values["link/"+iface+"/mtu"])
	return entities.Environment{
		Interface: iface,
		MTU:       mtu,
		Driver:    "virtio_net",
		BBR:       h.bbr,
		CAKE:      h.cake,
		CPUs:      h.cpus,
		IRQs:      h.irqs,
	}, nil
}

func (h *fakeHost) ReadCurrent(ctx context.Context, settings []entities.Setting) map[string]string {
	current := make(map[string]string, len(settings))
	for _, s := range settings {
		if v, ok := h.values[s.Key]; ok {
			current[s.Key] = v
		}
	}
	return current
}

func (h *fakeHost) Status(ctx context.Context, override string) (entities.InterfaceStatus, error) {
	env, err := h.Detect(ctx, override)
	if err != nil {
		return entities.InterfaceStatus{}, err
	}
	return entities.InterfaceStatus{
		Interface:         env.Interface,
		Driver:            env.Driver,
		MTU:               env.MTU,
		DefaultQdisc:      h.values["net.core.default_qdisc"],
		RootQdisc:         h.values["link/"+env.Interface+"/qdisc"],
		CongestionControl: h.values["net.ipv4.tcp_congestion_control"],
	}, nil
}

func (h *fakeHost) Apply(ctx context.Context, s entities.Setting) error {
	if err, ok := h.failing[s.Key]; ok {
		return err
	}
	h.mutated = append(h.mutated, s.Key)
	if v, ok := h.clamp[s.Key]; ok {
		h.values[s.Key] = v
		return nil
	}
	h.values[s.Key] = s.Value
	return nil
}

func (h *fakeHost) ReloadSysctl(ctx context.Context) error {
	h.reloads++
	return nil
}

// fakeBootUnits는 설치 상태만 기록하는 BootUnitManager입니다
type fakeBootUnits struct {
	installed map[string]interfaces.BootUnitSpec
}

func newFakeBootUnits() *fakeBootUnits {
	return &fakeBootUnits{installed: map[string]interfaces.BootUnitSpec{}}
}

func (b *fakeBootUnits) Install(ctx context.Context, spec interfaces.BootUnitSpec) (string, error) {
	b.installed[spec.Interface] = spec
	return "/etc/systemd/system/" + infraServices.UnitName(spec.Interface), nil
}

func (b *fakeBootUnits) Remove(ctx context.Context, iface string) (bool, error) {
	if _, ok := b.installed[iface]; !ok {
		return false, nil
	}
	delete(b.installed, iface)
	return true, nil
}

func (b *fakeBootUnits) State(ctx context.Context, iface string) entities.BootUnitState {
	if _, ok := b.installed[iface]; !ok {
		return entities.BootUnitState{}
	}
	return entities.BootUnitState{
		Installed: true,
		Enabled:   true,
		Path:      "/etc/systemd/system/" + infraServices.UnitName(iface),
	}
}

// MockBootUnitManager는 호출 인자를 검증하기 위한 Mock입니다
type MockBootUnitManager struct {
	mock.Mock
}

func (m *MockBootUnitManager) Install(ctx context.Context, spec interfaces.BootUnitSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *MockBootUnitManager) Remove(ctx context.Context, iface string) (bool, error) {
	args := m.Called(ctx, iface)
	return args.Bool(0), args.Error(1)
}

func (m *MockBootUnitManager) State(ctx context.Context, iface string) entities.BootUnitState {
	args := m.Called(ctx, iface)
	return args.Get(0).(entities.BootUnitState)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// testRig는 가짜 호스트와 임시 디렉토리 위의 실제 영속화 서비스로 구성됩니다
type testRig struct {
	root      string
	host      *fakeHost
	bootUnits *fakeBootUnits
	backups   *infraServices.BackupService
	persister *infraServices.PersistedConfigService
	engine    *TuningEngine
	revert    *RevertTuningUseCase
	status    *StatusUseCase
}

func (r *testRig) sysctlPath() string  { return filepath.Join(r.root, "etc/sysctl.d/99-nettune.conf") }
func (r *testRig) modulesPath() string { return filepath.Join(r.root, "etc/modules-load.d/nettune.conf") }
func (r *testRig) backupDir() string   { return filepath.Join(r.root, "var/lib/nettune/backups") }

func newTestRig(t *testing.T) *testRig {
	return newTestRigWithBackupDir(t, "")
}

func newTestRigWithBackupDir(t *testing.T, backupDir string) *testRig {
	t.Helper()
	logger := quietLogger()
	fs := adapters.NewRealFileSystem()
	clock := fixedClock{now: time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)}

	rig := &testRig{
		root:      t.TempDir(),
		host:      newFakeHost(),
		bootUnits: newFakeBootUnits(),
	}
	if backupDir == "" {
		backupDir = rig.backupDir()
	}
	rig.backups = infraServices.NewBackupService(fs, clock, logger, backupDir)
	rig.persister = infraServices.NewPersistedConfigService(fs, logger, rig.sysctlPath(), rig.modulesPath())

	profiles := config.NewProfileLoader(fs, logger, filepath.Join(rig.root, "etc/nettune/profiles"))
	rig.engine = NewTuningEngine(rig.host, services.NewProfileResolver(), profiles, rig.host, rig.backups, rig.persister, clock, logger)

	runs := 0
	rig.engine.newRunID = func() string {
		runs++
		return fmt.Sprintf("0000000%d-run", runs)
	}

	rig.revert = NewRevertTuningUseCase(rig.persister, rig.host, rig.backups, rig.bootUnits, rig.host, logger)
	rig.status = NewStatusUseCase(rig.host, rig.bootUnits, logger)
	return rig
}

// files는 root 아래의 모든 일반 파일 경로를 반환합니다
func (r *testRig) files(t *testing.T) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(r.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			out = append(out, path)
		}
		return nil
	})
	require.NoError(t, err)
	return out
}
