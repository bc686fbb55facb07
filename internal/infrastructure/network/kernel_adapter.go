package network

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"nettune/internal/domain/constants"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"
	"nettune/pkg/utils"

	"github.com/sirupsen/logrus"
)

// KernelPaths는 커널 가상 파일 시스템 경로입니다. 테스트에서 임시 디렉토리로 대체합니다.
type KernelPaths struct {
	ProcSys        string
	Interrupts     string
	IRQDir         string
	SysModule      string
	LibModules     string
	CommandTimeout time.Duration
}

// DefaultKernelPaths는 실제 시스템 경로를 반환합니다
func DefaultKernelPaths(timeout time.Duration) KernelPaths {
	return KernelPaths{
		ProcSys:        constants.ProcSysDir,
		Interrupts:     constants.ProcInterrupts,
		IRQDir:         constants.ProcIRQDir,
		SysModule:      constants.SysModuleDir,
		LibModules:     constants.LibModulesDir,
		CommandTimeout: timeout,
	}
}

// KernelAdapter는 sysctl, modprobe, tc와 /proc, /sys를 사용하여 커널 상태를 다룹니다
type KernelAdapter struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	logger          *logrus.Logger
	paths           KernelPaths
	numCPU          func() int
}

// NewKernelAdapter는 새로운 KernelAdapter를 생성합니다
func NewKernelAdapter(
	executor interfaces.CommandExecutor,
	fs interfaces.FileSystem,
	logger *logrus.Logger,
	paths KernelPaths,
) *KernelAdapter {
	if paths.CommandTimeout <= 0 {
		paths.CommandTimeout = constants.DefaultCommandTimeout * time.Second
	}
	return &KernelAdapter{
		commandExecutor: executor,
		fileSystem:      fs,
		logger:          logger,
		paths:           paths,
		numCPU:          runtime.NumCPU,
	}
}

// ReadSysctl은 /proc/sys에서 sysctl 값을 읽습니다
func (a *KernelAdapter) ReadSysctl(key string) (string, error) {
	data, err := a.fileSystem.ReadFile(a.sysctlPath(key))
	if err != nil {
		return "", errors.NewSystemError(fmt.Sprintf("sysctl %s 읽기 실패", key), err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteSysctl은 sysctl -w로 값을 씁니다
func (a *KernelAdapter) WriteSysctl(ctx context.Context, key, value string) error {
	arg := fmt.Sprintf("%s=%s", key, value)
	if _, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.paths.CommandTimeout, "sysctl", "-w", arg); err != nil {
		return errors.NewMutationError(fmt.Sprintf("sysctl -w %s 실패", arg), err)
	}
	return nil
}

// ReloadSysctl은 sysctl --system으로 남아있는 설정 파일을 다시 적용합니다
func (a *KernelAdapter) ReloadSysctl(ctx context.Context) error {
	if _, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.paths.CommandTimeout, "sysctl", "--system"); err != nil {
		return errors.NewSystemError("sysctl --system 실패", err)
	}
	return nil
}

// ModuleLoaded는 /sys/module에 모듈이 있거나 modules.builtin에 등록되어 있는지 확인합니다.
// 파라미터가 없는 빌트인 모듈은 /sys/module에 나타나지 않습니다.
func (a *KernelAdapter) ModuleLoaded(name string) bool {
	if a.fileSystem.Exists(filepath.Join(a.paths.SysModule, name)) {
		return true
	}
	return a.moduleBuiltin(name)
}

func (a *KernelAdapter) moduleBuiltin(name string) bool {
	release, err := a.ReadSysctl("kernel.osrelease")
	if err != nil || release == "" {
		return false
	}
	data, err := a.fileSystem.ReadFile(filepath.Join(a.paths.LibModules, release, "modules.builtin"))
	if err != nil {
		a.logger.WithError(err).Debug("modules.builtin 읽기 실패")
		return false
	}
	return builtinContains(string(data), name)
}

// builtinContains는 modules.builtin 내용에 모듈이 있는지 확인합니다.
// 항목은 kernel/net/ipv4/tcp_bbr.ko 형식이고 모듈 이름의 '-'와 '_'는 같게 취급합니다.
func builtinContains(content, name string) bool {
	want := strings.ReplaceAll(name, "-", "_")
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(line), ".ko")
		if strings.ReplaceAll(base, "-", "_") == want {
			return true
		}
	}
	return false
}

// ModuleAvailable은 모듈이 이미 로드되었거나 modinfo로 찾을 수 있는지 확인합니다.
// modinfo 실행 자체가 불가능하면 에러를 반환합니다.
func (a *KernelAdapter) ModuleAvailable(ctx context.Context, name string) (bool, error) {
	if a.ModuleLoaded(name) {
		return true, nil
	}
	_, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.paths.CommandTimeout, "modinfo", "-n", name)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, exec.ErrNotFound) {
		return false, errors.NewSystemError("modinfo 실행 불가", err)
	}
	a.logger.WithError(err).WithField("module", name).Debug("modinfo가 모듈을 찾지 못함")
	return false, nil
}

// LoadModule은 modprobe로 커널 모듈을 로드합니다
func (a *KernelAdapter) LoadModule(ctx context.Context, name string) error {
	if _, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.paths.CommandTimeout, "modprobe", name); err != nil {
		return errors.NewMutationError(fmt.Sprintf("modprobe %s 실패", name), err)
	}
	return nil
}

// AvailableCongestionControls는 커널이 현재 제공하는 혼잡 제어 알고리즘 목록입니다
func (a *KernelAdapter) AvailableCongestionControls() ([]string, error) {
	v, err := a.ReadSysctl("net.ipv4.tcp_available_congestion_control")
	if err != nil {
		return nil, err
	}
	return strings.Fields(v), nil
}

// SetRootQdisc는 tc로 인터페이스의 루트 qdisc를 교체합니다
func (a *KernelAdapter) SetRootQdisc(ctx context.Context, iface, qdisc string) error {
	if _, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.paths.CommandTimeout,
		"tc", "qdisc", "replace", "dev", iface, "root", qdisc); err != nil {
		return errors.NewMutationError(fmt.Sprintf("tc qdisc replace dev %s root %s 실패", iface, qdisc), err)
	}
	return nil
}

// InterfaceIRQs는 /proc/interrupts에서 인터페이스 이름(또는 "<iface>-" 접두사)을 가진 IRQ를 찾습니다
func (a *KernelAdapter) InterfaceIRQs(iface string) ([]int, error) {
	data, err := a.fileSystem.ReadFile(a.paths.Interrupts)
	if err != nil {
		return nil, errors.NewSystemError("/proc/interrupts 읽기 실패", err)
	}
	return parseInterfaceIRQs(string(data), iface), nil
}

func parseInterfaceIRQs(content, iface string) []int {
	var irqs []int
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || !strings.HasSuffix(fields[0], ":") {
			continue
		}
		irq, err := strconv.Atoi(strings.TrimSuffix(fields[0], ":"))
		if err != nil {
			// NMI, LOC 등 숫자가 아닌 행
			continue
		}
		for _, f := range fields[1:] {
			if f == iface || strings.HasPrefix(f, iface+"-") || strings.HasPrefix(f, iface+"@") {
				irqs = append(irqs, irq)
				break
			}
		}
	}
	return irqs
}

// ReadIRQAffinity는 IRQ의 CPU 목록을 읽습니다
func (a *KernelAdapter) ReadIRQAffinity(irq int) (string, error) {
	data, err := a.fileSystem.ReadFile(a.irqAffinityPath(irq))
	if err != nil {
		return "", errors.NewSystemError(fmt.Sprintf("IRQ %d 친화도 읽기 실패", irq), err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteIRQAffinity는 IRQ의 CPU 목록을 씁니다
func (a *KernelAdapter) WriteIRQAffinity(irq int, cpuList string) error {
	if err := utils.ValidateCPUList(cpuList); err != nil {
		return errors.NewMutationError(fmt.Sprintf("IRQ %d 친화도 값 오류", irq), err)
	}
	if err := a.fileSystem.WriteFile(a.irqAffinityPath(irq), []byte(cpuList+"\n"), constants.ConfigFilePermission); err != nil {
		return errors.NewMutationError(fmt.Sprintf("IRQ %d 친화도 쓰기 실패", irq), err)
	}
	return nil
}

// CPUCount는 사용 가능한 CPU 수입니다
func (a *KernelAdapter) CPUCount() int {
	return a.numCPU()
}

func (a *KernelAdapter) sysctlPath(key string) string {
	return filepath.Join(a.paths.ProcSys, strings.ReplaceAll(key, ".", "/"))
}

func (a *KernelAdapter) irqAffinityPath(irq int) string {
	return filepath.Join(a.paths.IRQDir, strconv.Itoa(irq), "smp_affinity_list")
}
