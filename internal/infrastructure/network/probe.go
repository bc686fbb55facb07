package network

import (
	"context"
	"fmt"
	"strconv"

	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// EnvironmentProbe는 링크, NIC, 커널 상태를 읽기 전용으로 조회합니다.
// 개별 조회 실패는 실행 전체를 실패시키지 않고 "unknown"으로 처리됩니다.
type EnvironmentProbe struct {
	links  interfaces.LinkManager
	nic    interfaces.NICManager
	kernel interfaces.KernelManager
	logger *logrus.Logger
}

// NewEnvironmentProbe는 새로운 EnvironmentProbe를 생성합니다
func NewEnvironmentProbe(
	links interfaces.LinkManager,
	nic interfaces.NICManager,
	kernel interfaces.KernelManager,
	logger *logrus.Logger,
) *EnvironmentProbe {
	return &EnvironmentProbe{
		links:  links,
		nic:    nic,
		kernel: kernel,
		logger: logger,
	}
}

// Detect는 대상 인터페이스와 커널 기능 지원 여부를 감지합니다
func (p *EnvironmentProbe) Detect(ctx context.Context, override string) (entities.Environment, error) {
	iface, mtu, err := p.resolveInterface(override)
	if err != nil {
		return entities.Environment{}, err
	}

	env := entities.Environment{
		Interface: iface,
		MTU:       mtu,
		BBR:       p.detectBBR(ctx),
		CAKE:      p.detectModule(ctx, "sch_cake"),
		CPUs:      p.kernel.CPUCount(),
	}

	if driver, err := p.nic.DriverName(iface); err == nil {
		env.Driver = driver
	} else {
		p.logger.WithError(err).WithField("interface", iface).Debug("드라이버 조회 실패")
	}

	if irqs, err := p.kernel.InterfaceIRQs(iface); err == nil {
		env.IRQs = irqs
	} else {
		p.logger.WithError(err).WithField("interface", iface).Debug("IRQ 목록 조회 실패")
	}

	p.logger.WithFields(logrus.Fields{
		"interface": env.Interface,
		"mtu":       env.MTU,
		"driver":    env.Driver,
		"bbr":       env.BBR.String(),
		"cake":      env.CAKE.String(),
		"cpus":      env.CPUs,
		"irqs":      len(env.IRQs),
	}).Info("환경 감지 완료")

	return env, nil
}

func (p *EnvironmentProbe) resolveInterface(override string) (string, int, error) {
	name := override
	if name == "" {
		detected, err := p.links.DefaultRouteInterface()
		if err != nil {
			return "", 0, errors.NewDetectionError("대상 인터페이스를 찾을 수 없음 (--interface로 지정하세요)", err)
		}
		name = detected
	}

	if _, err := entities.NewInterfaceName(name); err != nil {
		return "", 0, errors.NewDetectionError(fmt.Sprintf("유효하지 않은 인터페이스 이름: %q", name), err)
	}

	mtu, err := p.links.LinkMTU(name)
	if err != nil {
		return "", 0, errors.NewDetectionError(fmt.Sprintf("인터페이스 %s를 찾을 수 없음", name), err)
	}
	return name, mtu, nil
}

func (p *EnvironmentProbe) detectBBR(ctx context.Context) entities.Capability {
	if available, err := p.kernel.AvailableCongestionControls(); err == nil {
		for _, cc := range available {
			if cc == "bbr" {
				return entities.CapabilitySupported
			}
		}
	} else {
		p.logger.WithError(err).Debug("혼잡 제어 목록 조회 실패")
	}
	// 빌트인이 아니어도 모듈로 로드할 수 있으면 지원됩니다
	return p.detectModule(ctx, "tcp_bbr")
}

// moduleCongestionControls는 혼잡 제어 모듈과 그 모듈이 제공하는 알고리즘입니다
var moduleCongestionControls = map[string]string{
	"tcp_bbr": "bbr",
}

// moduleCapabilityPresent는 모듈이 제공하는 기능을 커널이 이미 제공하는지 확인합니다.
// 빌트인 BBR은 modules.builtin 없이도 혼잡 제어 목록에 나타납니다.
func (p *EnvironmentProbe) moduleCapabilityPresent(module string) bool {
	cc, ok := moduleCongestionControls[module]
	if !ok {
		return false
	}
	available, err := p.kernel.AvailableCongestionControls()
	if err != nil {
		return false
	}
	for _, name := range available {
		if name == cc {
			return true
		}
	}
	return false
}

func (p *EnvironmentProbe) detectModule(ctx context.Context, module string) entities.Capability {
	ok, err := p.kernel.ModuleAvailable(ctx, module)
	if err != nil {
		p.logger.WithError(err).WithField("module", module).Warn("모듈 지원 여부를 확인할 수 없음")
		return entities.CapabilityUnknown
	}
	if ok {
		return entities.CapabilitySupported
	}
	return entities.CapabilityUnsupported
}

// ReadCurrent는 각 설정의 현재 값을 설정 값과 같은 형식으로 읽습니다
func (p *EnvironmentProbe) ReadCurrent(ctx context.Context, settings []entities.Setting) map[string]string {
	current := make(map[string]string, len(settings))
	features := map[string]map[string]bool{}
	coalesce := map[string]map[string]uint32{}

	for _, s := range settings {
		value, err := p.readOne(s, features, coalesce)
		if err != nil {
			p.logger.WithError(err).WithField("key", s.Key).Debug("현재 값 조회 실패")
			continue
		}
		current[s.Key] = value
	}
	return current
}

func (p *EnvironmentProbe) readOne(s entities.Setting, features map[string]map[string]bool, coalesce map[string]map[string]uint32) (string, error) {
	switch s.Category {
	case entities.CategoryModule:
		if p.kernel.ModuleLoaded(s.Name) || p.moduleCapabilityPresent(s.Name) {
			return entities.ModuleLoaded, nil
		}
		return entities.ModuleAbsent, nil

	case entities.CategorySysctl:
		v, err := p.kernel.ReadSysctl(s.Name)
		if err != nil {
			return "", err
		}
		return entities.NormalizeValue(v), nil

	case entities.CategoryQdisc:
		return p.links.RootQdisc(s.Device)

	case entities.CategoryMTU:
		mtu, err := p.links.LinkMTU(s.Device)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(mtu), nil

	case entities.CategoryOffload:
		state, ok := features[s.Device]
		if !ok {
			var err error
			if state, err = p.nic.Features(s.Device); err != nil {
				return "", err
			}
			features[s.Device] = state
		}
		enabled, ok := state[s.Name]
		if !ok {
			return "", errors.NewUnsupportedFeatureError(fmt.Sprintf("%s: 기능 %s 없음", s.Device, s.Name))
		}
		return FormatFeatureState(enabled), nil

	case entities.CategoryCoalesce:
		params, ok := coalesce[s.Device]
		if !ok {
			var err error
			if params, err = p.nic.Coalesce(s.Device); err != nil {
				return "", err
			}
			coalesce[s.Device] = params
		}
		v, ok := params[s.Name]
		if !ok {
			return "", errors.NewUnsupportedFeatureError(fmt.Sprintf("%s: 코얼레싱 파라미터 %s 없음", s.Device, s.Name))
		}
		return FormatCoalesceValue(s.Name, v), nil

	case entities.CategoryIRQAffinity:
		irq, err := strconv.Atoi(s.Name)
		if err != nil {
			return "", err
		}
		return p.kernel.ReadIRQAffinity(irq)
	}
	return "", fmt.Errorf("unknown category %s", s.Category)
}

// Status는 인터페이스와 커널의 현재 튜닝 상태를 보고합니다. 부팅 유닛 상태는 채우지 않습니다.
func (p *EnvironmentProbe) Status(ctx context.Context, override string) (entities.InterfaceStatus, error) {
	iface, mtu, err := p.resolveInterface(override)
	if err != nil {
		return entities.InterfaceStatus{}, err
	}

	status := entities.InterfaceStatus{
		Interface: iface,
		MTU:       mtu,
	}
	log := p.logger.WithField("interface", iface)

	if v, err := p.kernel.ReadSysctl("net.core.default_qdisc"); err == nil {
		status.DefaultQdisc = v
	} else {
		log.WithError(err).Debug("default_qdisc 조회 실패")
	}
	if v, err := p.kernel.ReadSysctl("net.ipv4.tcp_congestion_control"); err == nil {
		status.CongestionControl = v
	} else {
		log.WithError(err).Debug("tcp_congestion_control 조회 실패")
	}
	if v, err := p.links.RootQdisc(iface); err == nil {
		status.RootQdisc = v
	} else {
		log.WithError(err).Debug("루트 qdisc 조회 실패")
	}
	if v, err := p.nic.DriverName(iface); err == nil {
		status.Driver = v
	}
	if v, err := p.nic.Features(iface); err == nil {
		status.Offloads = v
	} else {
		log.WithError(err).Debug("오프로드 조회 실패")
	}
	if v, err := p.nic.Coalesce(iface); err == nil {
		status.Coalesce = v
	} else {
		log.WithError(err).Debug("코얼레싱 조회 실패")
	}

	return status, nil
}
