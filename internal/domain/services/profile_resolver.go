package services

import (
	"fmt"
	"strconv"

	"nettune/internal/domain/constants"
	"nettune/internal/domain/entities"
	domainErrors "nettune/internal/domain/errors"
)

// 커널 모듈이 제공하는 qdisc와 혼잡 제어 알고리즘
var (
	qdiscModules = map[string]string{
		"cake": "sch_cake",
		"fq":   "sch_fq",
	}
	congestionModules = map[string]string{
		"bbr": "tcp_bbr",
	}
)

// ResolveOptions는 프로파일과 독립적인 호출자 지정 값입니다
type ResolveOptions struct {
	// MTU가 0이면 프로파일 기본값을 사용하고, 그것도 0이면 MTU를 변경하지 않습니다
	MTU int
}

// ProfileResolver는 프로파일과 감지 결과를 순서가 있는 설정 목록으로 변환하는 도메인 서비스입니다.
// 부수 효과가 없으며 같은 입력에 대해 항상 같은 결과를 반환합니다.
type ProfileResolver struct{}

// NewProfileResolver는 새로운 ProfileResolver를 생성합니다
func NewProfileResolver() *ProfileResolver {
	return &ProfileResolver{}
}

// Resolve는 적용 순서대로 정렬된 설정과 경고를 반환합니다.
// 순서: 커널 모듈, sysctl, 루트 qdisc, MTU, 오프로드, 코얼레싱, IRQ 친화도
func (r *ProfileResolver) Resolve(profile entities.Profile, env entities.Environment, opts ResolveOptions) ([]entities.Setting, []entities.Warning) {
	var warnings []entities.Warning
	list := &settingList{index: map[string]int{}}

	cc := profile.CongestionControl
	if cc == "bbr" && env.BBR != entities.CapabilitySupported {
		warnings = append(warnings, entities.Warning{
			Kind:    domainErrors.ErrorTypeUnsupported,
			Key:     "net.ipv4.tcp_congestion_control",
			Message: fmt.Sprintf("bbr %s, falling back to %s", env.BBR, constants.FallbackCongestionControl),
		})
		cc = constants.FallbackCongestionControl
	}

	qdisc := profile.Qdisc
	if qdisc == "cake" && env.CAKE != entities.CapabilitySupported {
		warnings = append(warnings, entities.Warning{
			Kind:    domainErrors.ErrorTypeUnsupported,
			Key:     "net.core.default_qdisc",
			Message: fmt.Sprintf("cake %s, falling back to %s", env.CAKE, constants.FallbackQdisc),
		})
		qdisc = constants.FallbackQdisc
	}

	// 모듈은 이를 사용하는 sysctl보다 먼저 로드되어야 합니다
	if mod, ok := congestionModules[cc]; ok {
		list.add(entities.NewModuleSetting(mod, true))
	}
	if mod, ok := qdiscModules[qdisc]; ok {
		list.add(entities.NewModuleSetting(mod, true))
	}

	list.add(entities.NewSysctlSetting("net.core.default_qdisc", qdisc))
	list.add(entities.NewSysctlSetting("net.ipv4.tcp_congestion_control", cc))
	for _, kv := range profile.Sysctls {
		// 혼잡 제어와 qdisc는 위에서 대체값이 반영된 값을 사용합니다
		if kv.Key == "net.core.default_qdisc" || kv.Key == "net.ipv4.tcp_congestion_control" {
			continue
		}
		list.add(entities.NewSysctlSetting(kv.Key, entities.NormalizeValue(kv.Value)))
	}

	iface := env.Interface
	if iface != "" {
		list.add(entities.NewQdiscSetting(iface, qdisc))
	}

	mtu := opts.MTU
	if mtu == 0 {
		mtu = profile.MTU
	}
	if mtu != 0 && iface != "" {
		if err := ValidateMTU(mtu); err != nil {
			warnings = append(warnings, entities.Warning{
				Kind:    domainErrors.ErrorTypeValidation,
				Key:     "link/" + iface + "/mtu",
				Message: fmt.Sprintf("MTU %d rejected, leaving current MTU %d unchanged: %v", mtu, env.MTU, err),
			})
		} else {
			list.add(entities.NewMTUSetting(iface, mtu))
		}
	}

	if iface != "" {
		for _, kv := range profile.Offloads {
			list.add(entities.NewOffloadSetting(iface, kv.Key, kv.Value))
		}
		for _, kv := range profile.Coalesce {
			list.add(entities.NewCoalesceSetting(iface, kv.Key, kv.Value))
		}
	}

	if profile.SpreadIRQs && env.CPUs > 1 {
		for i, irq := range env.IRQs {
			list.add(entities.NewIRQAffinitySetting(iface, irq, strconv.Itoa(i%env.CPUs)))
		}
	}

	return list.settings, warnings
}

// ValidateMTU는 MTU가 허용 범위에 있는지 검증합니다
func ValidateMTU(mtu int) error {
	if mtu < constants.MinMTU || mtu > constants.MaxMTU {
		return domainErrors.NewValidationError(
			fmt.Sprintf("MTU must be between %d and %d", constants.MinMTU, constants.MaxMTU), nil)
	}
	return nil
}

// settingList는 키 중복 없이 삽입 순서를 유지합니다. 같은 키는 나중 값으로 대체됩니다.
type settingList struct {
	settings []entities.Setting
	index    map[string]int
}

func (l *settingList) add(s entities.Setting) {
	if i, ok := l.index[s.Key]; ok {
		l.settings[i] = s
		return
	}
	l.index[s.Key] = len(l.settings)
	l.settings = append(l.settings, s)
}
