package entities

import (
	"fmt"
	"strings"
	"time"

	domainErrors "nettune/internal/domain/errors"
)

// ProfileName은 튜닝 프로파일 이름입니다
type ProfileName string

const (
	ProfileLatency    ProfileName = "latency"
	ProfileBalanced   ProfileName = "balanced"
	ProfileThroughput ProfileName = "throughput"
)

// ProfileNames는 지원하는 프로파일 목록입니다
var ProfileNames = []ProfileName{ProfileLatency, ProfileBalanced, ProfileThroughput}

// ParseProfileName은 문자열을 ProfileName으로 변환합니다
func ParseProfileName(s string) (ProfileName, error) {
	for _, p := range ProfileNames {
		if string(p) == strings.ToLower(strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", ErrInvalidProfileName
}

// Action은 실행할 동작입니다
type Action string

const (
	ActionDryRun         Action = "dry-run"
	ActionApply          Action = "apply"
	ActionRevert         Action = "revert"
	ActionStatus         Action = "status"
	ActionInstallService Action = "install-service"
	ActionRemoveService  Action = "remove-service"
)

// ParseAction은 CLI 인자를 Action으로 변환합니다. 빈 값은 dry-run입니다.
func ParseAction(s string) (Action, error) {
	switch Action(strings.TrimSpace(s)) {
	case "", ActionDryRun:
		return ActionDryRun, nil
	case ActionApply, ActionRevert, ActionStatus, ActionInstallService, ActionRemoveService:
		return Action(strings.TrimSpace(s)), nil
	}
	return "", ErrInvalidAction
}

// Mutates는 시스템 상태를 변경하는 액션인지 확인합니다
func (a Action) Mutates() bool {
	switch a {
	case ActionApply, ActionRevert, ActionInstallService, ActionRemoveService:
		return true
	}
	return false
}

// Category는 설정이 적용되는 메커니즘입니다
type Category int

const (
	CategoryModule Category = iota
	CategorySysctl
	CategoryQdisc
	CategoryMTU
	CategoryOffload
	CategoryCoalesce
	CategoryIRQAffinity
)

func (c Category) String() string {
	switch c {
	case CategoryModule:
		return "module"
	case CategorySysctl:
		return "sysctl"
	case CategoryQdisc:
		return "qdisc"
	case CategoryMTU:
		return "mtu"
	case CategoryOffload:
		return "offload"
	case CategoryCoalesce:
		return "coalesce"
	case CategoryIRQAffinity:
		return "irq_affinity"
	}
	return "unknown"
}

// ModuleLoaded와 ModuleAbsent는 커널 모듈 설정의 값입니다
const (
	ModuleLoaded = "loaded"
	ModuleAbsent = "absent"
)

// Setting은 하나의 OS 파라미터와 목표 값입니다.
// Name은 카테고리별 식별자(sysctl 키, 모듈, 기능, 코얼레싱 파라미터, IRQ 번호)이고
// Device는 링크/NIC 카테고리의 인터페이스 이름입니다.
type Setting struct {
	Category Category
	Key      string
	Name     string
	Device   string
	Value    string
	// Critical 설정이 실패하면 이후 단계가 의존하므로 실행이 중단됩니다
	Critical bool
}

// Describe는 이 설정을 적용하는 명령을 사람이 읽을 수 있는 형태로 반환합니다.
// dry-run 출력과 apply 로그가 동일한 문자열을 사용합니다.
func (s Setting) Describe() string {
	switch s.Category {
	case CategoryModule:
		return fmt.Sprintf("modprobe %s", s.Name)
	case CategorySysctl:
		return fmt.Sprintf("sysctl -w %s=%s", s.Name, s.Value)
	case CategoryQdisc:
		return fmt.Sprintf("tc qdisc replace dev %s root %s", s.Device, s.Value)
	case CategoryMTU:
		return fmt.Sprintf("ip link set dev %s mtu %s", s.Device, s.Value)
	case CategoryOffload:
		return fmt.Sprintf("ethtool -K %s %s %s", s.Device, s.Name, s.Value)
	case CategoryCoalesce:
		return fmt.Sprintf("ethtool -C %s %s %s", s.Device, s.Name, s.Value)
	case CategoryIRQAffinity:
		return fmt.Sprintf("echo %s > /proc/irq/%s/smp_affinity_list", s.Value, s.Name)
	}
	return s.Key + "=" + s.Value
}

// 설정 생성자들. 키 형식은 카테고리별로 고정됩니다.

func NewModuleSetting(module string, critical bool) Setting {
	return Setting{Category: CategoryModule, Key: "module/" + module, Name: module, Value: ModuleLoaded, Critical: critical}
}

func NewSysctlSetting(key, value string) Setting {
	return Setting{Category: CategorySysctl, Key: key, Name: key, Value: value}
}

func NewQdiscSetting(device, qdisc string) Setting {
	return Setting{Category: CategoryQdisc, Key: "link/" + device + "/qdisc", Name: "qdisc", Device: device, Value: qdisc}
}

func NewMTUSetting(device string, mtu int) Setting {
	return Setting{Category: CategoryMTU, Key: "link/" + device + "/mtu", Name: "mtu", Device: device, Value: fmt.Sprintf("%d", mtu)}
}

func NewOffloadSetting(device, feature, state string) Setting {
	return Setting{Category: CategoryOffload, Key: "nic/" + device + "/feature/" + feature, Name: feature, Device: device, Value: state}
}

func NewCoalesceSetting(device, param, value string) Setting {
	return Setting{Category: CategoryCoalesce, Key: "nic/" + device + "/coalesce/" + param, Name: param, Device: device, Value: value}
}

func NewIRQAffinitySetting(device string, irq int, cpuList string) Setting {
	n := fmt.Sprintf("%d", irq)
	return Setting{Category: CategoryIRQAffinity, Key: "irq/" + n + "/smp_affinity_list", Name: n, Device: device, Value: cpuList}
}

// NormalizeValue는 비교를 위해 공백을 정리합니다 (tcp_rmem 등은 탭으로 구분되어 읽힘)
func NormalizeValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// Warning은 실행을 중단하지 않는 문제를 기록합니다
type Warning struct {
	Kind    domainErrors.ErrorType `yaml:"kind" json:"kind"`
	Key     string                 `yaml:"key,omitempty" json:"key,omitempty"`
	Message string                 `yaml:"message" json:"message"`
}

func (w Warning) String() string {
	if w.Key != "" {
		return fmt.Sprintf("[%s] %s: %s", w.Kind, w.Key, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
}

// Change는 현재 값과 목표 값이 다른 설정입니다
type Change struct {
	Setting
	Current string
	Known   bool
}

// Plan은 해석된 설정 목록과 그 중 실제로 변경해야 할 항목입니다.
// dry-run과 apply가 같은 Plan을 사용합니다.
type Plan struct {
	Interface string
	Profile   ProfileName
	Settings  []Setting
	Changes   []Change
	Warnings  []Warning
}

// NewPlan은 현재 값과 비교하여 변경 목록을 계산합니다. 현재 값을 모르는 설정은 변경 대상입니다.
func NewPlan(iface string, profile ProfileName, settings []Setting, current map[string]string, warnings []Warning) Plan {
	plan := Plan{
		Interface: iface,
		Profile:   profile,
		Settings:  settings,
		Warnings:  warnings,
	}
	for _, s := range settings {
		cur, known := current[s.Key]
		if known && NormalizeValue(cur) == NormalizeValue(s.Value) {
			continue
		}
		plan.Changes = append(plan.Changes, Change{Setting: s, Current: cur, Known: known})
	}
	return plan
}

// ChangeKeys는 변경 대상 키를 순서대로 반환합니다
func (p Plan) ChangeKeys() []string {
	keys := make([]string, 0, len(p.Changes))
	for _, c := range p.Changes {
		keys = append(keys, c.Key)
	}
	return keys
}

// SettingsOf는 주어진 카테고리의 설정을 순서대로 반환합니다
func (p Plan) SettingsOf(category Category) []Setting {
	var out []Setting
	for _, s := range p.Settings {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Capability는 커널 기능 지원 여부입니다. 조회 실패는 Unknown입니다.
type Capability int

const (
	CapabilityUnknown Capability = iota
	CapabilitySupported
	CapabilityUnsupported
)

func (c Capability) String() string {
	switch c {
	case CapabilitySupported:
		return "supported"
	case CapabilityUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// Environment는 Probe가 감지한 실행 환경입니다
type Environment struct {
	Interface string
	MTU       int
	Driver    string
	BBR       Capability
	CAKE      Capability
	CPUs      int
	IRQs      []int
}

// KeyValue는 순서가 있는 키/값 쌍입니다
type KeyValue struct {
	Key   string
	Value string
}

// Profile은 프로파일 하나의 목표 설정 정의입니다
type Profile struct {
	Name              ProfileName
	Qdisc             string
	CongestionControl string
	Sysctls           []KeyValue
	Offloads          []KeyValue
	Coalesce          []KeyValue
	SpreadIRQs        bool
	// MTU가 0이면 호출자가 지정하지 않는 한 MTU를 변경하지 않습니다
	MTU int
}

// Snapshot은 apply 실행 직전의 값을 기록한 백업입니다. 생성 후 변경되지 않습니다.
type Snapshot struct {
	RunID     string            `yaml:"run_id"`
	CreatedAt time.Time         `yaml:"created_at"`
	Interface string            `yaml:"interface"`
	Profile   ProfileName       `yaml:"profile"`
	Values    map[string]string `yaml:"values"`
	Unknown   []string          `yaml:"unknown,omitempty"`
}

// NewSnapshot은 변경 목록의 현재 값으로 스냅샷을 만듭니다
func NewSnapshot(runID string, createdAt time.Time, plan Plan) Snapshot {
	snap := Snapshot{
		RunID:     runID,
		CreatedAt: createdAt,
		Interface: plan.Interface,
		Profile:   plan.Profile,
		Values:    make(map[string]string, len(plan.Changes)),
	}
	for _, c := range plan.Changes {
		if !c.Known {
			snap.Unknown = append(snap.Unknown, c.Key)
			continue
		}
		snap.Values[c.Key] = c.Current
	}
	return snap
}
