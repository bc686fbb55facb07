package entities

import (
	"errors"
	"regexp"
	"sort"
)

// InterfaceName은 커널 네트워크 인터페이스 이름을 나타내는 값 객체입니다
type InterfaceName struct {
	value string
}

var (
	ErrInvalidInterfaceName = errors.New("유효하지 않은 인터페이스 이름")
	ErrInvalidProfileName   = errors.New("유효하지 않은 프로파일 이름")
	ErrInvalidAction        = errors.New("유효하지 않은 액션")
)

// IFNAMSIZ(16) - 1, '/'와 공백은 허용되지 않음
var interfaceNamePattern = regexp.MustCompile(`^[^/\s:]{1,15}$`)

// NewInterfaceName은 새로운 인터페이스 이름을 생성합니다
func NewInterfaceName(name string) (InterfaceName, error) {
	if !isValidInterfaceName(name) {
		return InterfaceName{}, ErrInvalidInterfaceName
	}
	return InterfaceName{value: name}, nil
}

// String은 인터페이스 이름의 문자열 표현을 반환합니다
func (n InterfaceName) String() string {
	return n.value
}

// IsZero는 이름이 비어 있는지 확인합니다
func (n InterfaceName) IsZero() bool {
	return n.value == ""
}

func isValidInterfaceName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return interfaceNamePattern.MatchString(name)
}

// BootUnitState는 부팅 시 재적용 유닛의 상태입니다
type BootUnitState struct {
	Installed bool   `yaml:"installed" json:"installed"`
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Path      string `yaml:"path,omitempty" json:"path,omitempty"`
}

// InterfaceStatus는 status 액션이 보고하는 인터페이스와 커널의 현재 상태입니다
type InterfaceStatus struct {
	Interface         string            `yaml:"interface" json:"interface"`
	Driver            string            `yaml:"driver,omitempty" json:"driver,omitempty"`
	MTU               int               `yaml:"mtu" json:"mtu"`
	DefaultQdisc      string            `yaml:"default_qdisc" json:"default_qdisc"`
	RootQdisc         string            `yaml:"root_qdisc" json:"root_qdisc"`
	CongestionControl string            `yaml:"congestion_control" json:"congestion_control"`
	Offloads          map[string]bool   `yaml:"offloads,omitempty" json:"offloads,omitempty"`
	Coalesce          map[string]uint32 `yaml:"coalesce,omitempty" json:"coalesce,omitempty"`
	BootUnit          BootUnitState     `yaml:"boot_unit" json:"boot_unit"`
}

// SortedOffloads는 오프로드 플래그 이름을 정렬된 순서로 반환합니다
func (s InterfaceStatus) SortedOffloads() []string {
	names := make([]string, 0, len(s.Offloads))
	for name := range s.Offloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedCoalesce는 코얼레싱 파라미터 이름을 정렬된 순서로 반환합니다
func (s InterfaceStatus) SortedCoalesce() []string {
	names := make([]string, 0, len(s.Coalesce))
	for name := range s.Coalesce {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
