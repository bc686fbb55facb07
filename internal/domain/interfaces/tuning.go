package interfaces

import (
	"context"

	"nettune/internal/domain/entities"
)

// EnvironmentProber는 읽기 전용으로 실행 환경과 현재 값을 조회합니다
type EnvironmentProber interface {
	// Detect는 대상 인터페이스와 커널 기능 지원 여부를 감지합니다.
	// override가 비어있지 않으면 해당 인터페이스의 존재만 확인합니다.
	Detect(ctx context.Context, override string) (entities.Environment, error)

	// ReadCurrent는 각 설정 키의 현재 값을 반환합니다. 읽지 못한 키는 맵에 없습니다.
	ReadCurrent(ctx context.Context, settings []entities.Setting) map[string]string

	// Status는 인터페이스와 커널의 현재 튜닝 상태를 보고합니다. BootUnit 필드는 호출자가 채웁니다.
	Status(ctx context.Context, override string) (entities.InterfaceStatus, error)
}

// SettingMutator는 설정 하나를 카테고리별 메커니즘으로 적용합니다
type SettingMutator interface {
	Apply(ctx context.Context, setting entities.Setting) error
}

// SnapshotStore는 apply 직전 값의 백업을 영속화합니다
type SnapshotStore interface {
	// Save는 스냅샷을 새 파일로 저장하고 경로를 반환합니다
	Save(ctx context.Context, snapshot entities.Snapshot) (string, error)

	// Latest는 인터페이스의 가장 최근 스냅샷 경로를 반환합니다
	Latest(ctx context.Context, iface string) (string, bool)
}

// ConfigPersister는 도구가 소유한 영속 설정 파일을 관리합니다
type ConfigPersister interface {
	WriteSysctlConfig(plan entities.Plan) error
	WriteModulesConfig(plan entities.Plan) error
	// SysctlConfigDiff는 현재 파일과 plan으로 생성될 파일의 unified diff를 반환합니다
	SysctlConfigDiff(plan entities.Plan) (string, error)
	// RemoveAll은 존재하는 소유 파일을 삭제하고 삭제된 경로를 반환합니다
	RemoveAll() ([]string, error)
}

// BootUnitSpec은 부팅 유닛 설치 파라미터입니다
type BootUnitSpec struct {
	Interface string
	Profile   entities.ProfileName
	MTU       int
	// BackupDir와 ConfigRoot는 비어 있으면 부팅 시 기본값을 사용합니다
	BackupDir  string
	ConfigRoot string
}

// BootUnitManager는 부팅 시 apply를 재실행하는 systemd 유닛을 관리합니다
type BootUnitManager interface {
	Install(ctx context.Context, spec BootUnitSpec) (string, error)
	// Remove는 유닛이 없으면 false, nil을 반환합니다
	Remove(ctx context.Context, iface string) (bool, error)
	State(ctx context.Context, iface string) entities.BootUnitState
}
