package usecases

import (
	"context"

	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// SysctlReloader는 남아있는 sysctl 설정 파일을 다시 적용합니다
type SysctlReloader interface {
	ReloadSysctl(ctx context.Context) error
}

// RevertTuningInput은 되돌리기 입력입니다
type RevertTuningInput struct {
	// Interface는 최근 스냅샷과 부팅 유닛 조회에만 사용됩니다. 비어있으면 감지합니다.
	Interface string
}

// RevertTuningOutput은 되돌리기 결과입니다
type RevertTuningOutput struct {
	Interface      string             `yaml:"interface,omitempty"`
	RemovedFiles   []string           `yaml:"removed_files,omitempty"`
	Reloaded       bool               `yaml:"reloaded"`
	LatestSnapshot string             `yaml:"latest_snapshot,omitempty"`
	Warnings       []entities.Warning `yaml:"warnings,omitempty"`
}

// RevertTuningUseCase는 도구가 작성한 영속 설정을 삭제하고 커널에 남은 설정을 다시 적용합니다.
// NIC, IRQ, MTU, qdisc의 런타임 값은 복원하지 않으며 재부팅 시 기본값으로 돌아갑니다.
type RevertTuningUseCase struct {
	persister interfaces.ConfigPersister
	reloader  SysctlReloader
	snapshots interfaces.SnapshotStore
	bootUnits interfaces.BootUnitManager
	probe     interfaces.EnvironmentProber
	logger    *logrus.Logger
}

// NewRevertTuningUseCase는 새로운 RevertTuningUseCase를 생성합니다
func NewRevertTuningUseCase(
	persister interfaces.ConfigPersister,
	reloader SysctlReloader,
	snapshots interfaces.SnapshotStore,
	bootUnits interfaces.BootUnitManager,
	probe interfaces.EnvironmentProber,
	logger *logrus.Logger,
) *RevertTuningUseCase {
	return &RevertTuningUseCase{
		persister: persister,
		reloader:  reloader,
		snapshots: snapshots,
		bootUnits: bootUnits,
		probe:     probe,
		logger:    logger,
	}
}

// Execute는 되돌리기를 수행합니다. 적용된 적이 없으면 아무것도 변경하지 않습니다.
func (uc *RevertTuningUseCase) Execute(ctx context.Context, input RevertTuningInput) (*RevertTuningOutput, error) {
	output := &RevertTuningOutput{Interface: input.Interface}

	removed, err := uc.persister.RemoveAll()
	output.RemovedFiles = removed
	if err != nil {
		return output, err
	}

	if len(removed) == 0 {
		uc.logger.Info("삭제할 설정 파일이 없음, 변경 없이 종료")
	} else {
		uc.logger.WithField("files", removed).Info("영속 설정 파일 삭제 완료")
		if err := uc.reloader.ReloadSysctl(ctx); err != nil {
			return output, errors.NewSystemError("sysctl 설정 다시 적용 실패", err)
		}
		output.Reloaded = true
	}

	// 이하 단계는 정보 제공용이며 실패해도 되돌리기 결과에 영향을 주지 않습니다
	if output.Interface == "" {
		env, err := uc.probe.Detect(ctx, "")
		if err != nil {
			uc.logger.WithError(err).Debug("인터페이스 감지 실패, 스냅샷 조회 생략")
			return output, nil
		}
		output.Interface = env.Interface
	}

	if path, ok := uc.snapshots.Latest(ctx, output.Interface); ok {
		output.LatestSnapshot = path
		uc.logger.WithField("snapshot", path).Info("런타임 값 복원이 필요하면 최근 스냅샷을 참고하세요")
	}

	if state := uc.bootUnits.State(ctx, output.Interface); state.Installed {
		w := entities.Warning{
			Kind:    errors.ErrorTypeSystem,
			Key:     state.Path,
			Message: "boot unit still installed and will re-apply tuning on next boot; run remove-service",
		}
		uc.logger.WithField("unit", state.Path).Warn("부팅 유닛이 아직 설치되어 있음")
		output.Warnings = append(output.Warnings, w)
	}

	return output, nil
}
