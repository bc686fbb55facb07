package usecases

import (
	"context"

	"nettune/internal/domain/entities"
	"nettune/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// StatusInput은 상태 조회 입력입니다
type StatusInput struct {
	Interface string
}

// StatusUseCase는 읽기 전용으로 현재 튜닝 상태를 보고합니다
type StatusUseCase struct {
	probe     interfaces.EnvironmentProber
	bootUnits interfaces.BootUnitManager
	logger    *logrus.Logger
}

// NewStatusUseCase는 새로운 StatusUseCase를 생성합니다
func NewStatusUseCase(probe interfaces.EnvironmentProber, bootUnits interfaces.BootUnitManager, logger *logrus.Logger) *StatusUseCase {
	return &StatusUseCase{
		probe:     probe,
		bootUnits: bootUnits,
		logger:    logger,
	}
}

// Execute는 인터페이스 상태와 부팅 유닛 상태를 조회합니다
func (uc *StatusUseCase) Execute(ctx context.Context, input StatusInput) (*entities.InterfaceStatus, error) {
	status, err := uc.probe.Status(ctx, input.Interface)
	if err != nil {
		return nil, err
	}
	status.BootUnit = uc.bootUnits.State(ctx, status.Interface)

	uc.logger.WithFields(logrus.Fields{
		"interface":          status.Interface,
		"mtu":                status.MTU,
		"congestion_control": status.CongestionControl,
		"root_qdisc":         status.RootQdisc,
		"boot_unit":          status.BootUnit.Installed,
	}).Debug("상태 조회 완료")
	return &status, nil
}
