package usecases

import (
	"context"

	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"
	"nettune/internal/domain/services"

	"github.com/sirupsen/logrus"
)

// BootPersistenceInput은 부팅 유닛 설치/삭제 입력입니다
type BootPersistenceInput struct {
	Interface string
	Profile   entities.ProfileName
	MTU       int
	// BackupDir와 ConfigRoot는 기본값과 다를 때만 유닛의 apply에 전달됩니다
	BackupDir  string
	ConfigRoot string
}

// BootPersistenceOutput은 부팅 유닛 설치/삭제 결과입니다
type BootPersistenceOutput struct {
	Interface string `yaml:"interface"`
	UnitPath  string `yaml:"unit_path,omitempty"`
	Installed bool   `yaml:"installed"`
	// Removed는 삭제할 유닛이 실제로 있었는지를 나타냅니다
	Removed bool `yaml:"removed,omitempty"`
}

// BootPersistenceUseCase는 부팅 시 apply를 재실행하는 유닛을 관리합니다
type BootPersistenceUseCase struct {
	probe     interfaces.EnvironmentProber
	bootUnits interfaces.BootUnitManager
	logger    *logrus.Logger
}

// NewBootPersistenceUseCase는 새로운 BootPersistenceUseCase를 생성합니다
func NewBootPersistenceUseCase(probe interfaces.EnvironmentProber, bootUnits interfaces.BootUnitManager, logger *logrus.Logger) *BootPersistenceUseCase {
	return &BootPersistenceUseCase{
		probe:     probe,
		bootUnits: bootUnits,
		logger:    logger,
	}
}

// 유닛 이름에 인터페이스가 들어가므로 재부팅 후에도 같은 이름이어야 합니다.
// 지정하지 않으면 지금의 기본 라우트 인터페이스로 고정합니다.
func (uc *BootPersistenceUseCase) resolveInterface(ctx context.Context, iface string) (string, error) {
	env, err := uc.probe.Detect(ctx, iface)
	if err != nil {
		return "", err
	}
	return env.Interface, nil
}

// Install은 유닛을 설치하고 활성화합니다
func (uc *BootPersistenceUseCase) Install(ctx context.Context, input BootPersistenceInput) (*BootPersistenceOutput, error) {
	if input.MTU != 0 {
		// 잘못된 MTU가 부팅마다 경고를 남기지 않도록 설치 시점에 거부합니다
		if err := services.ValidateMTU(input.MTU); err != nil {
			return nil, err
		}
	}

	iface, err := uc.resolveInterface(ctx, input.Interface)
	if err != nil {
		return nil, err
	}

	path, err := uc.bootUnits.Install(ctx, interfaces.BootUnitSpec{
		Interface:  iface,
		Profile:    input.Profile,
		MTU:        input.MTU,
		BackupDir:  input.BackupDir,
		ConfigRoot: input.ConfigRoot,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.WithFields(logrus.Fields{
		"interface": iface,
		"profile":   input.Profile,
		"unit":      path,
	}).Info("부팅 유닛 설치 완료")
	return &BootPersistenceOutput{Interface: iface, UnitPath: path, Installed: true}, nil
}

// Remove는 유닛을 비활성화하고 삭제합니다. 유닛이 없으면 변경 없이 성공합니다.
// 인터페이스를 지정하면 링크가 이미 사라졌어도 유닛을 삭제할 수 있습니다.
func (uc *BootPersistenceUseCase) Remove(ctx context.Context, input BootPersistenceInput) (*BootPersistenceOutput, error) {
	iface := input.Interface
	if iface != "" {
		if _, err := entities.NewInterfaceName(iface); err != nil {
			return nil, errors.NewValidationError("유효하지 않은 인터페이스 이름: "+iface, err)
		}
	} else {
		detected, err := uc.resolveInterface(ctx, "")
		if err != nil {
			return nil, err
		}
		iface = detected
	}

	removed, err := uc.bootUnits.Remove(ctx, iface)
	if err != nil {
		return nil, err
	}
	if !removed {
		uc.logger.WithField("interface", iface).Info("설치된 부팅 유닛이 없음")
	} else {
		uc.logger.WithField("interface", iface).Info("부팅 유닛 삭제 완료")
	}
	return &BootPersistenceOutput{Interface: iface, Removed: removed}, nil
}
