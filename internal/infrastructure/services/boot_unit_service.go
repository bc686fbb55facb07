package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"nettune/internal/domain/constants"
	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"
	"nettune/pkg/utils"

	"github.com/sirupsen/logrus"
)

var unitTemplate = template.Must(template.New("unit").Parse(`{{.Marker}}
[Unit]
Description=nettune {{.Profile}} profile for {{.Interface}}
Wants=network-online.target
After=network-online.target

[Service]
Type=oneshot
RemainAfterExit=yes
ExecStart={{.Binary}} apply --interface {{.Interface}} --profile {{.Profile}}{{if .MTU}} --mtu {{.MTU}}{{end}}{{if .BackupDir}} --backup-dir {{.BackupDir}}{{end}}{{if .ConfigRoot}} --config-root {{.ConfigRoot}}{{end}}

[Install]
WantedBy=multi-user.target
`))

// BootUnitConfig는 부팅 유닛 서비스 설정입니다
type BootUnitConfig struct {
	UnitDir        string
	InstallPath    string
	CommandTimeout time.Duration
	Retry          utils.RetryConfig
}

// BootUnitService는 부팅 시 apply를 재실행하는 systemd 유닛을 관리합니다
type BootUnitService struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	process         interfaces.ProcessInfo
	logger          *logrus.Logger
	config          BootUnitConfig
}

// NewBootUnitService는 새로운 BootUnitService를 생성합니다
func NewBootUnitService(
	executor interfaces.CommandExecutor,
	fs interfaces.FileSystem,
	process interfaces.ProcessInfo,
	logger *logrus.Logger,
	config BootUnitConfig,
) *BootUnitService {
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = constants.DefaultCommandTimeout * time.Second
	}
	return &BootUnitService{
		commandExecutor: executor,
		fileSystem:      fs,
		process:         process,
		logger:          logger,
		config:          config,
	}
}

// UnitName은 인터페이스의 유닛 이름입니다 (예: nettune-eth0.service)
func UnitName(iface string) string {
	return constants.UnitNamePrefix + iface + ".service"
}

func (s *BootUnitService) unitPath(iface string) string {
	return filepath.Join(s.config.UnitDir, UnitName(iface))
}

// RenderUnit은 유닛 파일 내용을 생성합니다
func RenderUnit(spec interfaces.BootUnitSpec, binary string) ([]byte, error) {
	var buf bytes.Buffer
	err := unitTemplate.Execute(&buf, struct {
		Marker     string
		Interface  string
		Profile    entities.ProfileName
		MTU        int
		BackupDir  string
		ConfigRoot string
		Binary     string
	}{constants.ManagedMarker, spec.Interface, spec.Profile, spec.MTU, spec.BackupDir, spec.ConfigRoot, binary})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Install은 고정 경로에 바이너리를 두고 유닛을 작성한 뒤 활성화합니다.
// 같은 인자로 다시 호출하면 같은 유닛 파일을 덮어씁니다.
func (s *BootUnitService) Install(ctx context.Context, spec interfaces.BootUnitSpec) (string, error) {
	if err := s.installBinary(); err != nil {
		return "", err
	}

	content, err := RenderUnit(spec, s.config.InstallPath)
	if err != nil {
		return "", errors.NewPersistenceError("유닛 파일 생성 실패", err)
	}

	path := s.unitPath(spec.Interface)
	if err := s.fileSystem.WriteFile(path, content, constants.ConfigFilePermission); err != nil {
		return "", errors.NewPersistenceError(fmt.Sprintf("유닛 파일 %s 쓰기 실패", path), err)
	}

	if err := s.daemonReload(ctx); err != nil {
		return path, err
	}
	if _, err := s.systemctl(ctx, "enable", UnitName(spec.Interface)); err != nil {
		return path, errors.NewSystemError(fmt.Sprintf("%s 활성화 실패", UnitName(spec.Interface)), err)
	}

	s.logger.WithFields(logrus.Fields{
		"interface": spec.Interface,
		"profile":   spec.Profile,
		"unit_path": path,
	}).Info("부팅 유닛 설치 완료")
	return path, nil
}

// installBinary는 실행 중인 바이너리가 설치 경로가 아니면 복사합니다.
// 파이프로 실행된 임시 바이너리가 사라져도 부팅 시 유닛이 동작해야 합니다.
func (s *BootUnitService) installBinary() error {
	exe, err := s.process.Executable()
	if err != nil {
		return errors.NewPersistenceError("실행 파일 경로 확인 실패", err)
	}
	if filepath.Clean(exe) == filepath.Clean(s.config.InstallPath) {
		return nil
	}

	data, err := s.fileSystem.ReadFile(exe)
	if err != nil {
		return errors.NewPersistenceError(fmt.Sprintf("실행 파일 %s 읽기 실패", exe), err)
	}
	if err := s.fileSystem.WriteFile(s.config.InstallPath, data, constants.BinaryPermission); err != nil {
		return errors.NewPersistenceError(fmt.Sprintf("바이너리 %s 설치 실패", s.config.InstallPath), err)
	}

	s.logger.WithFields(logrus.Fields{
		"source": exe,
		"target": s.config.InstallPath,
	}).Info("바이너리 설치 완료")
	return nil
}

// Remove는 유닛을 비활성화하고 삭제합니다. 유닛이 없으면 false, nil을 반환합니다.
func (s *BootUnitService) Remove(ctx context.Context, iface string) (bool, error) {
	path := s.unitPath(iface)
	if !s.fileSystem.Exists(path) {
		s.logger.WithField("unit_path", path).Debug("삭제할 부팅 유닛이 없음")
		return false, nil
	}

	if _, err := s.systemctl(ctx, "disable", UnitName(iface)); err != nil {
		// 이미 비활성화된 유닛도 파일은 삭제해야 합니다
		s.logger.WithError(err).WithField("unit", UnitName(iface)).Warn("유닛 비활성화 실패")
	}

	if err := s.fileSystem.Remove(path); err != nil {
		return false, errors.NewPersistenceError(fmt.Sprintf("유닛 파일 %s 삭제 실패", path), err)
	}

	if err := s.daemonReload(ctx); err != nil {
		return true, err
	}

	s.logger.WithField("unit_path", path).Info("부팅 유닛 삭제 완료")
	return true, nil
}

// State는 유닛 파일 존재 여부와 활성화 상태를 반환합니다
func (s *BootUnitService) State(ctx context.Context, iface string) entities.BootUnitState {
	path := s.unitPath(iface)
	state := entities.BootUnitState{Installed: s.fileSystem.Exists(path)}
	if !state.Installed {
		return state
	}
	state.Path = path

	// is-enabled는 비활성 상태에서 0이 아닌 코드로 종료합니다
	out, err := s.systemctl(ctx, "is-enabled", UnitName(iface))
	if err != nil {
		s.logger.WithError(err).WithField("unit", UnitName(iface)).Debug("유닛 활성화 상태 조회 실패")
		return state
	}
	state.Enabled = strings.TrimSpace(string(out)) == "enabled"
	return state
}

func (s *BootUnitService) daemonReload(ctx context.Context) error {
	err := utils.RetryWithBackoff(ctx, s.config.Retry, func() error {
		_, err := s.systemctl(ctx, "daemon-reload")
		return err
	})
	if err != nil {
		return errors.NewSystemError("systemctl daemon-reload 실패", err)
	}
	return nil
}

func (s *BootUnitService) systemctl(ctx context.Context, args ...string) ([]byte, error) {
	return s.commandExecutor.ExecuteWithTimeout(ctx, s.config.CommandTimeout, "systemctl", args...)
}
