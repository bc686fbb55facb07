package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"nettune/internal/domain/constants"
	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// 같은 초에 여러 번 실행해도 파일명 정렬이 생성 순서와 같도록 나노초까지 기록합니다
const snapshotTimeLayout = "20060102_150405.000000000"

// BackupService는 apply 직전 값의 스냅샷을 YAML 파일로 관리하는 서비스입니다.
// 스냅샷은 실행마다 새 파일로 추가되며 자동으로 정리되지 않습니다.
type BackupService struct {
	fileSystem interfaces.FileSystem
	clock      interfaces.Clock
	logger     *logrus.Logger
	backupDir  string
}

// NewBackupService는 새로운 BackupService를 생성합니다
func NewBackupService(
	fs interfaces.FileSystem,
	clock interfaces.Clock,
	logger *logrus.Logger,
	backupDir string,
) *BackupService {
	return &BackupService{
		fileSystem: fs,
		clock:      clock,
		logger:     logger,
		backupDir:  backupDir,
	}
}

// Save는 스냅샷을 새 파일로 저장하고 경로를 반환합니다.
// 쓰기에 실패하면 PersistenceError를 반환하며 호출자는 변경을 진행하면 안 됩니다.
func (s *BackupService) Save(ctx context.Context, snapshot entities.Snapshot) (string, error) {
	// 백업 디렉토리 생성
	if err := s.fileSystem.MkdirAll(s.backupDir, 0755); err != nil {
		return "", errors.NewPersistenceError("백업 디렉토리 생성 실패", err)
	}

	content, err := yaml.Marshal(snapshot)
	if err != nil {
		return "", errors.NewPersistenceError("스냅샷 직렬화 실패", err)
	}

	// 백업 파일명 생성 (예: eth0_20261016_150405_1a2b3c4d.yaml)
	backupPath := filepath.Join(s.backupDir, s.fileName(snapshot))
	if err := s.fileSystem.WriteFile(backupPath, content, constants.ConfigFilePermission); err != nil {
		return "", errors.NewPersistenceError("스냅샷 파일 저장 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"interface":   snapshot.Interface,
		"run_id":      snapshot.RunID,
		"values":      len(snapshot.Values),
		"backup_path": backupPath,
	}).Info("스냅샷 생성 완료")

	return backupPath, nil
}

func (s *BackupService) fileName(snapshot entities.Snapshot) string {
	created := snapshot.CreatedAt
	if created.IsZero() {
		created = s.clock.Now()
	}
	suffix := strings.ReplaceAll(snapshot.RunID, "-", "")
	if len(suffix) < 8 {
		suffix = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return fmt.Sprintf("%s_%s_%s.yaml", snapshot.Interface, created.Format(snapshotTimeLayout), suffix[:8])
}

// Latest는 인터페이스의 가장 최근 스냅샷 경로를 반환합니다
func (s *BackupService) Latest(ctx context.Context, iface string) (string, bool) {
	backupFiles, err := s.findBackupFiles(iface)
	if err != nil {
		s.logger.WithError(err).Error("백업 파일 검색 실패")
		return "", false
	}
	if len(backupFiles) == 0 {
		return "", false
	}
	// 가장 최근 백업 파일 선택 (이미 정렬됨)
	return filepath.Join(s.backupDir, backupFiles[len(backupFiles)-1]), true
}

// Load는 스냅샷 파일을 읽습니다
func (s *BackupService) Load(path string) (entities.Snapshot, error) {
	var snapshot entities.Snapshot
	content, err := s.fileSystem.ReadFile(path)
	if err != nil {
		return snapshot, errors.NewNotFoundError(fmt.Sprintf("스냅샷 %s를 읽을 수 없음", path))
	}
	if err := yaml.Unmarshal(content, &snapshot); err != nil {
		return snapshot, errors.NewValidationError(fmt.Sprintf("스냅샷 %s 파싱 실패", path), err)
	}
	return snapshot, nil
}

// findBackupFiles는 특정 인터페이스의 백업 파일들을 찾아 정렬된 목록을 반환합니다
func (s *BackupService) findBackupFiles(iface string) ([]string, error) {
	if !s.fileSystem.Exists(s.backupDir) {
		return []string{}, nil
	}

	files, err := s.fileSystem.ListFiles(s.backupDir)
	if err != nil {
		return nil, errors.NewSystemError("백업 디렉토리 읽기 실패", err)
	}

	// 해당 인터페이스의 백업 파일만 필터링
	var backupFiles []string
	prefix := iface + "_"
	for _, file := range files {
		if !strings.HasPrefix(file, prefix) || !strings.HasSuffix(file, ".yaml") {
			continue
		}
		// "br"의 백업이 "br_lan"의 백업과 섞이지 않도록 타임스탬프를 확인합니다
		rest := strings.TrimPrefix(file, prefix)
		if len(rest) < len(snapshotTimeLayout) {
			continue
		}
		if _, err := time.Parse(snapshotTimeLayout, rest[:len(snapshotTimeLayout)]); err != nil {
			continue
		}
		backupFiles = append(backupFiles, file)
	}

	// 파일명 기준 정렬 (타임스탬프가 포함되어 있으므로 시간순 정렬됨)
	sort.Strings(backupFiles)

	return backupFiles, nil
}
