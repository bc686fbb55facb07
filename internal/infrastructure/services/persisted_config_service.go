package services

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"nettune/internal/domain/constants"
	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sirupsen/logrus"
)

// PersistedConfigService는 도구가 소유하는 sysctl.d 조각과 modules-load.d 파일을 관리합니다.
// 두 파일 모두 매번 전체를 다시 쓰며 사람이 직접 편집하지 않습니다.
type PersistedConfigService struct {
	fileSystem  interfaces.FileSystem
	logger      *logrus.Logger
	sysctlPath  string
	modulesPath string
}

// NewPersistedConfigService는 새로운 PersistedConfigService를 생성합니다
func NewPersistedConfigService(
	fs interfaces.FileSystem,
	logger *logrus.Logger,
	sysctlPath string,
	modulesPath string,
) *PersistedConfigService {
	return &PersistedConfigService{
		fileSystem:  fs,
		logger:      logger,
		sysctlPath:  sysctlPath,
		modulesPath: modulesPath,
	}
}

// RenderSysctlConfig는 plan의 sysctl 설정을 key = value 형식으로 렌더링합니다.
// 키가 중복되면 나중 값이 앞선 위치를 대체합니다.
func RenderSysctlConfig(plan entities.Plan) []byte {
	var order []string
	values := map[string]string{}
	for _, s := range plan.SettingsOf(entities.CategorySysctl) {
		if _, seen := values[s.Name]; !seen {
			order = append(order, s.Name)
		}
		values[s.Name] = s.Value
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, constants.ManagedMarker)
	fmt.Fprintf(&buf, "# profile: %s, interface: %s\n", plan.Profile, plan.Interface)
	for _, key := range order {
		fmt.Fprintf(&buf, "%s = %s\n", key, values[key])
	}
	return buf.Bytes()
}

// ParseSysctlConfig는 sysctl 설정 파일의 키/값을 순서대로 읽습니다
func ParseSysctlConfig(data []byte) []entities.KeyValue {
	var out []entities.KeyValue
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out = append(out, entities.KeyValue{
			Key:   strings.TrimSpace(key),
			Value: entities.NormalizeValue(value),
		})
	}
	return out
}

// RenderModulesConfig는 plan의 커널 모듈 목록을 렌더링합니다. 모듈이 없으면 nil입니다.
func RenderModulesConfig(plan entities.Plan) []byte {
	modules := plan.SettingsOf(entities.CategoryModule)
	if len(modules) == 0 {
		return nil
	}
	var buf bytes.Buffer
	fmt.Fprintln(&buf, constants.ManagedMarker)
	for _, m := range modules {
		fmt.Fprintln(&buf, m.Name)
	}
	return buf.Bytes()
}

// WriteSysctlConfig는 sysctl.d 조각을 씁니다
func (s *PersistedConfigService) WriteSysctlConfig(plan entities.Plan) error {
	content := RenderSysctlConfig(plan)
	if err := s.fileSystem.WriteFile(s.sysctlPath, content, constants.ConfigFilePermission); err != nil {
		return errors.NewPersistenceError(fmt.Sprintf("%s 쓰기 실패", s.sysctlPath), err)
	}
	s.logger.WithFields(logrus.Fields{
		"path": s.sysctlPath,
		"keys": len(plan.SettingsOf(entities.CategorySysctl)),
	}).Info("sysctl 설정 파일 저장 완료")
	return nil
}

// WriteModulesConfig는 부팅 시 로드할 모듈 목록을 씁니다. 모듈이 없으면 이전 파일을 삭제합니다.
func (s *PersistedConfigService) WriteModulesConfig(plan entities.Plan) error {
	content := RenderModulesConfig(plan)
	if content == nil {
		if s.fileSystem.Exists(s.modulesPath) {
			if err := s.fileSystem.Remove(s.modulesPath); err != nil {
				return errors.NewPersistenceError(fmt.Sprintf("%s 삭제 실패", s.modulesPath), err)
			}
		}
		return nil
	}
	if err := s.fileSystem.WriteFile(s.modulesPath, content, constants.ConfigFilePermission); err != nil {
		return errors.NewPersistenceError(fmt.Sprintf("%s 쓰기 실패", s.modulesPath), err)
	}
	s.logger.WithField("path", s.modulesPath).Info("모듈 로드 설정 파일 저장 완료")
	return nil
}

// SysctlConfigDiff는 현재 파일과 plan으로 생성될 파일의 unified diff를 반환합니다.
// 변경이 없으면 빈 문자열입니다.
func (s *PersistedConfigService) SysctlConfigDiff(plan entities.Plan) (string, error) {
	var current string
	if s.fileSystem.Exists(s.sysctlPath) {
		data, err := s.fileSystem.ReadFile(s.sysctlPath)
		if err != nil {
			return "", errors.NewSystemError(fmt.Sprintf("%s 읽기 실패", s.sysctlPath), err)
		}
		current = string(data)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(string(RenderSysctlConfig(plan))),
		FromFile: s.sysctlPath,
		ToFile:   s.sysctlPath + " (planned)",
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", errors.NewSystemError("diff 생성 실패", err)
	}
	return text, nil
}

// RemoveAll은 존재하는 소유 파일을 삭제하고 삭제된 경로를 반환합니다
func (s *PersistedConfigService) RemoveAll() ([]string, error) {
	var removed []string
	for _, path := range []string{s.sysctlPath, s.modulesPath} {
		if !s.fileSystem.Exists(path) {
			continue
		}
		if err := s.fileSystem.Remove(path); err != nil {
			return removed, errors.NewPersistenceError(fmt.Sprintf("%s 삭제 실패", path), err)
		}
		s.logger.WithField("path", path).Info("설정 파일 삭제")
		removed = append(removed, path)
	}
	return removed, nil
}
