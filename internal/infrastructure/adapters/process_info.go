package adapters

import (
	"nettune/internal/domain/interfaces"
	"os"
	"path/filepath"
)

// RealProcessInfo는 현재 프로세스의 권한과 실행 경로를 조회합니다
type RealProcessInfo struct{}

// NewRealProcessInfo는 새로운 RealProcessInfo를 생성합니다
func NewRealProcessInfo() interfaces.ProcessInfo {
	return &RealProcessInfo{}
}

// IsPrivileged는 유효 UID가 0인지 확인합니다
func (p *RealProcessInfo) IsPrivileged() bool {
	return os.Geteuid() == 0
}

// Executable은 심볼릭 링크를 해석한 실행 파일 경로를 반환합니다
func (p *RealProcessInfo) Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}
