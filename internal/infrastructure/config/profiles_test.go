package config

import (
	"os"
	"path/filepath"
	"testing"

	"nettune/internal/domain/entities"
	domainErrors "nettune/internal/domain/errors"
	"nettune/internal/infrastructure/adapters"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	override := `
qdisc: fq
mtu: 1420
sysctls:
  net.core.rmem_max: 33554432
  net.ipv4.tcp_rmem: "4096   87380 33554432"
offloads:
  lro: off
  gro: on
coalesce:
  adaptive-rx: off
  rx-usecs: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "balanced.yaml"), []byte(override), 0644))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	loader := NewProfileLoader(adapters.NewRealFileSystem(), logger, dir)

	profile, path, err := loader.Load(entities.ProfileBalanced)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "balanced.yaml"), path)
	assert.Equal(t, "fq", profile.Qdisc)
	assert.Equal(t, "bbr", profile.CongestionControl)
	assert.Equal(t, 1420, profile.MTU)
	assert.Equal(t, []entities.KeyValue{
		{Key: "net.core.rmem_max", Value: "33554432"},
		{Key: "net.ipv4.tcp_rmem", Value: "4096 87380 33554432"},
	}, profile.Sysctls)
	assert.Equal(t, []entities.KeyValue{{Key: "lro", Value: "off"}, {Key: "gro", Value: "on"}}, profile.Offloads)
	assert.Equal(t, []entities.KeyValue{{Key: "adaptive-rx", Value: "off"}, {Key: "rx-usecs", Value: "25"}}, profile.Coalesce)

	// 오버라이드 파일이 없는 프로파일은 내장 정의를 그대로 사용합니다
	latency, path, err := loader.Load(entities.ProfileLatency)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "cake", latency.Qdisc)
}

func TestApplyProfileOverride_Invalid(t *testing.T) {
	base := entities.Profile{Name: entities.ProfileBalanced, Qdisc: "cake"}

	tests := []struct {
		name string
		data string
	}{
		{"잘못된 YAML", "qdisc: [fq"},
		{"sysctl이 매핑이 아님", "sysctls:\n  - net.core.rmem_max"},
		{"잘못된 sysctl 키", "sysctls:\n  rmem_max: 1"},
		{"잘못된 qdisc 이름", "qdisc: \"fq; reboot\""},
		{"잘못된 오프로드 값", "offloads:\n  gro: maybe"},
		{"지원하지 않는 코얼레싱 파라미터", "coalesce:\n  pkt-rate-low: 10"},
		{"잘못된 코얼레싱 값", "coalesce:\n  rx-usecs: fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyProfileOverride(base, []byte(tt.data))
			assert.Error(t, err)
			assert.Equal(t, base, got)
		})
	}
}

func TestProfileLoader_InvalidOverrideIsValidationError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latency.yaml"), []byte("offloads:\n  gro: maybe\n"), 0644))

	loader := NewProfileLoader(adapters.NewRealFileSystem(), logrus.New(), dir)
	_, _, err := loader.Load(entities.ProfileLatency)
	assert.True(t, domainErrors.IsValidationError(err))
}
