//go:build integration

package integration

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nettune/internal/application/usecases"
	"nettune/internal/domain/entities"
	domainErrors "nettune/internal/domain/errors"
	"nettune/internal/infrastructure/config"
	"nettune/internal/infrastructure/container"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 실제 호스트를 읽기 전용으로 사용합니다. 소유 파일 경로는 임시 디렉토리로 옮깁니다.
func newHostContainer(t *testing.T) *container.Container {
	t.Helper()
	t.Setenv("NETTUNE_ROOT", t.TempDir())

	cfg, err := config.NewCommandLineConfigLoader(nil, io.Discard).Load()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // 테스트 중 로그 출력 억제

	c, err := container.NewContainer(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestHostIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("통합 테스트는 -short 플래그와 함께 실행시 스킵됩니다")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Run("설정 로드 통합 테스트", func(t *testing.T) {
		t.Setenv("NETTUNE_PROFILE", "throughput")

		cfg, err := config.NewCommandLineConfigLoader(nil, io.Discard).Load()
		require.NoError(t, err)
		assert.Equal(t, entities.ProfileThroughput, cfg.Profile)
		assert.Equal(t, "/etc/sysctl.d/99-nettune.conf", cfg.Paths.SysctlConfig)
	})

	t.Run("상태 조회 통합 테스트", func(t *testing.T) {
		c := newHostContainer(t)

		status, err := c.GetStatusUseCase().Execute(ctx, usecases.StatusInput{})
		if domainErrors.IsDetectionError(err) {
			t.Skipf("기본 라우트가 없는 환경: %v", err)
		}
		require.NoError(t, err)
		assert.NotEmpty(t, status.Interface)
		assert.Greater(t, status.MTU, 0)
		assert.NotEmpty(t, status.CongestionControl)
		t.Logf("인터페이스 %s, qdisc %s, cc %s", status.Interface, status.RootQdisc, status.CongestionControl)
	})

	t.Run("dry-run 통합 테스트", func(t *testing.T) {
		c := newHostContainer(t)
		root := c.GetConfig().Paths.Root

		for _, profile := range entities.ProfileNames {
			report, err := c.GetTuningEngine().DryRun(ctx, usecases.TuningInput{Profile: profile})
			if domainErrors.IsDetectionError(err) {
				t.Skipf("기본 라우트가 없는 환경: %v", err)
			}
			require.NoError(t, err)
			assert.Equal(t, usecases.StateDone, report.State)
			assert.NotZero(t, report.Settings)
		}

		// dry-run은 어떤 파일도 만들지 않습니다
		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("되돌리기 무변경 통합 테스트", func(t *testing.T) {
		c := newHostContainer(t)
		root := c.GetConfig().Paths.Root

		output, err := c.GetRevertTuningUseCase().Execute(ctx, usecases.RevertTuningInput{})
		require.NoError(t, err)
		assert.Empty(t, output.RemovedFiles)
		assert.False(t, output.Reloaded)
		assert.NoFileExists(t, filepath.Join(root, "etc/sysctl.d/99-nettune.conf"))
	})
}
