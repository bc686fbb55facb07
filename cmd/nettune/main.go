package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nettune/internal/application/usecases"
	"nettune/internal/domain/constants"
	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/infrastructure/config"
	"nettune/internal/infrastructure/container"
	"nettune/internal/infrastructure/logging"
	"nettune/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

var version = "0.1.0"

// 종료 코드
const (
	exitOK         = 0
	exitFatal      = 1
	exitValidation = 2
	exitPrivilege  = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// 설정 로드 (환경 변수 위에 플래그 적용)
	cfg, err := config.NewCommandLineConfigLoader(args, stderr).Load()
	if err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitCode(err)
	}

	// 로거 초기화
	logger, hook := logging.NewLogger(stderr, cfg.Runtime.LogLevel, cfg.Rooted(cfg.Paths.LogFile))
	if hook != nil {
		defer hook.Close()
	}

	// 의존성 주입 컨테이너 생성
	appContainer, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to create dependency injection container")
		return exitFatal
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logger.WithError(err).Error("Failed to cleanup container")
		}
	}()

	// 컨텍스트 및 시그널 핸들링 설정
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			logger.Warn("Received shutdown signal, aborting")
			cancel()
		case <-ctx.Done():
		}
	}()

	app := NewApplication(appContainer, logger, stdout)
	return app.Run(ctx)
}

// Application은 한 번의 CLI 실행을 담당합니다
type Application struct {
	container *container.Container
	logger    *logrus.Logger
	out       io.Writer
	format    string
}

// NewApplication은 새로운 Application을 생성합니다
func NewApplication(container *container.Container, logger *logrus.Logger, out io.Writer) *Application {
	return &Application{
		container: container,
		logger:    logger,
		out:       out,
		format:    container.GetConfig().Output,
	}
}

// Run은 설정된 액션을 실행하고 종료 코드를 반환합니다
func (a *Application) Run(ctx context.Context) int {
	cfg := a.container.GetConfig()
	started := time.Now()

	a.logger.WithFields(logrus.Fields{
		"action":    cfg.Action,
		"profile":   cfg.Profile,
		"interface": cfg.Interface,
		"version":   version,
	}).Debug("nettune started")

	// 시스템을 변경하는 액션은 root 권한이 필요합니다
	if cfg.Action.Mutates() && !a.container.GetProcessInfo().IsPrivileged() {
		err := errors.NewPrivilegeError(fmt.Sprintf("%s requires root privileges", cfg.Action))
		a.logger.Error(err.Error())
		a.finish(cfg.Action, started, nil, err)
		return exitCode(err)
	}

	input := usecases.TuningInput{
		Interface: cfg.Interface,
		Profile:   cfg.Profile,
		MTU:       cfg.MTU,
	}

	var (
		report   *usecases.RunReport
		warnings []entities.Warning
		err      error
	)

	switch cfg.Action {
	case entities.ActionDryRun:
		report, err = a.container.GetTuningEngine().DryRun(ctx, input)
		if report != nil {
			warnings = report.Warnings
			a.write(report, err, func(w io.Writer) { writeReportText(w, report) })
		}

	case entities.ActionApply:
		report, err = a.container.GetTuningEngine().Apply(ctx, input)
		if report != nil {
			warnings = report.Warnings
			a.write(report, err, func(w io.Writer) { writeReportText(w, report) })
		}

	case entities.ActionRevert:
		var output *usecases.RevertTuningOutput
		output, err = a.container.GetRevertTuningUseCase().Execute(ctx, usecases.RevertTuningInput{Interface: cfg.Interface})
		if output != nil {
			warnings = output.Warnings
			a.write(output, err, func(w io.Writer) { writeRevertText(w, output) })
		}

	case entities.ActionStatus:
		var status *entities.InterfaceStatus
		status, err = a.container.GetStatusUseCase().Execute(ctx, usecases.StatusInput{Interface: cfg.Interface})
		if status != nil {
			a.write(status, err, func(w io.Writer) { writeStatusText(w, status) })
		}

	case entities.ActionInstallService, entities.ActionRemoveService:
		bootInput := newBootPersistenceInput(cfg)
		uc := a.container.GetBootPersistenceUseCase()
		var output *usecases.BootPersistenceOutput
		if cfg.Action == entities.ActionInstallService {
			output, err = uc.Install(ctx, bootInput)
		} else {
			output, err = uc.Remove(ctx, bootInput)
		}
		if output != nil {
			a.write(output, err, func(w io.Writer) { writeBootUnitText(w, cfg.Action, output) })
		}
	}

	a.finish(cfg.Action, started, report, err)

	if err != nil {
		a.logger.WithError(err).WithField("action", cfg.Action).Error("Action failed")
		return exitCode(err)
	}
	return warningExitCode(warnings)
}

func (a *Application) write(v interface{}, runErr error, text func(io.Writer)) {
	// 실패한 실행의 요약은 yaml일 때만 출력합니다. text는 로그로 충분합니다.
	if runErr != nil && a.format != config.OutputYAML {
		return
	}
	if err := render(a.out, a.format, v, text); err != nil {
		a.logger.WithError(err).Error("Failed to write output")
	}
}

// finish는 실행 결과를 메트릭으로 기록하고 textfile이 설정되어 있으면 씁니다
func (a *Application) finish(action entities.Action, started time.Time, report *usecases.RunReport, err error) {
	cfg := a.container.GetConfig()
	finished := time.Now()

	if report != nil {
		recordReport(report)
		if err == nil && action == entities.ActionApply {
			metrics.SetTuningInfo(version, report.Interface, string(report.Profile))
		}
	}
	if err != nil {
		errorType := errors.TypeOf(err)
		if errorType == "" {
			errorType = errors.ErrorTypeSystem
		}
		metrics.RecordError(string(errorType))
	}
	metrics.RecordRun(string(action), err == nil, finished.Sub(started), finished)

	if cfg.Runtime.MetricsTextfile == "" {
		return
	}
	if werr := metrics.WriteTextfile(cfg.Runtime.MetricsTextfile); werr != nil {
		a.logger.WithError(werr).WithField("path", cfg.Runtime.MetricsTextfile).Warn("Failed to write metrics textfile")
	}
}

func recordReport(report *usecases.RunReport) {
	categories := make(map[string]string, len(report.Planned))
	for _, p := range report.Planned {
		categories[p.Key] = p.Category
	}
	for _, key := range report.Applied {
		metrics.RecordSetting(categories[key], "applied")
	}
	for _, key := range report.Failed {
		metrics.RecordSetting(categories[key], "failed")
	}
	for _, m := range report.Mismatches {
		metrics.RecordMismatch(categories[m.Key])
	}
	for _, w := range report.Warnings {
		metrics.RecordWarning(string(w.Kind))
	}
}

// exitCode는 에러 종류를 종료 코드로 변환합니다
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.IsPrivilegeError(err):
		return exitPrivilege
	case errors.IsValidationError(err):
		return exitValidation
	default:
		return exitFatal
	}
}

// warningExitCode는 실행이 성공했을 때 입력 검증 경고(잘못된 MTU 등)가 있으면 2를 반환합니다
func warningExitCode(warnings []entities.Warning) int {
	for _, w := range warnings {
		if w.Kind == errors.ErrorTypeValidation {
			return exitValidation
		}
	}
	return exitOK
}

// newBootPersistenceInput은 부팅 시 apply가 지금과 같은 경로를 쓰도록 기본값이 아닌 경로를 넘깁니다
func newBootPersistenceInput(cfg *config.Config) usecases.BootPersistenceInput {
	input := usecases.BootPersistenceInput{
		Interface:  cfg.Interface,
		Profile:    cfg.Profile,
		MTU:        cfg.MTU,
		ConfigRoot: cfg.Paths.Root,
	}
	if cfg.Paths.BackupDir != constants.DefaultBackupDir {
		input.BackupDir = cfg.Paths.BackupDir
	}
	return input
}
