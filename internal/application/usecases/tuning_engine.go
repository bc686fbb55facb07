package usecases

import (
	"context"
	"fmt"
	"time"

	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"
	"nettune/internal/domain/interfaces"
	"nettune/internal/domain/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EngineState는 튜닝 엔진의 실행 단계입니다
type EngineState string

const (
	StateIdle      EngineState = "idle"
	StateProbing   EngineState = "probing"
	StateBackingUp EngineState = "backing_up"
	StateMutating  EngineState = "mutating"
	StateVerifying EngineState = "verifying"
	StateReverting EngineState = "reverting"
	StateDone      EngineState = "done"
	StateFailed    EngineState = "failed"
)

// ProfileSource는 프로파일 이름을 정의로 변환합니다. 두 번째 반환값은 적용된 오버라이드 파일 경로입니다.
type ProfileSource interface {
	Load(name entities.ProfileName) (entities.Profile, string, error)
}

// TuningInput은 dry-run과 apply의 입력입니다
type TuningInput struct {
	Interface string
	Profile   entities.ProfileName
	MTU       int
}

// PlannedChange는 실행될(또는 실행된) 변경 하나입니다
type PlannedChange struct {
	Key      string `yaml:"key"`
	Category string `yaml:"category"`
	Command  string `yaml:"command"`
	Current  string `yaml:"current,omitempty"`
	Target   string `yaml:"target"`
	Critical bool   `yaml:"critical,omitempty"`
}

// Mismatch는 적용 후 다시 읽은 값이 목표와 다른 설정입니다
type Mismatch struct {
	Key    string `yaml:"key"`
	Target string `yaml:"target"`
	Actual string `yaml:"actual"`
}

// RunReport는 한 번의 실행 결과 요약입니다
type RunReport struct {
	RunID           string               `yaml:"run_id"`
	Action          entities.Action      `yaml:"action"`
	Interface       string               `yaml:"interface,omitempty"`
	Profile         entities.ProfileName `yaml:"profile,omitempty"`
	ProfileOverride string               `yaml:"profile_override,omitempty"`
	State           EngineState          `yaml:"state"`
	Transitions     []EngineState        `yaml:"transitions"`
	Settings        int                  `yaml:"settings"`
	Planned         []PlannedChange      `yaml:"planned,omitempty"`
	Applied         []string             `yaml:"applied,omitempty"`
	Failed          []string             `yaml:"failed,omitempty"`
	Mismatches      []Mismatch           `yaml:"mismatches,omitempty"`
	Warnings        []entities.Warning   `yaml:"warnings,omitempty"`
	SnapshotPath    string               `yaml:"snapshot_path,omitempty"`
	PersistedFiles  []string             `yaml:"persisted_files,omitempty"`
	ConfigDiff      string               `yaml:"config_diff,omitempty"`
	StartedAt       time.Time            `yaml:"started_at"`
	FinishedAt      time.Time            `yaml:"finished_at"`
}

// PlannedKeys는 계획된 변경 키를 순서대로 반환합니다
func (r *RunReport) PlannedKeys() []string {
	keys := make([]string, 0, len(r.Planned))
	for _, p := range r.Planned {
		keys = append(keys, p.Key)
	}
	return keys
}

// HasWarning은 주어진 종류의 경고가 있는지 확인합니다
func (r *RunReport) HasWarning(kind errors.ErrorType) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func (r *RunReport) transition(logger *logrus.Logger, to EngineState) {
	logger.WithFields(logrus.Fields{
		"run_id": r.RunID,
		"from":   r.State,
		"to":     to,
	}).Debug("상태 전이")
	r.State = to
	r.Transitions = append(r.Transitions, to)
}

// TuningEngine은 프로파일 해석부터 변경, 검증까지의 상태 머신입니다.
// dry-run과 apply는 같은 plan 생성 코드를 공유하고 실행 단계 유무만 다릅니다.
type TuningEngine struct {
	probe     interfaces.EnvironmentProber
	resolver  *services.ProfileResolver
	profiles  ProfileSource
	mutator   interfaces.SettingMutator
	snapshots interfaces.SnapshotStore
	persister interfaces.ConfigPersister
	clock     interfaces.Clock
	logger    *logrus.Logger
	newRunID  func() string
}

// NewTuningEngine은 새로운 TuningEngine을 생성합니다
func NewTuningEngine(
	probe interfaces.EnvironmentProber,
	resolver *services.ProfileResolver,
	profiles ProfileSource,
	mutator interfaces.SettingMutator,
	snapshots interfaces.SnapshotStore,
	persister interfaces.ConfigPersister,
	clock interfaces.Clock,
	logger *logrus.Logger,
) *TuningEngine {
	return &TuningEngine{
		probe:     probe,
		resolver:  resolver,
		profiles:  profiles,
		mutator:   mutator,
		snapshots: snapshots,
		persister: persister,
		clock:     clock,
		logger:    logger,
		newRunID:  uuid.NewString,
	}
}

func (e *TuningEngine) newReport(action entities.Action, input TuningInput) *RunReport {
	return &RunReport{
		RunID:       e.newRunID(),
		Action:      action,
		Interface:   input.Interface,
		Profile:     input.Profile,
		State:       StateIdle,
		Transitions: []EngineState{StateIdle},
		StartedAt:   e.clock.Now(),
	}
}

func (e *TuningEngine) fail(report *RunReport, err error) (*RunReport, error) {
	report.transition(e.logger, StateFailed)
	report.FinishedAt = e.clock.Now()
	e.logger.WithError(err).WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"interface": report.Interface,
	}).Error("튜닝 실행 실패")
	return report, err
}

func (e *TuningEngine) done(report *RunReport) *RunReport {
	report.transition(e.logger, StateDone)
	report.FinishedAt = e.clock.Now()
	return report
}

// plan은 환경을 감지하고 현재 값과 비교한 변경 계획을 만듭니다
func (e *TuningEngine) plan(ctx context.Context, report *RunReport, input TuningInput) (entities.Plan, error) {
	report.transition(e.logger, StateProbing)

	env, err := e.probe.Detect(ctx, input.Interface)
	if err != nil {
		return entities.Plan{}, err
	}
	report.Interface = env.Interface

	profile, overridePath, err := e.profiles.Load(input.Profile)
	if err != nil {
		return entities.Plan{}, err
	}
	report.ProfileOverride = overridePath

	settings, warnings := e.resolver.Resolve(profile, env, services.ResolveOptions{MTU: input.MTU})
	for _, w := range warnings {
		e.logger.WithFields(logrus.Fields{
			"run_id": report.RunID,
			"kind":   w.Kind,
			"key":    w.Key,
		}).Warn(w.Message)
	}

	current := e.probe.ReadCurrent(ctx, settings)
	plan := entities.NewPlan(env.Interface, profile.Name, settings, current, warnings)

	report.Settings = len(plan.Settings)
	report.Warnings = append(report.Warnings, plan.Warnings...)
	for _, c := range plan.Changes {
		report.Planned = append(report.Planned, PlannedChange{
			Key:      c.Key,
			Category: c.Category.String(),
			Command:  c.Describe(),
			Current:  c.Current,
			Target:   c.Value,
			Critical: c.Critical,
		})
	}

	e.logger.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"interface": plan.Interface,
		"profile":   plan.Profile,
		"settings":  len(plan.Settings),
		"changes":   len(plan.Changes),
	}).Info("튜닝 계획 생성 완료")
	e.logger.WithField("keys", plan.ChangeKeys()).Debug("변경 대상 키")
	return plan, nil
}

// DryRun은 apply가 실행할 변경을 같은 순서로 보고하며 어떤 것도 변경하지 않습니다
func (e *TuningEngine) DryRun(ctx context.Context, input TuningInput) (*RunReport, error) {
	report := e.newReport(entities.ActionDryRun, input)

	plan, err := e.plan(ctx, report, input)
	if err != nil {
		return e.fail(report, err)
	}

	diff, err := e.persister.SysctlConfigDiff(plan)
	if err != nil {
		e.logger.WithError(err).Warn("설정 파일 diff 생성 실패")
	}
	report.ConfigDiff = diff

	return e.done(report), nil
}

// Apply는 스냅샷을 남긴 뒤 변경을 적용하고 결과를 검증합니다.
// 독립적인 설정의 실패는 경고로 수집되고, 이후 단계가 의존하는 설정의 실패는 실행을 중단합니다.
func (e *TuningEngine) Apply(ctx context.Context, input TuningInput) (*RunReport, error) {
	report := e.newReport(entities.ActionApply, input)

	// 이전 조회 이후 다른 프로세스가 인터페이스를 바꿨을 수 있으므로 항상 다시 감지합니다
	plan, err := e.plan(ctx, report, input)
	if err != nil {
		return e.fail(report, err)
	}

	report.transition(e.logger, StateBackingUp)
	snapshot := entities.NewSnapshot(report.RunID, e.clock.Now(), plan)
	path, err := e.snapshots.Save(ctx, snapshot)
	if err != nil {
		// 되돌릴 근거 없이 변경하지 않습니다
		return e.fail(report, errors.NewPersistenceError("스냅샷 저장 실패, 변경을 진행하지 않음", err))
	}
	report.SnapshotPath = path

	report.transition(e.logger, StateMutating)
	var applied []entities.Setting
	for _, change := range plan.Changes {
		if err := ctx.Err(); err != nil {
			return e.fail(report, errors.NewSystemError("변경 중 실행이 중단됨", err))
		}
		log := e.logger.WithFields(logrus.Fields{
			"run_id": report.RunID,
			"key":    change.Key,
		})

		if err := e.mutator.Apply(ctx, change.Setting); err != nil {
			report.Failed = append(report.Failed, change.Key)
			if change.Critical || !errors.IsRecoverable(err) {
				log.WithError(err).Error(change.Describe())
				return e.fail(report, err)
			}
			log.WithError(err).Warn(change.Describe())
			report.Warnings = append(report.Warnings, entities.Warning{
				Kind:    errors.TypeOf(err),
				Key:     change.Key,
				Message: err.Error(),
			})
			continue
		}

		log.Info(change.Describe())
		report.Applied = append(report.Applied, change.Key)
		applied = append(applied, change.Setting)
	}

	if err := e.persister.WriteSysctlConfig(plan); err != nil {
		return e.fail(report, err)
	}
	if err := e.persister.WriteModulesConfig(plan); err != nil {
		return e.fail(report, err)
	}

	report.transition(e.logger, StateVerifying)
	report.Mismatches = e.verify(ctx, report.RunID, applied)

	e.logger.WithFields(logrus.Fields{
		"run_id":     report.RunID,
		"applied":    len(report.Applied),
		"failed":     len(report.Failed),
		"mismatches": len(report.Mismatches),
		"warnings":   len(report.Warnings),
		"snapshot":   report.SnapshotPath,
	}).Info("튜닝 적용 완료")

	return e.done(report), nil
}

// verify는 적용된 값을 다시 읽어 목표와 비교합니다. 커널이 값을 조정할 수 있으므로 불일치는 보고만 합니다.
func (e *TuningEngine) verify(ctx context.Context, runID string, applied []entities.Setting) []Mismatch {
	if len(applied) == 0 {
		return nil
	}
	readBack := e.probe.ReadCurrent(ctx, applied)

	var mismatches []Mismatch
	for _, s := range applied {
		actual, ok := readBack[s.Key]
		if !ok {
			e.logger.WithField("key", s.Key).Debug("검증을 위한 값 조회 실패")
			continue
		}
		if entities.NormalizeValue(actual) == entities.NormalizeValue(s.Value) {
			continue
		}
		e.logger.WithFields(logrus.Fields{
			"run_id": runID,
			"key":    s.Key,
			"target": s.Value,
			"actual": actual,
		}).Warn("적용 후 값이 목표와 다름")
		mismatches = append(mismatches, Mismatch{Key: s.Key, Target: s.Value, Actual: actual})
	}
	return mismatches
}

func (r *RunReport) String() string {
	return fmt.Sprintf("%s %s on %s: %d planned, %d applied, %d failed, %d warnings",
		r.Action, r.Profile, r.Interface, len(r.Planned), len(r.Applied), len(r.Failed), len(r.Warnings))
}
