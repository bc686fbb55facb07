package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry는 nettune 메트릭 전용 레지스트리입니다.
// 한 번 실행되고 종료되는 도구이므로 node_exporter textfile 수집기로 내보냅니다.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// 설정 적용 관련 메트릭
	SettingsProcessed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nettune_settings_processed_total",
			Help: "Total number of settings processed",
		},
		[]string{"category", "result"}, // applied, failed, unchanged
	)

	VerificationMismatches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nettune_verification_mismatches_total",
			Help: "Settings whose value read back after apply differs from the target",
		},
		[]string{"category"},
	)

	// 실행 관련 메트릭
	RunDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nettune_run_duration_seconds",
			Help:    "Time spent in one invocation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	RunLastTimestamp = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nettune_run_last_timestamp_seconds",
			Help: "Unix time of the last invocation",
		},
		[]string{"action"},
	)

	RunSuccess = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nettune_run_success",
			Help: "Whether the last invocation succeeded (1 = success, 0 = failure)",
		},
		[]string{"action"},
	)

	// 경고 및 에러 메트릭
	WarningsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nettune_warnings_total",
			Help: "Total number of non-fatal problems reported",
		},
		[]string{"kind"}, // UNSUPPORTED_FEATURE, MUTATION, VALIDATION
	)

	ErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nettune_errors_total",
			Help: "Total number of fatal errors encountered",
		},
		[]string{"error_type"},
	)

	// 튜닝 정보
	TuningInfo = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nettune_info",
			Help: "Profile applied to an interface",
		},
		[]string{"version", "interface", "profile"},
	)
)

// RecordSetting은 설정 하나의 처리 결과를 기록합니다
func RecordSetting(category, result string) {
	SettingsProcessed.WithLabelValues(category, result).Inc()
}

// RecordMismatch는 검증 불일치를 기록합니다
func RecordMismatch(category string) {
	VerificationMismatches.WithLabelValues(category).Inc()
}

// RecordRun은 실행 시간과 결과를 기록합니다
func RecordRun(action string, success bool, duration time.Duration, finishedAt time.Time) {
	RunDuration.WithLabelValues(action).Observe(duration.Seconds())
	RunLastTimestamp.WithLabelValues(action).Set(float64(finishedAt.Unix()))
	if success {
		RunSuccess.WithLabelValues(action).Set(1)
	} else {
		RunSuccess.WithLabelValues(action).Set(0)
	}
}

// RecordWarning은 경고 발생을 기록합니다
func RecordWarning(kind string) {
	WarningsTotal.WithLabelValues(kind).Inc()
}

// RecordError는 에러 발생을 기록합니다
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetTuningInfo는 적용된 프로파일 정보를 설정합니다
func SetTuningInfo(version, iface, profile string) {
	TuningInfo.WithLabelValues(version, iface, profile).Set(1)
}

// WriteTextfile은 레지스트리를 textfile 수집기 형식으로 원자적으로 씁니다
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
