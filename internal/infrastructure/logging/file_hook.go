package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// FileHook은 모든 로그 항목을 JSON 한 줄로 파일에 추가하는 logrus Hook입니다.
// minLevel 이상의 항목 중 로거 레벨을 통과한 것을 기록합니다.
type FileHook struct {
	mu        sync.Mutex
	writer    io.WriteCloser
	formatter logrus.Formatter
	levels    []logrus.Level
}

// NewFileHook은 로그 파일을 추가 모드로 열어 새로운 FileHook을 생성합니다
func NewFileHook(path string, minLevel logrus.Level) (*FileHook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, err
	}
	return newFileHook(f, minLevel), nil
}

func newFileHook(w io.WriteCloser, minLevel logrus.Level) *FileHook {
	var levels []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= minLevel {
			levels = append(levels, l)
		}
	}
	return &FileHook{
		writer: w,
		formatter: &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		},
		levels: levels,
	}
}

// Levels는 이 Hook이 처리할 로그 레벨입니다
func (h *FileHook) Levels() []logrus.Level {
	return h.levels
}

// Fire는 로그 항목을 파일에 씁니다
func (h *FileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(line)
	return err
}

// Close는 로그 파일을 닫습니다
func (h *FileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writer.Close()
}

// NewLogger는 터미널용 TextFormatter 로거를 생성하고, logFile이 있으면 JSON 파일 Hook을 추가합니다.
// 로그 파일을 열 수 없으면 경고만 남기고 터미널 로깅을 계속합니다.
func NewLogger(out io.Writer, level string, logFile string) (*logrus.Logger, *FileHook) {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if logFile == "" {
		return logger, nil
	}

	// 로거 레벨을 통과한 항목은 모두 파일에 남깁니다
	hook, err := NewFileHook(logFile, logrus.DebugLevel)
	if err != nil {
		logger.WithError(err).WithField("path", logFile).Warn("로그 파일을 열 수 없음")
		return logger, nil
	}
	logger.AddHook(hook)
	return logger, hook
}
