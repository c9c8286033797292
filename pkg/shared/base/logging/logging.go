// 指示: miu200521358
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// VERBOSE は冗長ログの分類を表す。
type VERBOSE string

const (
	// VERBOSE_PATCH はパッチ計画・適用の冗長ログを表す。
	VERBOSE_PATCH VERBOSE = "patch"
	// VERBOSE_IO は入出力処理の冗長ログを表す。
	VERBOSE_IO VERBOSE = "io"
)

// ILogger はログ出力契約を表す。
type ILogger interface {
	// Info は情報ログを出力する。
	Info(format string, params ...any)
	// Warn は警告ログを出力する。
	Warn(format string, params ...any)
	// Error はエラーログを出力する。
	Error(format string, params ...any)
	// Verbose は冗長ログを出力する。
	Verbose(category VERBOSE, format string, params ...any)
	// IsVerboseEnabled は冗長ログ分類が有効かを返す。
	IsVerboseEnabled(category VERBOSE) bool
}

// StdLogger は標準ロガーへ委譲するロガーを表す。
type StdLogger struct {
	mu      sync.Mutex
	logger  *log.Logger
	verbose map[VERBOSE]bool
}

// NewLogger はロガーを生成する。
func NewLogger(out io.Writer) *StdLogger {
	if out == nil {
		out = os.Stderr
	}
	return &StdLogger{
		logger:  log.New(out, "", log.LstdFlags),
		verbose: map[VERBOSE]bool{},
	}
}

// EnableVerbose は冗長ログ分類を有効化する。
func (l *StdLogger) EnableVerbose(categories ...VERBOSE) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range categories {
		l.verbose[c] = true
	}
}

// Info は情報ログを出力する。
func (l *StdLogger) Info(format string, params ...any) {
	l.output("[INFO] " + fmt.Sprintf(format, params...))
}

// Warn は警告ログを出力する。
func (l *StdLogger) Warn(format string, params ...any) {
	l.output("[WARN] " + fmt.Sprintf(format, params...))
}

// Error はエラーログを出力する。
func (l *StdLogger) Error(format string, params ...any) {
	l.output("[ERROR] " + fmt.Sprintf(format, params...))
}

// Verbose は冗長ログを出力する。
func (l *StdLogger) Verbose(category VERBOSE, format string, params ...any) {
	if !l.IsVerboseEnabled(category) {
		return
	}
	l.output("[VERBOSE:" + string(category) + "] " + fmt.Sprintf(format, params...))
}

// IsVerboseEnabled は冗長ログ分類が有効かを返す。
func (l *StdLogger) IsVerboseEnabled(category VERBOSE) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose[category]
}

func (l *StdLogger) output(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Print(line)
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   ILogger = NewLogger(os.Stderr)
)

// DefaultLogger は既定ロガーを返す。
func DefaultLogger() ILogger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。nilは無視する。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		return
	}
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}
