package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a named sugared logger.
type Logger struct {
	*zap.SugaredLogger
	LogsPath string
	Name     string

	file *os.File
}

// Entry is what a Hook receives for each log entry.
type Entry struct {
	Timestamp  time.Time
	Caller     string
	LoggerName string
	Level      zapcore.Level
	Message    string
}

// Hook is called for each log entry. It may run on any goroutine.
type Hook func(Entry)

var (
	Log *Logger

	hookMu sync.RWMutex
	hook   Hook
)

// Config controls logger initialization.
type Config struct {
	Debug     bool      // enable debug level
	Console   io.Writer // console sink; nil disables it
	LogToFile bool      // also write JSON lines to LogsDir
	LogsDir   string    // relative to the working directory
}

// SetHook installs fn as the entry hook. A nil fn removes it.
func SetHook(fn Hook) {
	hookMu.Lock()
	hook = fn
	hookMu.Unlock()
}

func currentHook() Hook {
	hookMu.RLock()
	defer hookMu.RUnlock()
	return hook
}

// Init builds the global logger. A log file left open by an earlier Init
// is closed first.
func Init(config Config) error {
	if err := Close(); err != nil {
		return fmt.Errorf("logger: close previous log file: %w", err)
	}
	l := Logger{Name: "qryx"}

	var level zapcore.Level
	if config.Debug {
		level = zapcore.DebugLevel
	} else {
		level = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     timeEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var cores []zapcore.Core

	if config.Console != nil {
		consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(config.Console)), level))
	}

	if config.LogToFile {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		l.LogsPath = filepath.Join(wd, config.LogsDir)
		if filepath.IsAbs(config.LogsDir) {
			l.LogsPath = config.LogsDir
		}
		if err := os.MkdirAll(l.LogsPath, os.ModePerm); err != nil {
			return fmt.Errorf("logger: create logs dir: %w", err)
		}

		path := filepath.Join(l.LogsPath, fmt.Sprintf("qryx-%s.log", time.Now().Format("2006-01-02")))
		fileWriter, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("logger: open log file: %w", err)
		}
		l.file = fileWriter

		fileEncoderConfig := encoderConfig
		fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(fileWriter), level))
	}

	// Hooks only run for entries some core accepts.
	if len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(io.Discard), level))
	}

	core := zapcore.NewTee(cores...)

	log := zap.New(core, zap.AddCaller(), zap.Hooks(func(entry zapcore.Entry) error {
		if fn := currentHook(); fn != nil {
			fn(Entry{
				Timestamp:  entry.Time,
				Caller:     entry.Caller.String(),
				LoggerName: entry.LoggerName,
				Level:      entry.Level,
				Message:    entry.Message,
			})
		}
		return nil
	}))

	l.SugaredLogger = log.Named(l.Name).Sugar()
	Log = &l
	return nil
}

// Named returns a child logger ("tui", "render", ...).
func Named(name string) (*Logger, error) {
	if Log == nil {
		return nil, fmt.Errorf("logger is not initialized")
	}
	return &Logger{
		SugaredLogger: Log.SugaredLogger.Named(name),
		LogsPath:      Log.LogsPath,
		Name:          name,
	}, nil
}

// Sugar returns the named child, or a no-op logger before Init.
func Sugar(name string) *zap.SugaredLogger {
	l, err := Named(name)
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.SugaredLogger
}

// Sync flushes buffered entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

// Close flushes the logger and closes its log file. It is safe to call
// more than once.
func Close() error {
	Sync()
	if Log == nil || Log.file == nil {
		return nil
	}
	err := Log.file.Close()
	Log.file = nil
	return err
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05"))
}
