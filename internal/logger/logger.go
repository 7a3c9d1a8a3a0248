package logger

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 7
)

var (
	// global is the shared logger instance used throughout the application.
	//nolint:gochecknoglobals // Logger is used all over the project, so it's okay.
	global *zap.SugaredLogger
	// atomicLevel is the minimum level for messages to be processed.
	//nolint:gochecknoglobals // Shared by every core built by this package.
	atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	// output is the core every global and context logger writes through.
	// Configure replaces it, so loggers derived earlier pick up the change.
	//nolint:gochecknoglobals // Shared by every logger derived from the global one.
	output atomic.Pointer[zapcore.Core]
)

func init() { //nolint:gochecknoinits // Without a logger the application has no output at all.
	console := zapcore.NewCore(consoleEncoder(), zapcore.AddSync(os.Stdout), atomicLevel)
	output.Store(&console)

	SetLogger(zap.New(new(switchCore)).Sugar())
}

// switchCore forwards every entry to the core currently held in output,
// carrying the fields added through With.
type switchCore struct {
	fields []zapcore.Field
}

// current returns the installed output core.
//
//nolint:ireturn // Cores are only known through the interface.
func (c *switchCore) current() zapcore.Core {
	return *output.Load()
}

// Enabled reports whether the installed core logs level.
func (c *switchCore) Enabled(level zapcore.Level) bool {
	return c.current().Enabled(level)
}

// With returns a core carrying fields in addition to the existing ones.
//
//nolint:ireturn // Required by zapcore.Core.
func (c *switchCore) With(fields []zapcore.Field) zapcore.Core {
	return &switchCore{fields: append(slices.Clip(c.fields), fields...)}
}

// Check adds this core to the entry when its level is enabled.
func (c *switchCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}

	return checked
}

// Write encodes the entry with the core installed at the time of the call.
func (c *switchCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.current().Write(entry, append(slices.Clip(c.fields), fields...))
}

// Sync flushes the installed core.
func (c *switchCore) Sync() error {
	return c.current().Sync()
}

// consoleEncoder returns the human-oriented encoder used for stdout.
//
//nolint:ireturn // zapcore.Encoder is the natural return type here.
func consoleEncoder() zapcore.Encoder {
	//nolint:exhaustruct // Default encoder configuration values are fine.
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "message",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalColorLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: ", ",
	})
}

// NewWithWriter creates a standalone sugared logger writing the console
// format to w. A nil level falls back to the package level.
func NewWithWriter(w zapcore.WriteSyncer, level zapcore.LevelEnabler, options ...zap.Option) *zap.SugaredLogger {
	if level == nil {
		level = atomicLevel
	}

	core := zapcore.NewCore(consoleEncoder(), w, level)

	return zap.New(core, options...).Sugar()
}

// Configure applies the level name and, when file is set, tees the console
// output with a rotated JSON log file. Loggers already stored in contexts
// write to the file as well. The returned closer restores the previous output
// and closes the file; it is a no-op when no file is configured.
func Configure(levelName, file string) (io.Closer, error) {
	if levelName != "" {
		level, ok := ParseLogLevel(levelName)
		if !ok {
			return nil, fmt.Errorf("unknown log level %q", levelName)
		}

		SetLevel(level)
	}

	if file == "" {
		return io.NopCloser(nil), nil
	}

	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		MaxAge:     fileMaxAgeDays,
		Compress:   true,
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(rotated),
		atomicLevel,
	)
	consoleCore := zapcore.NewCore(consoleEncoder(), zapcore.AddSync(os.Stdout), atomicLevel)

	tee := zapcore.NewTee(consoleCore, fileCore)

	return &fileOutput{previous: output.Swap(&tee), file: rotated}, nil
}

// fileOutput detaches the log file installed by Configure.
type fileOutput struct {
	// previous is the output in place before Configure.
	previous *zapcore.Core
	// file is the rotated log file.
	file *lumberjack.Logger
}

// Close restores the previous output and closes the file.
func (f *fileOutput) Close() error {
	output.Store(f.previous)

	if err := f.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}

	return nil
}

// ParseLogLevel converts string input to zap log level.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel, false
	}

	return level, true
}

// Level returns the current logging level of the global logger.
func Level() zapcore.Level {
	return atomicLevel.Level()
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	return global
}

// SetLogger sets the global logger.
// This function is not thread-safe.
func SetLogger(l *zap.SugaredLogger) {
	global = l
}

// SetLevel sets the log level for the global logger.
func SetLevel(level zapcore.Level) {
	//nolint: errcheck // No need to check the error here.
	defer global.Sync()

	atomicLevel.SetLevel(level)
}
