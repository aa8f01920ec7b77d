package utils

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CustomLogger embeds zap.Logger and adds a TRACE level used for chunk-level download and row-level parsing logs.
type CustomLogger struct {
	zap.Logger
}

// defaultLogger is a pre-configured development logger, replaced by InitLogger once the CLI flags are known.
var defaultLogger, _ = zap.NewDevelopment()

// Logger shared logger for the whole program.
// It is a pointer so that package-level aliases keep working after InitLogger.
var Logger = &CustomLogger{*defaultLogger}

const (
	// LogTrace is more detailed than DEBUG.
	// DEBUG logs work on the level of whole files, and TRACE logs work on the level of chunks and rows.
	LogTrace zapcore.Level = -3
)

// LogOptions selects one of the logger flavours supported by InitLogger.
type LogOptions struct {
	// JSON enables production JSON-formatted logs.
	JSON bool
	// Dev enables development formatting with time stamps and source files.
	Dev bool
	// Verbose lowers the level to DEBUG.
	Verbose bool
	// Trace lowers the level to TRACE.
	Trace bool
}

// level returns the minimal level enabled by the options.
func (o LogOptions) level() zapcore.Level {
	switch {
	case o.Trace:
		return LogTrace
	case o.Verbose:
		return zap.DebugLevel
	default:
		return zap.InfoLevel
	}
}

// Trace logs a message at trace level with optional structured fields.
func (l *CustomLogger) Trace(msg string, fields ...zap.Field) {
	l.Log(LogTrace, msg, fields...)
}

// Flush syncs the logger buffers.
// Syncing stderr fails on some platforms, so the error is only reported and never fatal.
func (l *CustomLogger) Flush() {
	if err := l.Sync(); err != nil {
		log.Println("Expected error while syncing the logger: ", err)
	}
}

// InitLogger replaces the global logger according to the given options.
func InitLogger(opts LogOptions) {
	var built *zap.Logger
	var err error
	switch {
	case opts.JSON:
		built, err = jsonConfig(opts).Build()
	case opts.Dev:
		built, err = devConfig(opts).Build()
	default:
		built = consoleLogger(opts)
	}
	if err != nil {
		log.Printf("Failed to build the logger, keeping the default one: %v", err)
		return
	}
	defaultLogger = built
	Logger.Logger = *defaultLogger
}

// jsonConfig production JSON output on stderr.
func jsonConfig(opts LogOptions) zap.Config {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(opts.level())
	config.EncoderConfig.EncodeLevel = TraceLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.EpochTimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
	if opts.Trace {
		// row-level logs are too many to sample the usual way
		config.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}
	return config
}

// devConfig development console output with ISO8601 timestamps and callers.
func devConfig(opts LogOptions) zap.Config {
	return zap.Config{
		Level:       zap.NewAtomicLevelAt(opts.level()),
		Development: true,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			// Keys can be anything except the empty string.
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    TraceLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// consoleLogger constructs console-friendly output for end users, not meant for development.
// It writes to stderr so that tables printed by the CLI on stdout stay clean.
func consoleLogger(opts LogOptions) *zap.Logger {
	// Disable timestamps for the standard logger, it is only used for console error output.
	log.SetFlags(0)

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "",
		CallerKey:      "caller",
		EncodeLevel:    IconLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), zap.NewAtomicLevelAt(opts.level()))
	return zap.New(core, zap.WithCaller(false), zap.AddStacktrace(zapcore.ErrorLevel))
}

// IconLevelEncoder serializes a Level to an icon - only for more important levels.
func IconLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.ErrorLevel, zapcore.FatalLevel:
		enc.AppendString("❌")
	case zapcore.WarnLevel:
		enc.AppendString("⚠️")
	case zapcore.InfoLevel:
		enc.AppendString("ℹ️")
	case LogTrace:
		enc.AppendString("TRACE")
	}
}

// TraceLevelEncoder adds TRACE level serialization, otherwise it prints LEVEL(-3)
func TraceLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == LogTrace {
		enc.AppendString("TRACE")
	} else {
		enc.AppendString(l.CapitalString())
	}
}
