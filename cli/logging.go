package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig selects level, format and destination of the process logger.
type LogConfig struct {
	Level      string // trace, debug, info, warn, error
	Format     string // json or text
	File       string // rotated log file; empty means the fallback writer
	WithCaller bool
}

// AddLoggingFlags registers the logging flags on fs.
func AddLoggingFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	fs.String("log-format", "text", "Log format: text or json")
	fs.String("log-file", "", "Write logs to this file instead of stderr")
	fs.Bool("with-caller", false, "Include the caller in log lines")
}

// LogConfigFrom reads the logging settings from v.
func LogConfigFrom(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:      v.GetString("log-level"),
		Format:     v.GetString("log-format"),
		File:       v.GetString("log-file"),
		WithCaller: v.GetBool("with-caller"),
	}
}

// NewLogger builds a logger from cfg. Logs go to cfg.File when set,
// otherwise to fallback. A nil fallback with no file discards everything.
func NewLogger(cfg LogConfig, fallback io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	var w io.Writer
	switch {
	case cfg.File != "":
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	case fallback != nil:
		w = fallback
	default:
		return zerolog.Nop(), nil
	}

	switch cfg.Format {
	case "", "text":
		w = zerolog.ConsoleWriter{Out: w, NoColor: cfg.File != ""}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("log format %q: must be text or json", cfg.Format)
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.WithCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}
