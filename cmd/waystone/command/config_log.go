package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig controls the structured log sink. With no path configured, logs
// go to stderr only.
type LogConfig struct {
	Path       string `json:"path,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	Level      string `json:"level,omitempty"`
}

func (c *LogConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Level != "" {
		if _, err := c.level(); err != nil {
			el.Add(err)
		}
	}
	if c.MaxSizeMB < 0 {
		el.Add(fmt.Errorf("max_size_mb cannot be negative"))
	}
	if c.MaxBackups < 0 {
		el.Add(fmt.Errorf("max_backups cannot be negative"))
	}

	return el.Err()
}

func (c *LogConfig) level() (slog.Level, error) {
	switch c.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.Level)
	}
}

// Apply installs the configured sink as the default slog logger.
func (c *LogConfig) Apply() error {
	level, err := c.level()
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if c.Path != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   c.Path,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
		})
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}
