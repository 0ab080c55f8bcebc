package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	enabled = true // flip to false to nuke logs
	logger  = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
)

func EnableLogging(b bool) {
	enabled = b
}

// SetLevel accepts zerolog level names ("debug", "info", "warn", "error").
// Unknown names leave the current level untouched.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func Debug(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Debug().Msgf(msg, v...)
}

func Info(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Info().Msgf(msg, v...)
}

func Warn(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Warn().Msgf(msg, v...)
}

func Error(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Error().Msgf(msg, v...)
}
