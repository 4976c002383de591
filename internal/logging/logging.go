// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 20
	maxLogBackups = 3
	maxLogAgeDays = 14
)

// Options select the level and an optional rotating log file.
type Options struct {
	Level string
	File  string
}

// Setup points the global logger at stderr, and additionally at a rotating
// JSON log file when opts.File is set. The returned closer releases the file.
func Setup(opts Options) (io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if opts.File == "" {
		log.Logger = log.Output(console)
		return io.NopCloser(nil), nil
	}

	rotating := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, rotating)).With().Timestamp().Logger()
	return rotating, nil
}
