// Package logging configures the global zerolog logger. Console output goes
// through the human-readable writer; when a log file is configured it is
// rotated with lumberjack and receives the raw JSON stream.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the global logger. Unknown levels fall back to info.
func Setup(level, file string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}

	var out io.Writer = console
	if file != "" {
		out = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    20, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
		})
	}

	log.Logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
