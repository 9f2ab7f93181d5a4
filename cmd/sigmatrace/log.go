package main

import (
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the structured logger every subcommand writes
// operational (not protocol-response) output through: level is adjustable
// via -log-level the way rubin-node's -log-level flag adjusts its own
// logger.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
