/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process. Logs go to stderr; stdout
// belongs to the progress bar.
func Setup(environment string, debug bool) zerolog.Logger {
	return SetupWithWriter(environment, debug, os.Stderr)
}

// SetupWithWriter configures zerolog to write human readable lines to w.
func SetupWithWriter(environment string, debug bool, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	switch {
	case debug:
		level = zerolog.DebugLevel
	case environment == "development":
		level = zerolog.InfoLevel
	}

	consoleWriter := zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)}

	logger := zerolog.New(consoleWriter).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger
}
