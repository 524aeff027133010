/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolUnavailable is returned when the audio tool binary cannot be found.
var ErrToolUnavailable = errors.New("audio tool not found")

// ToolError reports a tool invocation that exited with a non-zero status.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "no diagnostic output"
	}
	return fmt.Sprintf("%s: %s (exit code %d)", e.Tool, msg, e.ExitCode)
}

// IsToolError reports whether err wraps a *ToolError.
func IsToolError(err error) bool {
	var te *ToolError
	return errors.As(err, &te)
}
