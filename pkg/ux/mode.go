// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Mode controls the richness of CLI output
type Mode string

const (
	// ModeRich enables colors, icons and boxes
	ModeRich Mode = "rich"

	// ModePlain uses icons and aligned text without color
	ModePlain Mode = "plain"

	// ModeMachine outputs plain key=value and TSV suitable for scripting
	ModeMachine Mode = "machine"
)

// ParseMode converts a string to a Mode. Unknown values give ModePlain.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rich", "full", "standard":
		return ModeRich
	case "machine", "quiet", "q":
		return ModeMachine
	default:
		return ModePlain
	}
}

// DetectMode picks a mode for w.
//
// ALEUTIAN_PERSONALITY wins when set. Otherwise a terminal gets ModeRich,
// or ModePlain when NO_COLOR is set, and anything else gets ModeMachine.
func DetectMode(w io.Writer) Mode {
	if env := os.Getenv("ALEUTIAN_PERSONALITY"); env != "" {
		return ParseMode(env)
	}
	if !isTerminal(w) {
		return ModeMachine
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	return ModeRich
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
