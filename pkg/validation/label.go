// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation checks user-provided names before they reach output
// formats that give certain characters meaning.
//
// Machine output joins path steps with commas and table cells with tabs,
// so a node or action label containing either would corrupt it.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength is the longest label accepted, in runes.
const MaxLabelLength = 128

// ErrInvalidLabel is wrapped by every ValidateLabel failure.
var ErrInvalidLabel = errors.New("invalid label")

// ValidateLabel validates a node or action label.
//
// Valid labels:
//   - 1-128 runes of valid UTF-8
//   - no control characters (tab, newline, escape)
//   - no commas
//   - no leading or trailing whitespace
//
// Example:
//
//	if err := validation.ValidateLabel(edge.Action); err != nil {
//	    return fmt.Errorf("edge %d: %w", i, err)
//	}
func ValidateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("%w: label cannot be empty", ErrInvalidLabel)
	}
	if !utf8.ValidString(label) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidLabel, label)
	}
	if n := utf8.RuneCountInString(label); n > MaxLabelLength {
		return fmt.Errorf("%w: %d runes exceeds %d", ErrInvalidLabel, n, MaxLabelLength)
	}
	if strings.TrimSpace(label) != label {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidLabel, label)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains a control character", ErrInvalidLabel, label)
		}
		if r == ',' {
			return fmt.Errorf("%w: %q contains a comma", ErrInvalidLabel, label)
		}
	}
	return nil
}

// ValidateLabels validates every label and reports all invalid ones.
func ValidateLabels(labels []string) error {
	var invalid []string
	for _, l := range labels {
		if err := ValidateLabel(l); err != nil {
			invalid = append(invalid, l)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, invalid)
	}
	return nil
}
