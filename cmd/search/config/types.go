// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"github.com/AleutianAI/AleutianSearch/pkg/telemetry"
	"github.com/AleutianAI/AleutianSearch/services/search/history"
)

// CurrentConfigVersion is written to new config files.
const CurrentConfigVersion = "1"

// SearchCLIConfig is the on-disk configuration of the search CLI.
type SearchCLIConfig struct {
	Meta      MetaConfig       `yaml:"meta"`
	Search    SearchConfig     `yaml:"search"`
	Logging   LoggingConfig    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	History   HistoryConfig    `yaml:"history"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

// SearchConfig holds defaults for the solve command. Flags override them.
type SearchConfig struct {
	Strategy       string `yaml:"strategy" validate:"required,strategy"`
	MaxExpansions  int    `yaml:"max_expansions" validate:"gte=0"`
	MaxFrontier    int    `yaml:"max_frontier" validate:"gte=0"`
	CheckMaxStates int    `yaml:"check_max_states" validate:"gte=0"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

type HistoryConfig struct {
	// Enabled archives every solve without needing --record.
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() SearchCLIConfig {
	tel := telemetry.DefaultConfig()
	return SearchCLIConfig{
		Meta: MetaConfig{Version: CurrentConfigVersion},
		Search: SearchConfig{
			Strategy:       "astar",
			CheckMaxStates: 100000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: tel,
		History: HistoryConfig{
			Path: history.DefaultPath(),
		},
	}
}
