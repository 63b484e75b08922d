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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianSearch/services/search"
)

var configValidate = newValidator()

// newValidator registers the "strategy" tag, which accepts every name
// search.ParseStrategy does plus "all".
func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("strategy", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			return true
		}
		_, err := search.ParseStrategy(name)
		return err == nil
	})
	if err != nil {
		panic(fmt.Sprintf("register strategy validation: %v", err))
	}
	return v
}

// DefaultPath returns ~/.aleutian/search.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".aleutian", "search.yaml"), nil
}

// Load reads, defaults and validates the CLI configuration.
//
// Description:
//
//	An explicit path must exist. With an empty path the default location
//	is used and a default file is created there on first run. Fields
//	missing from the file keep their DefaultConfig values.
//
// Inputs:
//   - path: Config file path, or "" for DefaultPath.
//
// Outputs:
//   - *SearchCLIConfig: The validated configuration.
//   - error: Read, parse or validation failure.
func Load(path string) (*SearchCLIConfig, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			slog.Info("first run detected, creating config", slog.String("path", path))
			if err := createDefault(path); err != nil {
				return nil, err
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over DefaultConfig and validates the result.
func Parse(data []byte) (*SearchCLIConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *SearchCLIConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
