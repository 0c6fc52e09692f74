// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"paintbox/internal/tools"
)

// Config represents the application configuration. It is constructed once
// at startup and threaded explicitly into each component.
type Config struct {
	APIKey              string   `json:"api_key"`
	APIURL              string   `json:"api_url,omitempty"`
	Model               string   `json:"model,omitempty"`
	AllowedRoots        []string `json:"allowed_roots,omitempty"`
	OutputDir           string   `json:"output_dir,omitempty"`
	ForceDesktop        bool     `json:"force_desktop,omitempty"`
	MaxFileSizeBytes    int64    `json:"max_file_size_bytes,omitempty"`
	MaxDirectoryDepth   int      `json:"max_directory_depth,omitempty"`
	MaxDirectoryEntries int      `json:"max_directory_entries,omitempty"`
}

// DefaultConfig returns a config with default values. An empty
// AllowedRoots list means "user home plus working directory", resolved
// when the sandbox is built.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSizeBytes:    tools.DefaultLimits().MaxFileSizeBytes,
		MaxDirectoryDepth:   tools.DefaultLimits().MaxDirectoryDepth,
		MaxDirectoryEntries: tools.DefaultLimits().MaxDirectoryEntries,
	}
}

// LoadConfig loads configuration from a JSON file and applies env
// overrides. A missing file is not an error; defaults apply.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); err == nil {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %v", filepath, err)
		}
	}

	// Env overrides (apply regardless of whether config file exists)
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		config.APIKey = val
	}
	if val := os.Getenv("OPENAI_API_URL"); val != "" {
		config.APIURL = val
	}
	if val := os.Getenv("PAINTBOX_ALLOWED_ROOTS"); val != "" {
		config.AllowedRoots = SplitRoots(val)
	}
	if val := os.Getenv("PAINTBOX_OUTPUT_DIR"); val != "" {
		config.OutputDir = val
	}
	if val := os.Getenv("PAINTBOX_FORCE_DESKTOP"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.ForceDesktop = parsed
		}
	}

	return config, nil
}

// SplitRoots splits a comma-separated allow-list, dropping blank entries.
// Each entry is home-expanded and canonicalized later by the sandbox.
func SplitRoots(value string) []string {
	parts := strings.Split(value, ",")
	roots := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			roots = append(roots, p)
		}
	}
	return roots
}

// ToolLimits returns resource limits for tool handlers.
func (c *Config) ToolLimits() tools.Limits {
	return tools.Limits{
		MaxFileSizeBytes:    c.MaxFileSizeBytes,
		MaxDirectoryDepth:   c.MaxDirectoryDepth,
		MaxDirectoryEntries: c.MaxDirectoryEntries,
	}.Normalize()
}

// ValidationWarning represents a non-fatal configuration issue
type ValidationWarning struct {
	Field   string
	Message string
}

// Validate checks the configuration for common issues and returns warnings
func (c *Config) Validate() []ValidationWarning {
	var warnings []ValidationWarning

	if c.APIKey == "" {
		warnings = append(warnings, ValidationWarning{
			Field:   "api_key",
			Message: "no API key configured, generate_image will be disabled",
		})
	}
	if c.MaxFileSizeBytes < 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "max_file_size_bytes",
			Message: fmt.Sprintf("max_file_size_bytes %d should be positive, using default", c.MaxFileSizeBytes),
		})
	}
	if c.MaxDirectoryDepth < 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "max_directory_depth",
			Message: fmt.Sprintf("max_directory_depth %d should be positive, using default", c.MaxDirectoryDepth),
		})
	}
	if c.MaxDirectoryEntries < 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "max_directory_entries",
			Message: fmt.Sprintf("max_directory_entries %d should be positive, using default", c.MaxDirectoryEntries),
		})
	}
	for _, root := range c.AllowedRoots {
		if strings.TrimSpace(root) == "" {
			warnings = append(warnings, ValidationWarning{
				Field:   "allowed_roots",
				Message: "allow-list contains a blank entry",
			})
		}
	}

	return warnings
}
