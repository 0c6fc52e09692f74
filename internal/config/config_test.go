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
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_API_URL",
		"PAINTBOX_ALLOWED_ROOTS", "PAINTBOX_OUTPUT_DIR", "PAINTBOX_FORCE_DESKTOP",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "" {
		t.Fatalf("expected empty api key, got %q", cfg.APIKey)
	}
	limits := cfg.ToolLimits()
	if limits.MaxFileSizeBytes <= 0 || limits.MaxDirectoryDepth <= 0 || limits.MaxDirectoryEntries <= 0 {
		t.Fatalf("expected positive default limits, got %+v", limits)
	}
}

func TestToolLimitsFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"max_file_size_bytes":1024,"max_directory_depth":3,"max_directory_entries":50}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	limits := cfg.ToolLimits()
	if limits.MaxFileSizeBytes != 1024 {
		t.Fatalf("expected max file size 1024, got %d", limits.MaxFileSizeBytes)
	}
	if limits.MaxDirectoryDepth != 3 {
		t.Fatalf("expected max directory depth 3, got %d", limits.MaxDirectoryDepth)
	}
	if limits.MaxDirectoryEntries != 50 {
		t.Fatalf("expected max directory entries 50, got %d", limits.MaxDirectoryEntries)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"api_key":"k","allowed_roots":["/data"],"output_dir":"/tmp/out","force_desktop":true}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "k" {
		t.Fatalf("unexpected api key: %q", cfg.APIKey)
	}
	if len(cfg.AllowedRoots) != 1 || cfg.AllowedRoots[0] != "/data" {
		t.Fatalf("unexpected roots: %v", cfg.AllowedRoots)
	}
	if cfg.OutputDir != "/tmp/out" || !cfg.ForceDesktop {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"api_key":"file-key"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("PAINTBOX_ALLOWED_ROOTS", " /a , /b ,, ")
	t.Setenv("PAINTBOX_FORCE_DESKTOP", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("expected env override, got %q", cfg.APIKey)
	}
	if len(cfg.AllowedRoots) != 2 || cfg.AllowedRoots[0] != "/a" || cfg.AllowedRoots[1] != "/b" {
		t.Fatalf("unexpected roots: %v", cfg.AllowedRoots)
	}
	if !cfg.ForceDesktop {
		t.Fatal("expected force desktop from env")
	}
}

func TestLoadConfigRejectsMalformedJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"api_key":`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestSplitRoots(t *testing.T) {
	roots := SplitRoots("~/docs, /data,,  ")
	if len(roots) != 2 || roots[0] != "~/docs" || roots[1] != "/data" {
		t.Fatalf("unexpected split: %v", roots)
	}
}

func TestValidateWarnsWithoutAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	warnings := cfg.Validate()
	found := false
	for _, w := range warnings {
		if w.Field == "api_key" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected api_key warning, got %v", warnings)
	}
}
