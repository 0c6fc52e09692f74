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

//go:build !windows

package outdir

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// desktopDir returns the platform desktop directory: the xdg-advertised
// one when available, otherwise ~/Desktop.
func (r *Resolver) desktopDir() string {
	if v := r.expandUserDir(r.getenv("XDG_DESKTOP_DIR")); v != "" {
		return v
	}
	if v := r.userDirsLookup("XDG_DESKTOP_DIR"); v != "" {
		return v
	}
	if r.HomeDir == "" {
		return ""
	}
	return filepath.Join(r.HomeDir, "Desktop")
}

func (r *Resolver) documentsDir() string {
	if v := r.expandUserDir(r.getenv("XDG_DOCUMENTS_DIR")); v != "" {
		return v
	}
	if v := r.userDirsLookup("XDG_DOCUMENTS_DIR"); v != "" {
		return v
	}
	if r.HomeDir == "" {
		return ""
	}
	return filepath.Join(r.HomeDir, "Documents")
}

// userDirsLookup reads a key from ~/.config/user-dirs.dirs (or the
// XDG_CONFIG_HOME equivalent). Missing or malformed files yield "".
func (r *Resolver) userDirsLookup(key string) string {
	configHome := r.getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if r.HomeDir == "" {
			return ""
		}
		configHome = filepath.Join(r.HomeDir, ".config")
	}
	f, err := os.Open(filepath.Join(configHome, "user-dirs.dirs"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(name) != key {
			continue
		}
		return r.expandUserDir(value)
	}
	return ""
}
