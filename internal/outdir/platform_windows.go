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

//go:build windows

package outdir

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// desktopDir asks the shell for the known Desktop folder, falling back to
// the profile-relative default when the lookup fails.
func (r *Resolver) desktopDir() string {
	if dir, err := windows.KnownFolderPath(windows.FOLDERID_Desktop, 0); err == nil && dir != "" {
		return dir
	}
	if r.HomeDir == "" {
		return ""
	}
	return filepath.Join(r.HomeDir, "Desktop")
}

func (r *Resolver) documentsDir() string {
	if dir, err := windows.KnownFolderPath(windows.FOLDERID_Documents, 0); err == nil && dir != "" {
		return dir
	}
	if r.HomeDir == "" {
		return ""
	}
	return filepath.Join(r.HomeDir, "Documents")
}
