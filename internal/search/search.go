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

// Package search walks a directory tree depth-first in pre-order,
// filtering entries by include/exclude glob patterns and consulting the
// path sandbox for every visited entry.
package search

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"paintbox/internal/paths"

	"github.com/bmatcuk/doublestar/v4"
)

// Engine enumerates files under an authorized root. An inaccessible or
// denied subtree is pruned silently; only a failure on the root itself
// aborts the search. MaxDepth bounds how far the walk descends so a deep
// tree of non-matching entries cannot keep it busy forever.
type Engine struct {
	Sandbox    *paths.Sandbox
	MaxDepth   int
	MaxEntries int
}

// Search walks root (which must already be an authorized, resolved path)
// and returns the absolute paths whose base name matches include,
// case-insensitively. Exclude patterns are evaluated against paths
// relative to root; a pattern without glob metacharacters excludes any
// subtree containing that literal segment. Cancellation is honored at
// every visited entry.
func (e *Engine) Search(ctx context.Context, root, include string, excludes []string) ([]string, error) {
	if include == "" {
		include = "*"
	}
	includeLower := strings.ToLower(include)
	if _, err := doublestar.Match(includeLower, "probe"); err != nil {
		return nil, fmt.Errorf("invalid include pattern %q: %v", include, err)
	}
	excludeGlobs := make([]string, 0, len(excludes))
	for _, pattern := range excludes {
		g := normalizeExclude(pattern)
		if _, err := doublestar.Match(g, "probe"); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %v", pattern, err)
		}
		excludeGlobs = append(excludeGlobs, g)
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Unreadable subtree: prune, never abort.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if e.MaxDepth > 0 && relativeDepth(rel) > e.MaxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Every visited entry is re-authorized; a symlink pointing
		// outside the allowed roots is skipped like an unreadable one.
		if e.Sandbox != nil {
			if _, err := e.Sandbox.Authorize(path); err != nil {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		relSlash := filepath.ToSlash(rel)
		for _, g := range excludeGlobs {
			ok, err := doublestar.Match(g, relSlash)
			if err != nil {
				return err
			}
			if ok {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		ok, err := doublestar.Match(includeLower, strings.ToLower(d.Name()))
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, path)
			if e.MaxEntries > 0 && len(matches) >= e.MaxEntries {
				return fmt.Errorf("directory entry limit exceeded")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// relativeDepth counts path segments below the walk root. Direct children
// are at depth 1.
func relativeDepth(rel string) int {
	return strings.Count(rel, string(os.PathSeparator)) + 1
}

// normalizeExclude wraps a metacharacter-free pattern so it excludes any
// subtree containing that literal segment.
func normalizeExclude(pattern string) string {
	if !strings.ContainsAny(pattern, "*?[{") {
		return "**/" + strings.Trim(filepath.ToSlash(pattern), "/") + "/**"
	}
	return filepath.ToSlash(pattern)
}
