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

package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "paintbox/internal/errors"
)

const maxPathLength = 4096

// Sentinel errors for programmatic checks with errors.Is. Both carry the
// matching error code so callers can branch on either.
var (
	// ErrAccessDenied indicates a path resolves outside every allowed root.
	ErrAccessDenied error = apperrors.New(apperrors.CodeAccessDenied, "path outside allowed roots")

	// ErrNotFound indicates a path and its parent directory are both absent.
	ErrNotFound error = apperrors.New(apperrors.CodeNotFound, "path not found")
)

// DeniedError carries the rejected path and the allow-list for diagnostics.
type DeniedError struct {
	Path  string
	Roots []string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: %s is outside allowed roots [%s]", e.Path, strings.Join(e.Roots, ", "))
}

func (e *DeniedError) Unwrap() error { return ErrAccessDenied }

// NotFoundError indicates neither the path nor its parent directory exists.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s (parent directory does not exist)", e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Sandbox confines filesystem operations to a fixed set of root directories.
// The root set is canonicalized once at construction and never mutated.
type Sandbox struct {
	roots []string
}

// DefaultRoots returns the roots used when no allow-list is configured:
// the user's home directory plus the current working directory.
func DefaultRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		roots = append(roots, home)
	}
	if cwd, err := os.Getwd(); err == nil && cwd != "" && !containsString(roots, cwd) {
		roots = append(roots, cwd)
	}
	if len(roots) == 0 {
		roots = append(roots, ".")
	}
	return roots
}

// NewSandbox canonicalizes each configured root and returns an immutable
// sandbox. Roots are home-expanded, made absolute, and symlink-resolved
// when they exist.
func NewSandbox(roots []string) (*Sandbox, error) {
	if len(roots) == 0 {
		roots = DefaultRoots()
	}
	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		resolved, err := canonicalizeRoot(root)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeConfig, fmt.Sprintf("invalid allowed root %q", root), err)
		}
		if !containsString(canonical, resolved) {
			canonical = append(canonical, resolved)
		}
	}
	if len(canonical) == 0 {
		return nil, apperrors.New(apperrors.CodeConfig, "no usable allowed roots")
	}
	return &Sandbox{roots: canonical}, nil
}

// Roots returns a copy of the canonicalized allow-list.
func (s *Sandbox) Roots() []string {
	return append([]string{}, s.roots...)
}

// Authorize resolves a caller-supplied path and checks it against the
// allow-list. On success it returns the only path representation that
// operations may act on: the symlink-resolved absolute path when the
// target exists, or the resolved parent joined with the original base
// name when it does not.
func (s *Sandbox) Authorize(path string) (string, error) {
	if err := ValidatePathString(path, maxPathLength); err != nil {
		return "", err
	}

	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs := expanded
	if !filepath.IsAbs(abs) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %v", err)
		}
		abs = filepath.Join(cwd, abs)
	}
	candidate := filepath.Clean(abs)

	if !s.contains(candidate) {
		return "", &DeniedError{Path: candidate, Roots: s.Roots()}
	}

	if _, err := os.Lstat(candidate); err == nil {
		// The real path must pass the same check: a symlink planted
		// inside a root pointing outside it fails here.
		real, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			// A dangling symlink resolves like a missing path.
			if os.IsNotExist(err) {
				return "", &NotFoundError{Path: candidate}
			}
			return "", fmt.Errorf("failed to resolve path: %v", err)
		}
		if !s.contains(real) {
			return "", &DeniedError{Path: real, Roots: s.Roots()}
		}
		return real, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat path: %v", err)
	}

	// Target missing: authorize against the parent's real path instead.
	parent := filepath.Dir(candidate)
	parentReal, err := filepath.EvalSymlinks(parent)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: candidate}
		}
		return "", fmt.Errorf("failed to resolve parent path: %v", err)
	}
	if !s.contains(parentReal) {
		return "", &DeniedError{Path: parentReal, Roots: s.Roots()}
	}
	return filepath.Join(parentReal, filepath.Base(candidate)), nil
}

func (s *Sandbox) contains(path string) bool {
	for _, root := range s.roots {
		if HasPathPrefix(path, root) {
			return true
		}
	}
	return false
}

// ValidatePathString validates raw path input before resolution.
func ValidatePathString(path string, maxLen int) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.IndexByte(path, 0) != -1 {
		return fmt.Errorf("path contains null byte")
	}
	if !utf8.ValidString(path) {
		return fmt.Errorf("path is not valid UTF-8")
	}
	for _, r := range path {
		if unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Me, r) {
			return fmt.Errorf("path contains unsupported unicode combining mark")
		}
	}
	if maxLen > 0 && len(path) > maxLen {
		return fmt.Errorf("path exceeds maximum length of %d characters", maxLen)
	}
	return nil
}

// ExpandHome replaces a leading ~ or ~/ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %v", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// HasPathPrefix returns true when path is within base. The boundary check
// matters: /home/alice must not admit /home/alice2.
func HasPathPrefix(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && rel != "..")
}

func canonicalizeRoot(root string) (string, error) {
	expanded, err := ExpandHome(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	if _, err := os.Lstat(abs); err == nil {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return "", err
		}
		return resolved, nil
	} else if os.IsNotExist(err) {
		return abs, nil
	} else {
		return "", err
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
