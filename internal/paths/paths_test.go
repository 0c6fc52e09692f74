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
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	apperrors "paintbox/internal/errors"
)

func newTestSandbox(t *testing.T, roots ...string) *Sandbox {
	t.Helper()
	sb, err := NewSandbox(roots)
	if err != nil {
		t.Fatalf("failed to create sandbox: %v", err)
	}
	return sb
}

func TestAuthorizeDescendant(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "sub", "file.txt")
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sb := newTestSandbox(t, root)
	resolved, err := sb.Authorize(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := filepath.EvalSymlinks(file)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if resolved != want {
		t.Fatalf("expected %s, got %s", want, resolved)
	}
}

func TestAuthorizeOutsideRoots(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sb := newTestSandbox(t, root)
	_, err := sb.Authorize(target)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %T", err)
	}
	if len(denied.Roots) == 0 {
		t.Fatal("expected denied error to carry the allow-list")
	}
	var coded *apperrors.Error
	if !errors.As(err, &coded) || coded.Code != apperrors.CodeAccessDenied {
		t.Fatalf("expected access_denied code, got %v", err)
	}
}

func TestAuthorizeDanglingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}
	root := t.TempDir()
	link := filepath.Join(root, "dangling.txt")
	if err := os.Symlink(filepath.Join(root, "gone.txt"), link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	sb := newTestSandbox(t, root)
	_, err := sb.Authorize(link)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for dangling symlink, got %v", err)
	}
	var coded *apperrors.Error
	if !errors.As(err, &coded) || coded.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not_found code, got %v", err)
	}
}

func TestAuthorizeSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}
	root := t.TempDir()
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(secret, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	link := filepath.Join(root, "innocent.txt")
	if err := os.Symlink(secret, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	sb := newTestSandbox(t, root)
	_, err := sb.Authorize(link)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for symlink escape, got %v", err)
	}
}

func TestAuthorizeNonExistentWithParentInside(t *testing.T) {
	root := t.TempDir()
	sb := newTestSandbox(t, root)

	target := filepath.Join(root, "newfile.txt")
	resolved, err := sb.Authorize(target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rootReal, _ := filepath.EvalSymlinks(root)
	if resolved != filepath.Join(rootReal, "newfile.txt") {
		t.Fatalf("unexpected resolved path: %s", resolved)
	}
}

func TestAuthorizeNonExistentParentMissing(t *testing.T) {
	root := t.TempDir()
	sb := newTestSandbox(t, root)

	target := filepath.Join(root, "missing", "deep", "file.txt")
	_, err := sb.Authorize(target)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthorizeNonExistentParentOutside(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	sb := newTestSandbox(t, root)

	target := filepath.Join(outside, "newfile.txt")
	_, err := sb.Authorize(target)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestSiblingPrefixRejected(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "alice")
	sibling := filepath.Join(base, "alice2")
	for _, dir := range []string{root, sibling} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	secret := filepath.Join(sibling, "secret")
	if err := os.WriteFile(secret, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sb := newTestSandbox(t, root)
	_, err := sb.Authorize(secret)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected sibling-name collision to be rejected, got %v", err)
	}
}

func TestAuthorizeDotDotNormalization(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "x.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sb := newTestSandbox(t, root)

	tricky := filepath.Join(root, "..", filepath.Base(root), "x.txt")
	resolved, err := sb.Authorize(tricky)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(file)
	if resolved != want {
		t.Fatalf("expected %s, got %s", want, resolved)
	}
}

func TestAuthorizeIdempotent(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sb := newTestSandbox(t, root)

	first, err := sb.Authorize(file)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := sb.Authorize(file)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical results, got %s and %s", first, second)
	}
}

func TestAuthorizeRelativePath(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "rel.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Chdir(root)

	sb := newTestSandbox(t, root)
	resolved, err := sb.Authorize("rel.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(file)
	if resolved != want {
		t.Fatalf("expected %s, got %s", want, resolved)
	}
}

func TestAuthorizeHomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	file := filepath.Join(home, "doc.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sb := newTestSandbox(t, "~")
	resolved, err := sb.Authorize("~/doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(file)
	if resolved != want {
		t.Fatalf("expected %s, got %s", want, resolved)
	}
}

func TestValidatePathStringRejectsNullByte(t *testing.T) {
	if err := ValidatePathString("bad\x00path", 0); err == nil {
		t.Fatal("expected error for null byte path")
	}
}

func TestValidatePathStringRejectsEmpty(t *testing.T) {
	if err := ValidatePathString("   ", 0); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestHasPathPrefixBoundary(t *testing.T) {
	if HasPathPrefix("/home/alice2/secret", "/home/alice") {
		t.Fatal("prefix check must respect the separator boundary")
	}
	if !HasPathPrefix("/home/alice/docs", "/home/alice") {
		t.Fatal("descendant should match")
	}
	if !HasPathPrefix("/home/alice", "/home/alice") {
		t.Fatal("exact equality should match")
	}
}

func TestNewSandboxDefaultsWhenEmpty(t *testing.T) {
	sb, err := NewSandbox(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sb.Roots()) == 0 {
		t.Fatal("expected default roots")
	}
}
