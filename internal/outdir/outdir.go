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

// Package outdir picks a writable output directory from a prioritized,
// platform-aware candidate list. Candidates are derived from trusted
// platform facts rather than caller-supplied strings, so the allow-list
// sandbox is deliberately not consulted here.
package outdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "paintbox/internal/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultAppDir is the application subfolder created under desktop,
// documents, and home candidates.
const DefaultAppDir = "paintbox"

// Reason records why a candidate directory was chosen.
type Reason string

const (
	ReasonOverride  Reason = "override"
	ReasonDesktop   Reason = "desktop"
	ReasonDocuments Reason = "documents"
	ReasonHome      Reason = "home"
	ReasonWorkdir   Reason = "workdir"
)

// Candidate is one entry of the prioritized location list.
type Candidate struct {
	Dir    string
	Reason Reason
}

// Resolver picks the first writable candidate. All platform facts are
// explicit fields so tests can supply synthetic environments; candidates
// are recomputed on every call since the environment may change between
// calls.
type Resolver struct {
	Override     string
	ForceDesktop bool
	AppDir       string
	HomeDir      string
	WorkDir      string
	Getenv       func(string) string
	Log          zerolog.Logger
}

// NewResolver builds a resolver from the live process environment.
func NewResolver(override string, forceDesktop bool, log zerolog.Logger) *Resolver {
	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	return &Resolver{
		Override:     override,
		ForceDesktop: forceDesktop,
		AppDir:       DefaultAppDir,
		HomeDir:      home,
		WorkDir:      cwd,
		Getenv:       os.Getenv,
		Log:          log,
	}
}

// Resolve returns an existing, writable directory. It degrades through the
// candidate chain and only fails when the guaranteed last resort (an
// "output" subdirectory of the working directory) cannot be created.
func (r *Resolver) Resolve() (string, error) {
	for _, c := range r.Candidates() {
		if c.Dir == "" {
			continue
		}
		if r.writable(c.Dir) {
			r.Log.Debug().Str("dir", c.Dir).Str("reason", string(c.Reason)).Msg("output directory selected")
			return c.Dir, nil
		}
		r.Log.Debug().Str("dir", c.Dir).Str("reason", string(c.Reason)).Msg("output candidate not writable, falling back")
	}

	last := r.lastResort()
	if err := os.MkdirAll(last, 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to create output directory %s", last), err)
	}
	r.Log.Debug().Str("dir", last).Str("reason", string(ReasonWorkdir)).Msg("output directory selected")
	return last, nil
}

// Candidates returns the prioritized list, excluding the guaranteed last
// resort. ForceDesktop promotes the desktop candidate ahead of the
// explicit override.
func (r *Resolver) Candidates() []Candidate {
	app := r.AppDir
	if app == "" {
		app = DefaultAppDir
	}

	var list []Candidate
	desktop := Candidate{Reason: ReasonDesktop}
	if d := r.desktopDir(); d != "" {
		desktop.Dir = filepath.Join(d, app)
	}
	override := Candidate{Dir: r.Override, Reason: ReasonOverride}

	if r.ForceDesktop {
		list = append(list, desktop, override)
	} else {
		list = append(list, override, desktop)
	}
	if d := r.documentsDir(); d != "" {
		list = append(list, Candidate{Dir: filepath.Join(d, app), Reason: ReasonDocuments})
	}
	if r.HomeDir != "" {
		list = append(list, Candidate{Dir: filepath.Join(r.HomeDir, app), Reason: ReasonHome})
	}
	return list
}

func (r *Resolver) lastResort() string {
	work := r.WorkDir
	if work == "" {
		work = "."
	}
	return filepath.Join(work, "output")
}

// writable reports whether dir can receive files. A missing directory that
// can be created counts as writable; an existing one must survive a probe
// write. The probe name is collision-resistant so concurrent resolutions
// against the same directory stay safe.
func (r *Resolver) writable(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return false
		}
		return os.MkdirAll(dir, 0o755) == nil
	}
	if !info.IsDir() {
		return false
	}

	probe := filepath.Join(dir, fmt.Sprintf(".paintbox-probe-%s", uuid.NewString()))
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(probe)
	return true
}

func (r *Resolver) getenv(key string) string {
	if r.Getenv == nil {
		return ""
	}
	return r.Getenv(key)
}

// expandUserDir handles the $HOME-relative form used by xdg user-dirs
// entries.
func (r *Resolver) expandUserDir(value string) string {
	value = strings.Trim(strings.TrimSpace(value), `"`)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "$HOME/") {
		return filepath.Join(r.HomeDir, value[len("$HOME/"):])
	}
	if value == "$HOME" {
		return r.HomeDir
	}
	return value
}
