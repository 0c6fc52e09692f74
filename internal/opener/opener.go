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

// Package opener launches the platform file viewer as a UX nicety. It is
// the only component that shells out, and it never fails the caller: all
// launch errors end up in the log and nowhere else.
package opener

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
)

// Opener invokes a platform-specific viewer command, best effort.
type Opener struct {
	Log    zerolog.Logger
	GOOS   string
	Getenv func(string) string

	// run is swappable for tests; defaults to starting the command
	// without waiting for it.
	run func(name string, args ...string) error
}

// New builds an opener for the hosting OS.
func New(log zerolog.Logger) *Opener {
	return &Opener{
		Log:    log,
		GOOS:   runtime.GOOS,
		Getenv: os.Getenv,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Open shows path in the platform viewer. Headless hosts are skipped and
// every failure is swallowed after a diagnostic log entry.
func (o *Opener) Open(path string) {
	if o.headless() {
		o.Log.Debug().Str("path", path).Msg("no display available, skipping viewer")
		return
	}
	name, args, ok := o.command(path)
	if !ok {
		o.Log.Debug().Str("goos", o.GOOS).Msg("no viewer command for platform")
		return
	}
	if err := o.run(name, args...); err != nil {
		o.Log.Debug().Err(err).Str("path", path).Msg("viewer launch failed")
	}
}

// headless reports whether there is no display to open a viewer on. The
// desktop GUI platforms are assumed to always have one.
func (o *Opener) headless() bool {
	switch o.GOOS {
	case "darwin", "windows":
		return false
	}
	return o.Getenv("DISPLAY") == "" && o.Getenv("WAYLAND_DISPLAY") == ""
}

func (o *Opener) command(path string) (string, []string, bool) {
	switch o.GOOS {
	case "darwin":
		return "open", []string{path}, true
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, true
	default:
		return "xdg-open", []string{path}, true
	}
}
