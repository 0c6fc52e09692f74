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

package imagegen

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "paintbox/internal/errors"
	"paintbox/internal/opener"
	"paintbox/internal/outdir"

	"github.com/rs/zerolog"
)

// timestampLayout yields lexicographically sortable file name suffixes.
const timestampLayout = "20060102-150405"

// Result reports where the generated artifacts were written.
type Result struct {
	ImagePath   string
	PreviewPath string
}

// Workflow runs the whole image-save pipeline: generate, pick an output
// directory, write the artifact and its preview, and hand the file to the
// viewer. The output directory comes from the resolver, never from the
// caller, so the path sandbox is not involved.
type Workflow struct {
	Client   Client
	Resolver *outdir.Resolver
	Opener   *opener.Opener
	Log      zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewWorkflow wires the production pipeline.
func NewWorkflow(client Client, resolver *outdir.Resolver, op *opener.Opener, log zerolog.Logger) *Workflow {
	return &Workflow{Client: client, Resolver: resolver, Opener: op, Log: log, now: time.Now}
}

// Generate produces an image for req and saves it under the name base.
// Preview and viewer failures are logged, never returned.
func (w *Workflow) Generate(ctx context.Context, req Request, name string) (Result, error) {
	data, err := w.Client.GenerateImage(ctx, req)
	if err != nil {
		return Result{}, err
	}

	dir, err := w.Resolver.Resolve()
	if err != nil {
		return Result{}, err
	}

	clock := w.now
	if clock == nil {
		clock = time.Now
	}
	fileName := ArtifactName(name, clock())
	imagePath := filepath.Join(dir, fileName)
	if err := os.WriteFile(imagePath, data, 0o644); err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to write image %s", imagePath), err)
	}
	w.Log.Info().Str("path", imagePath).Int("bytes", len(data)).Msg("image saved")

	result := Result{ImagePath: imagePath}
	previewPath := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".html"
	if err := os.WriteFile(previewPath, []byte(previewHTML(fileName, req.Prompt)), 0o644); err != nil {
		w.Log.Warn().Err(err).Str("path", previewPath).Msg("failed to write preview")
	} else {
		result.PreviewPath = previewPath
	}

	if w.Opener != nil {
		w.Opener.Open(imagePath)
	}
	return result, nil
}

// ArtifactName sanitizes a requested file name down to a safe base name.
// A bare name (no extension) gets a sortable timestamp suffix and the
// .png extension; an empty name becomes "image".
func ArtifactName(name string, now time.Time) string {
	base := sanitizeBaseName(name)
	if base == "" {
		base = "image"
	}
	ext := filepath.Ext(base)
	if ext != "" {
		return base
	}
	return fmt.Sprintf("%s-%s.png", base, now.Format(timestampLayout))
}

func sanitizeBaseName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := filepath.Base(filepath.Clean(strings.ReplaceAll(name, "\\", "/")))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), ".")
}

// previewHTML renders a small standalone document referencing the image
// by file name so the pair can be moved together.
func previewHTML(fileName, prompt string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>body{margin:0;background:#111;display:flex;flex-direction:column;align-items:center;font-family:sans-serif;color:#ddd}img{max-width:100%%;margin-top:1em}p{max-width:60em;padding:0 1em}</style>
</head>
<body>
<img src="%s" alt="%s">
<p>%s</p>
</body>
</html>
`, html.EscapeString(fileName), html.EscapeString(fileName), html.EscapeString(prompt), html.EscapeString(prompt))
}
