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

package tools

type readFileArgs struct {
	Path string `json:"path" jsonschema:"description=File path to read"`
}

type writeFileArgs struct {
	Path    string `json:"path" jsonschema:"description=File path to write"`
	Content string `json:"content" jsonschema:"description=Content to write"`
}

type listDirectoryArgs struct {
	Path       string `json:"path,omitempty" jsonschema:"description=Directory path to list (default: current directory)"`
	ShowHidden bool   `json:"show_hidden,omitempty" jsonschema:"description=Include hidden files"`
}

type createDirectoryArgs struct {
	Path string `json:"path" jsonschema:"description=Directory path to create (parents are created as needed)"`
}

type searchFilesArgs struct {
	Path            string   `json:"path" jsonschema:"description=Root directory to search"`
	Pattern         string   `json:"pattern" jsonschema:"description=Glob matched against file names (case-insensitive)"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" jsonschema:"description=Globs matched against paths relative to the root; a bare name excludes that subtree"`
}

type listAllowedDirectoriesArgs struct{}

type generateImageArgs struct {
	Prompt   string `json:"prompt" jsonschema:"description=Text description of the image to generate"`
	FileName string `json:"file_name,omitempty" jsonschema:"description=Base file name; a bare name gets a timestamp suffix"`
	Size     string `json:"size,omitempty" jsonschema:"description=Image size (e.g. 1024x1024)"`
	Quality  string `json:"quality,omitempty" jsonschema:"description=Image quality (standard or hd)"`
}
