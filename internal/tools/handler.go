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

// Package tools exposes the filesystem and image-generation tools over
// the MCP request/response protocol. Every path-taking handler authorizes
// its input through the sandbox before any I/O and acts only on the
// resolved path it gets back.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"paintbox/internal/imagegen"
	"paintbox/internal/paths"
	"paintbox/internal/search"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/u-root/u-root/pkg/core"
	corels "github.com/u-root/u-root/pkg/core/ls"
	coremkdir "github.com/u-root/u-root/pkg/core/mkdir"
)

// Handler holds the collaborators shared by all tool handlers. All state
// is read-only after construction, so independent requests may run in
// parallel.
type Handler struct {
	Sandbox *paths.Sandbox
	Search  *search.Engine
	Images  *imagegen.Workflow
	Limits  Limits
	Log     zerolog.Logger
}

// NewHandler wires a handler around an immutable sandbox.
func NewHandler(sandbox *paths.Sandbox, images *imagegen.Workflow, limits Limits, log zerolog.Logger) *Handler {
	limits = limits.Normalize()
	return &Handler{
		Sandbox: sandbox,
		Search: &search.Engine{
			Sandbox:    sandbox,
			MaxDepth:   limits.MaxDirectoryDepth,
			MaxEntries: limits.MaxDirectoryEntries,
		},
		Images:  images,
		Limits:  limits,
		Log:     log,
	}
}

// Register adds every tool to the MCP server. The image tool is only
// registered when an upstream client is configured.
func (h *Handler) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewToolWithRawSchema("read_file",
		"Read the contents of a file inside the allowed directories.",
		mustSchemaFor[readFileArgs]()), h.handleReadFile)
	s.AddTool(mcp.NewToolWithRawSchema("write_file",
		"Write content to a file inside the allowed directories, creating it if absent.",
		mustSchemaFor[writeFileArgs]()), h.handleWriteFile)
	s.AddTool(mcp.NewToolWithRawSchema("list_directory",
		"List the entries of a directory inside the allowed directories.",
		mustSchemaFor[listDirectoryArgs]()), h.handleListDirectory)
	s.AddTool(mcp.NewToolWithRawSchema("create_directory",
		"Create a directory (and parents) inside the allowed directories.",
		mustSchemaFor[createDirectoryArgs]()), h.handleCreateDirectory)
	s.AddTool(mcp.NewToolWithRawSchema("search_files",
		"Recursively search for files by name pattern inside the allowed directories.",
		mustSchemaFor[searchFilesArgs]()), h.handleSearchFiles)
	s.AddTool(mcp.NewToolWithRawSchema("list_allowed_directories",
		"List the directories this server is allowed to access.",
		mustSchemaFor[listAllowedDirectoriesArgs]()), h.handleListAllowedDirectories)
	if h.Images != nil {
		s.AddTool(mcp.NewToolWithRawSchema("generate_image",
			"Generate an image from a text prompt and save it to a local output directory.",
			mustSchemaFor[generateImageArgs]()), h.handleGenerateImage)
	}
}

func (h *Handler) handleReadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resolved, err := h.Sandbox.Authorize(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to stat file: %v", err)), nil
	}
	if info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("%s is a directory", resolved)), nil
	}
	if info.Size() > h.Limits.MaxFileSizeBytes {
		return mcp.NewToolResultError(fmt.Sprintf("file exceeds maximum size of %d bytes", h.Limits.MaxFileSizeBytes)), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read file: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *Handler) handleWriteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if int64(len(content)) > h.Limits.MaxFileSizeBytes {
		return mcp.NewToolResultError(fmt.Sprintf("content exceeds maximum size of %d bytes", h.Limits.MaxFileSizeBytes)), nil
	}
	resolved, err := h.Sandbox.Authorize(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write file: %v", err)), nil
	}
	h.Log.Debug().Str("path", resolved).Int("bytes", len(content)).Msg("file written")
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %d bytes to %s", len(content), resolved)), nil
}

func (h *Handler) handleListDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", ".")
	showHidden := req.GetBool("show_hidden", false)

	resolved, err := h.Sandbox.Authorize(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("path not found: %v", err)), nil
	}
	if !info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not a directory", resolved)), nil
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read directory: %v", err)), nil
	}
	if len(entries) > h.Limits.MaxDirectoryEntries {
		return mcp.NewToolResultError("directory entry limit exceeded"), nil
	}

	var cmdArgs []string
	if showHidden {
		cmdArgs = append(cmdArgs, "-a")
	}
	output, err := runCoreCommand(ctx, corels.New(), resolved, cmdArgs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list directory: %v", err)), nil
	}
	if strings.TrimSpace(output) == "" {
		return mcp.NewToolResultText("Directory is empty"), nil
	}
	return mcp.NewToolResultText(output), nil
}

func (h *Handler) handleCreateDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resolved, err := h.Sandbox.Authorize(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := runCoreCommand(ctx, coremkdir.New(), "", []string{"-p", resolved}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create directory: %v", err)), nil
	}
	h.Log.Debug().Str("path", resolved).Msg("directory created")
	return mcp.NewToolResultText(fmt.Sprintf("Created directory %s", resolved)), nil
}

func (h *Handler) handleSearchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	excludes := req.GetStringSlice("exclude_patterns", nil)

	resolved, err := h.Sandbox.Authorize(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches, err := h.Search.Search(ctx, resolved, pattern, excludes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("No matches found"), nil
	}
	return mcp.NewToolResultText(strings.Join(matches, "\n")), nil
}

func (h *Handler) handleListAllowedDirectories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(h.Sandbox.Roots(), "\n")), nil
}

// runCoreCommand executes a u-root core command and captures its output.
func runCoreCommand(ctx context.Context, cmd core.Command, workdir string, args []string) (string, error) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.SetIO(strings.NewReader(""), &stdout, &stderr)

	if workdir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %v", err)
		}
		workdir = cwd
	}
	cmd.SetWorkingDir(workdir)

	if err := cmd.RunContext(ctx, args...); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("%v: %s", err, errMsg)
		}
		return "", err
	}

	return stdout.String(), nil
}
