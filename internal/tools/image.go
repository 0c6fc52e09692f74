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

import (
	"context"
	"fmt"

	"paintbox/internal/imagegen"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *Handler) handleGenerateImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	genReq := imagegen.Request{
		Prompt:  prompt,
		Size:    req.GetString("size", ""),
		Quality: req.GetString("quality", ""),
	}
	name := req.GetString("file_name", "")

	result, err := h.Images.Generate(ctx, genReq, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := fmt.Sprintf("Image saved to %s", result.ImagePath)
	if result.PreviewPath != "" {
		msg += fmt.Sprintf("\nPreview saved to %s", result.PreviewPath)
	}
	return mcp.NewToolResultText(msg), nil
}
