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
	"encoding/base64"

	apperrors "paintbox/internal/errors"

	openai "github.com/sashabaranov/go-openai"
)

// Request describes one image-generation call.
type Request struct {
	Prompt  string
	Size    string
	Quality string
}

// Client produces raw image bytes for a request. Narrow on purpose so
// tests can substitute a mock.
type Client interface {
	GenerateImage(ctx context.Context, req Request) ([]byte, error)
}

// OpenAIClient calls the OpenAI images API and decodes the base64 payload.
type OpenAIClient struct {
	api   *openai.Client
	model string
}

// NewOpenAIClient builds a client for the given credentials. An empty
// apiURL keeps the library default endpoint.
func NewOpenAIClient(apiKey, apiURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAIClient{api: openai.NewClientWithConfig(cfg), model: model}
}

// GenerateImage implements Client. Upstream failures and empty payloads
// are reported with the upstream error code and propagated unchanged.
func (c *OpenAIClient) GenerateImage(ctx context.Context, req Request) ([]byte, error) {
	apiReq := openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          c.model,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}
	if req.Size != "" {
		apiReq.Size = req.Size
	}
	if req.Quality != "" {
		apiReq.Quality = req.Quality
	}

	resp, err := c.api.CreateImage(ctx, apiReq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstream, "image generation request failed", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, apperrors.New(apperrors.CodeUpstream, "image generation returned no usable data")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstream, "failed to decode image payload", err)
	}
	return data, nil
}
