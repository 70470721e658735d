// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// DefaultWorkersAIModel is the instruction model the blog was written with.
const DefaultWorkersAIModel = "@cf/meta/llama-4-scout-17b-16e-instruct"

// workersAIProvider implements the Provider interface using the Cloudflare
// Workers AI REST API (POST /accounts/{account}/ai/run/{model}).
type workersAIProvider struct {
	config ProviderConfig
	client *http.Client
}

// newWorkersAI creates a new Workers AI provider.
func newWorkersAI(cfg ProviderConfig) *workersAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloudflare.com/client/v4"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultWorkersAIModel
	}
	return &workersAIProvider{
		config: cfg,
		client: newHTTPClient(),
	}
}

func (p *workersAIProvider) Name() string { return "workersai" }

// Generate runs the model and returns its response. With a schema the
// service answers with a JSON object instead of a string; that object is
// returned verbatim as text.
func (p *workersAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	body := workersAIRequest{
		MaxTokens: req.MaxTokens,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, workersAIMessage{Role: m.Role, Content: m.Content})
	}
	if req.Schema != nil {
		body.ResponseFormat = &workersAIResponseFormat{
			Type:       "json_schema",
			JSONSchema: req.Schema,
		}
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s",
		strings.TrimRight(p.config.BaseURL, "/"), p.config.AccountID, p.config.Model)

	var result workersAIResponse
	headers := map[string]string{"Authorization": "Bearer " + p.config.APIKey}
	if err := postJSON(ctx, p.client, "workersai", url, headers, body, &result); err != nil {
		return "", err
	}

	if !result.Success {
		return "", fmt.Errorf("workersai: request failed: %s", result.errorMessages())
	}

	raw := bytes.TrimSpace(result.Result.Response)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("workersai: empty response")
	}

	// Free-text answers arrive as a JSON string.
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", fmt.Errorf("workersai decode text: %w", err)
		}
		return text, nil
	}
	return string(raw), nil
}

// --- Workers AI types ---

type workersAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type workersAIResponseFormat struct {
	Type       string  `json:"type"`
	JSONSchema *Schema `json:"json_schema"`
}

type workersAIRequest struct {
	Messages       []workersAIMessage       `json:"messages"`
	MaxTokens      int                      `json:"max_tokens,omitempty"`
	ResponseFormat *workersAIResponseFormat `json:"response_format,omitempty"`
}

type workersAIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type workersAIResponse struct {
	Result struct {
		Response json.RawMessage `json:"response"`
	} `json:"result"`
	Success bool             `json:"success"`
	Errors  []workersAIError `json:"errors"`
}

func (r workersAIResponse) errorMessages() string {
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%d %s", e.Code, e.Message))
	}
	if len(msgs) == 0 {
		return "unknown error"
	}
	return strings.Join(msgs, "; ")
}
