// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// anthropicTestServer creates a test HTTP server and returns an
// Anthropic provider connected to it.
func anthropicTestServer(t *testing.T, handler http.Handler) *Anthropic {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewAnthropic(AnthropicConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewAnthropic failed: %v", err)
	}
	return provider
}

func TestAnthropicComplete(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/messages", func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			http.NotFound(writer, request)
			return
		}
		if request.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing x-api-key header")
		}
		if request.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}

		var wireRequest struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content []struct {
					Type   string `json:"type"`
					Text   string `json:"text"`
					Source *struct {
						Type      string `json:"type"`
						MediaType string `json:"media_type"`
						Data      string `json:"data"`
					} `json:"source"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(request.Body).Decode(&wireRequest); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if wireRequest.Model != "claude-sonnet-4-20250514" {
			t.Errorf("unexpected model: %s", wireRequest.Model)
		}
		if len(wireRequest.Messages) != 1 {
			t.Fatalf("expected 1 message, got %d", len(wireRequest.Messages))
		}
		content := wireRequest.Messages[0].Content
		if len(content) != 2 {
			t.Fatalf("expected 2 content blocks, got %d", len(content))
		}
		if content[0].Type != "image" || content[0].Source == nil {
			t.Errorf("expected base64 image block first, got %+v", content[0])
		} else {
			if content[0].Source.Type != "base64" {
				t.Errorf("unexpected image source type: %s", content[0].Source.Type)
			}
			if content[0].Source.MediaType != "image/jpeg" {
				t.Errorf("unexpected media type: %s", content[0].Source.MediaType)
			}
		}
		if content[1].Type != "text" || content[1].Text != "describe" {
			t.Errorf("unexpected text block: %+v", content[1])
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "a parcel invoice"}],
			"model": "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 100, "output_tokens": 10}
		}`))
	})

	provider := anthropicTestServer(t, mux)
	response, err := provider.Complete(context.Background(), Request{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 1024,
		Messages: []Message{
			UserMessage(
				ImageBlock("image/jpeg", "aGVsbG8="),
				TextBlock("describe"),
			),
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if response.TextContent() != "a parcel invoice" {
		t.Errorf("unexpected text content: %q", response.TextContent())
	}
	if response.StopReason != StopReasonEndTurn {
		t.Errorf("unexpected stop reason: %s", response.StopReason)
	}
	if response.Usage.InputTokens != 100 || response.Usage.OutputTokens != 10 {
		t.Errorf("unexpected usage: %+v", response.Usage)
	}
}

func TestAnthropicCompleteProviderError(t *testing.T) {
	t.Parallel()

	provider := anthropicTestServer(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusTooManyRequests)
		writer.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))

	_, err := provider.Complete(context.Background(), Request{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 16,
		Messages:  []Message{UserMessage(TextBlock("hi"))},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if providerErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("unexpected status: %d", providerErr.StatusCode)
	}
	if providerErr.Type != "rate_limit_error" {
		t.Errorf("unexpected type: %s", providerErr.Type)
	}
	if !providerErr.IsRateLimited() {
		t.Error("expected IsRateLimited")
	}
}

func TestAnthropicCompleteNonJSONError(t *testing.T) {
	t.Parallel()

	provider := anthropicTestServer(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadGateway)
		writer.Write([]byte("upstream exploded"))
	}))

	_, err := provider.Complete(context.Background(), Request{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 16,
		Messages:  []Message{UserMessage(TextBlock("hi"))},
	})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if providerErr.StatusCode != http.StatusBadGateway {
		t.Errorf("unexpected status: %d", providerErr.StatusCode)
	}
	if providerErr.Message != "upstream exploded" {
		t.Errorf("unexpected message: %q", providerErr.Message)
	}
}

func TestAnthropicCompleteMalformedSuccessBody(t *testing.T) {
	t.Parallel()

	provider := anthropicTestServer(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
		writer.Write([]byte("not json"))
	}))

	_, err := provider.Complete(context.Background(), Request{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 16,
		Messages:  []Message{UserMessage(TextBlock("hi"))},
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "decoding response") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewAnthropicRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewAnthropic(AnthropicConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
}
