// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/dutydesk/dutydesk/lib/llm"
	"github.com/dutydesk/dutydesk/workflow"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4000
)

// Config customizes an Extractor. Zero values select working
// defaults; only Provider is required.
type Config struct {
	// Provider performs the model call.
	Provider llm.Provider

	// Model overrides the default model identifier.
	Model string

	// MaxTokens caps the model's output.
	MaxTokens int

	// Timeout bounds a single extraction call. Zero means no
	// deadline beyond the caller's context.
	Timeout time.Duration

	// Logger receives per-call diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Extractor implements workflow.Extractor on top of a vision-capable
// model provider.
type Extractor struct {
	provider  llm.Provider
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *slog.Logger
}

var _ workflow.Extractor = (*Extractor)(nil)

// New creates an Extractor from config.
func New(config Config) (*Extractor, error) {
	if config.Provider == nil {
		return nil, fmt.Errorf("extraction: provider is required")
	}
	extractor := &Extractor{
		provider:  config.Provider,
		model:     config.Model,
		maxTokens: config.MaxTokens,
		timeout:   config.Timeout,
		logger:    config.Logger,
	}
	if extractor.model == "" {
		extractor.model = defaultModel
	}
	if extractor.maxTokens <= 0 {
		extractor.maxTokens = defaultMaxTokens
	}
	if extractor.logger == nil {
		extractor.logger = slog.Default()
	}
	return extractor, nil
}

// Extract sends the JPEG images to the model and parses its reply
// into shipment drafts. Each image is followed by a position marker
// so the model can report which pages belong to which shipment.
func (extractor *Extractor) Extract(ctx context.Context, images [][]byte) ([]workflow.Draft, error) {
	if extractor.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, extractor.timeout)
		defer cancel()
	}

	blocks := make([]llm.ContentBlock, 0, 2*len(images)+1)
	for i, image := range images {
		encoded := base64.StdEncoding.EncodeToString(image)
		blocks = append(blocks,
			llm.ImageBlock("image/jpeg", encoded),
			llm.TextBlock(fmt.Sprintf("[Фото %d из %d]", i+1, len(images))),
		)
	}
	blocks = append(blocks, llm.TextBlock(buildPrompt(len(images))))

	started := time.Now()
	response, err := extractor.provider.Complete(ctx, llm.Request{
		Model:     extractor.model,
		MaxTokens: extractor.maxTokens,
		Messages:  []llm.Message{llm.UserMessage(blocks...)},
	})
	if err != nil {
		extractor.logger.Error("extraction call failed",
			"model", extractor.model,
			"images", len(images),
			"error", err)
		return nil, &Error{Reason: ReasonProvider, Err: err}
	}

	drafts, err := parseDrafts(response.TextContent())
	if err != nil {
		extractor.logger.Error("extraction output unusable",
			"model", extractor.model,
			"stop_reason", response.StopReason,
			"error", err)
		return nil, &Error{Reason: ReasonMalformed, Err: err}
	}

	extractor.logger.Info("extraction complete",
		"model", extractor.model,
		"images", len(images),
		"shipments", len(drafts),
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return drafts, nil
}
