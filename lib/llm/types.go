// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package llm

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentType discriminates the variants of a ContentBlock.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
)

// ContentBlock is one element of a message's content. Exactly one of
// the variant fields is populated, selected by Type.
type ContentBlock struct {
	Type ContentType

	// Text is the text content when Type is ContentText.
	Text string

	// Image is the image content when Type is ContentImage.
	Image *ImageSource
}

// ImageSource is a base64-encoded image payload.
type ImageSource struct {
	// MediaType is the MIME type (e.g., "image/jpeg").
	MediaType string

	// Data is the base64-encoded image bytes.
	Data string
}

// TextBlock creates a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentText, Text: text}
}

// ImageBlock creates a base64 image content block.
func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{
		Type:  ContentImage,
		Image: &ImageSource{MediaType: mediaType, Data: data},
	}
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// UserMessage creates a user message from content blocks.
func UserMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleUser, Content: blocks}
}

// Request is a provider-neutral completion request.
type Request struct {
	// Model is the provider's model identifier.
	Model string

	// MaxTokens is the maximum number of output tokens.
	MaxTokens int

	// System is the optional system prompt.
	System string

	// Messages is the conversation, oldest first.
	Messages []Message

	// Temperature overrides the provider default when non-nil.
	Temperature *float64
}

// StopReason explains why the model stopped generating.
type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonMaxTokens StopReason = "max_tokens"
)

// Usage reports token accounting for a completed request.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Response is a provider-neutral completion response.
type Response struct {
	Content    []ContentBlock
	StopReason StopReason
	Model      string
	Usage      Usage
}

// TextContent concatenates all text blocks in the response. Non-text
// blocks are skipped.
func (response *Response) TextContent() string {
	var text string
	for _, block := range response.Content {
		if block.Type == ContentText {
			text += block.Text
		}
	}
	return text
}
