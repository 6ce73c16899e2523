// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm provides a minimal client abstraction for LLM vision
// APIs. The [Provider] interface has a single blocking operation,
// [Provider.Complete]; Dutydesk's only LLM use is a one-shot document
// extraction call, so there is no streaming surface.
//
// The common types ([Request], [Message], [ContentBlock]) are
// provider-neutral. [Anthropic] implements Provider against the
// Anthropic Messages API, translating to and from its wire format.
// Images travel as base64 content blocks interleaved with text.
//
// API errors are returned as [*ProviderError] with the HTTP status
// code and the provider's error type string, extractable with
// errors.As.
package llm
