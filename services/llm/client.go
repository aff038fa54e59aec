// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides thin clients for the LLM backends the harness can
// drive.
package llm

import (
	"context"
	"fmt"
)

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any LLM backend
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// NewClient constructs a backend client for the given family ("openai" or
// "ollama"). model may be empty, in which case the family's environment
// default applies.
func NewClient(family, model string) (LLMClient, error) {
	switch family {
	case "openai":
		return NewOpenAIClient(model)
	case "ollama":
		return NewOllamaClient(model)
	default:
		return nil, fmt.Errorf("unknown LLM family %q (want openai or ollama)", family)
	}
}
