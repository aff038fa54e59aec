// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/constraintbench/services/llm"
)

// ErrUngenerable marks a variable/mask pair for which the model never
// produced a parseable structured answer within the retry budget.
var ErrUngenerable = errors.New("no well-formed answer within retry budget")

// DefaultMaxParseRetries bounds the prompt round-trips spent on one
// (variable, mask) pair before giving up.
const DefaultMaxParseRetries = 10

const defaultMaxTokens = 500

// GeneratorConfig tunes the LLM generation adapter.
type GeneratorConfig struct {
	// MaxParseRetries is the prompt round-trip budget per generation.
	// Zero means DefaultMaxParseRetries.
	MaxParseRetries int
	// UseVariableName controls whether the real variable name reaches the
	// model. When false, constraints are anonymized and the prompt is
	// issued under a neutral placeholder.
	UseVariableName bool
}

// Generator wraps one prompt round-trip against an LLM: it renders the
// constraint list into the prompt, invokes the model, and parses the
// structured response, retrying on malformed output up to the configured
// budget.
type Generator struct {
	client llm.LLMClient
	prompt *PromptBuilder
	cfg    GeneratorConfig
}

// NewGenerator builds a Generator on top of any LLM backend.
func NewGenerator(client llm.LLMClient, cfg GeneratorConfig) *Generator {
	if cfg.MaxParseRetries <= 0 {
		cfg.MaxParseRetries = DefaultMaxParseRetries
	}
	return &Generator{
		client: client,
		prompt: NewPromptBuilder(),
		cfg:    cfg,
	}
}

// Generate asks the model for a value satisfying all given constraint
// texts. It returns the tagged unsat Value when the model asserts no value
// exists, and ErrUngenerable when the retry budget is exhausted.
func (g *Generator) Generate(ctx context.Context, name string, constraintTexts []string) (Value, error) {
	if !g.cfg.UseVariableName {
		constraintTexts = Anonymize(name, constraintTexts)
		name = AnonymousName
	}

	prompt, err := g.prompt.Build(name, constraintTexts)
	if err != nil {
		return Value{}, err
	}

	maxTokens := defaultMaxTokens
	params := llm.GenerationParams{MaxTokens: &maxTokens}

	for attempt := 1; attempt <= g.cfg.MaxParseRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Value{}, err
		}
		raw, err := g.client.Generate(ctx, prompt, params)
		if err != nil {
			return Value{}, fmt.Errorf("LLM call failed for %q: %w", name, err)
		}
		val, err := ParseAnswer(raw)
		if err != nil {
			slog.Warn("Malformed model answer, retrying",
				"name", name, "attempt", attempt, "error", err)
			continue
		}
		return val, nil
	}
	return Value{}, fmt.Errorf("variable %q: %w after %d attempts",
		name, ErrUngenerable, g.cfg.MaxParseRetries)
}
