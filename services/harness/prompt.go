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
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

// UnsatSentinel is the prompt-protocol token the model is told to answer
// when no value can satisfy the constraint conjunction. It exists only at
// the LLM boundary; internally results carry the tagged Value type.
const UnsatSentinel = "UNSAT"

// AnonymousName is the neutral placeholder used when variable-name
// anonymization is on, isolating constraint reasoning from semantic name
// leakage.
const AnonymousName = "x"

const promptText = `You are a test engineer working on creating test data for a new feature. You are given a variable "{{.name}}" with some associated constraints.

First, explain the meaning of each constraint. Then think step by step to find a string value for "{{.name}}" that satisfies ALL following constraints:
{{.constraints}}
If the word "{{.name}}" is meaningful, the value should be as realistic for "{{.name}}" as possible.

The output should follow the following format. If no value can satisfy all constraints, assign the value "{{.sentinel}}":
{{.output_format}}

Keep the results concise. If the answer is not correct, then you will be fired from your job.
`

const formatInstructions = "After your explanation, answer with a JSON object (a ```json fenced block is fine):\n" +
	`{"value": "<the string value that satisfies the constraints>"}`

// PromptBuilder renders the generation prompt for one variable and its
// constraint list.
type PromptBuilder struct {
	template prompts.PromptTemplate
}

// NewPromptBuilder constructs the shared prompt template.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		template: prompts.PromptTemplate{
			Template:       promptText,
			InputVariables: []string{"name", "constraints"},
			PartialVariables: map[string]any{
				"sentinel":      UnsatSentinel,
				"output_format": formatInstructions,
			},
			TemplateFormat: prompts.TemplateFormatGoTemplate,
		},
	}
}

// Build renders the prompt with the newline-joined constraint list.
func (p *PromptBuilder) Build(name string, constraintTexts []string) (string, error) {
	out, err := p.template.Format(map[string]any{
		"name":        name,
		"constraints": strings.Join(constraintTexts, "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt for %q: %w", name, err)
	}
	return out, nil
}

// Anonymize rewrites constraints to hide the variable name: every
// case-folded occurrence of the name is replaced by AnonymousName. The
// prompt is then issued under AnonymousName as well.
func Anonymize(name string, constraintTexts []string) []string {
	folded := strings.ToLower(name)
	out := make([]string, len(constraintTexts))
	for i, c := range constraintTexts {
		out[i] = strings.ReplaceAll(c, folded, AnonymousName)
	}
	return out
}
