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
	"encoding/json"
	"fmt"
	"strings"
)

// structuredAnswer is the JSON shape the model is instructed to emit.
type structuredAnswer struct {
	Value *string `json:"value"`
}

// ParseAnswer extracts the structured answer from a raw model response.
//
// The response may be bare JSON or JSON inside a markdown code fence; models
// routinely wrap their answer in explanation text, so the fenced form is
// tried when the direct parse fails. The sentinel answer maps to the tagged
// unsat Value. A response with no parseable answer returns an error, on
// which the generation adapter retries.
func ParseAnswer(raw string) (Value, error) {
	var ans structuredAnswer
	if err := json.Unmarshal([]byte(raw), &ans); err == nil && ans.Value != nil {
		return tagAnswer(*ans.Value), nil
	}

	cleaned := extractFenced(raw)
	if cleaned != "" {
		if err := json.Unmarshal([]byte(cleaned), &ans); err == nil && ans.Value != nil {
			return tagAnswer(*ans.Value), nil
		}
	}

	// Last resort: the answer object may be embedded in prose without a
	// fence. Scan for the outermost braces.
	if start := strings.Index(raw, "{"); start != -1 {
		if end := strings.LastIndex(raw, "}"); end > start {
			if err := json.Unmarshal([]byte(raw[start:end+1]), &ans); err == nil && ans.Value != nil {
				return tagAnswer(*ans.Value), nil
			}
		}
	}

	return Value{}, fmt.Errorf("response contains no parseable answer object")
}

func tagAnswer(s string) Value {
	if s == UnsatSentinel {
		return UnsatValue()
	}
	return StringValue(s)
}

// extractFenced pulls the body of the first markdown code fence out of a
// response, preferring ```json fences.
func extractFenced(response string) string {
	startMarkers := []string{"```json\n", "```json\r\n", "```\n", "```\r\n"}
	const endMarker = "```"

	for _, startMarker := range startMarkers {
		startIdx := strings.Index(response, startMarker)
		if startIdx == -1 {
			continue
		}
		contentStart := startIdx + len(startMarker)
		remaining := response[contentStart:]
		endIdx := strings.Index(remaining, endMarker)
		if endIdx == -1 {
			continue
		}
		return strings.TrimSpace(remaining[:endIdx])
	}
	return ""
}
