// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command constraintbench compares string-value generation strategies
// against a variable's declared constraints.
//
// For every variable in a constraint file it enumerates truth masks over
// the constraint set (all-true plus single flips, or the full power set),
// asks either an LLM or an SMT solver for a value matching each masked
// conjunction, and records the outcomes as CSV. A separate validate pass
// re-derives ground truth for recorded results through the solver.
//
// Usage:
//
//	constraintbench generate --constraints vars.yaml --output results --strategy smt
//	constraintbench generate --constraints vars.yaml --output results --strategy llm --llm-family ollama --llm qwen2:7b
//	constraintbench validate --constraints vars.yaml --input results/z3.csv
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
