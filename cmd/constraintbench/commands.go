// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	flagConstraints     string
	flagOutput          string
	flagStrategy        string
	flagLLMFamily       string
	flagLLM             string
	flagUseVariableName bool
	flagSMTSolver       string
	flagEnumeration     string
	flagSolverTimeout   time.Duration
	flagMaxParseRetries int
	flagInput           string
)

var rootCmd = &cobra.Command{
	Use:   "constraintbench",
	Short: "Compare LLM and SMT string generation against variable constraints",
	Long: `constraintbench generates string values that satisfy (or deliberately
violate a chosen subset of) a named variable's declared constraints, via an
LLM or an SMT solver, and cross-checks recorded results through the solver.`,
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a value per (variable, truth mask) combination",
	RunE:  runGenerate,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Re-check previously generated results against the SMT solver",
	RunE:  runValidate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConstraints, "constraints", "",
		"Path to the YAML constraint definition file")
	rootCmd.PersistentFlags().StringVar(&flagSMTSolver, "smt-solver", "z3",
		"SMT solver to use (z3)")
	rootCmd.PersistentFlags().DurationVar(&flagSolverTimeout, "solver-timeout", 60*time.Second,
		"Per-query SMT solver timeout")
	_ = rootCmd.MarkPersistentFlagRequired("constraints")

	generateCmd.Flags().StringVar(&flagOutput, "output", "",
		"Directory for the result CSV")
	generateCmd.Flags().StringVar(&flagStrategy, "strategy", "llm",
		"Generation strategy (llm or smt)")
	generateCmd.Flags().StringVar(&flagLLMFamily, "llm-family", "openai",
		"LLM backend family (openai or ollama)")
	generateCmd.Flags().StringVar(&flagLLM, "llm", "",
		"Model name for the LLM strategy")
	generateCmd.Flags().BoolVar(&flagUseVariableName, "use-variable-name", false,
		"Expose the real variable name to the model instead of a placeholder")
	generateCmd.Flags().StringVar(&flagEnumeration, "enumeration", "sweep",
		"Truth mask enumeration (sweep or exhaustive)")
	generateCmd.Flags().IntVar(&flagMaxParseRetries, "max-parse-retries", 0,
		"Prompt retry budget per mask on malformed model output (0 = default)")
	_ = generateCmd.MarkFlagRequired("output")

	validateCmd.Flags().StringVar(&flagInput, "input", "",
		"Generation CSV to re-check")
	_ = validateCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
}
