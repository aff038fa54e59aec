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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/constraintbench/pkg/ux"
	"github.com/AleutianAI/constraintbench/services/constraints"
	"github.com/AleutianAI/constraintbench/services/harness"
	"github.com/AleutianAI/constraintbench/services/llm"
	"github.com/AleutianAI/constraintbench/services/smt"
)

func runGenerate(cmd *cobra.Command, _ []string) error {
	strategy := harness.Strategy(flagStrategy)
	if strategy != harness.StrategyLLM && strategy != harness.StrategySMT {
		return fmt.Errorf("invalid --strategy %q (want llm or smt)", flagStrategy)
	}
	mode, err := harness.ParseEnumMode(flagEnumeration)
	if err != nil {
		return err
	}
	if flagSMTSolver != "z3" {
		return fmt.Errorf("unsupported --smt-solver %q (only z3 is wired)", flagSMTSolver)
	}

	store, err := constraints.Load(flagConstraints)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(flagOutput, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var gen *harness.Generator
	if strategy == harness.StrategyLLM {
		client, err := llm.NewClient(flagLLMFamily, flagLLM)
		if err != nil {
			return err
		}
		gen = harness.NewGenerator(client, harness.GeneratorConfig{
			MaxParseRetries: flagMaxParseRetries,
			UseVariableName: flagUseVariableName,
		})
	}
	solver := smt.NewZ3Solver(flagSolverTimeout)

	driver := harness.NewDriver(store, gen, solver, mode)
	driver.Progress = func(name string, done, total int) {
		ux.Progress("evaluating "+name, done, total)
	}

	ux.Title(fmt.Sprintf("Generating values for %d variables (%s, %s enumeration)",
		len(store.Names()), strategy, mode))
	started := time.Now()

	results, err := driver.EvaluateAll(cmd.Context(), strategy)
	if err != nil {
		return err
	}

	csvPath := filepath.Join(flagOutput, outputFileName(strategy))
	if err := harness.WriteGenerationCSV(csvPath, results); err != nil {
		return err
	}
	meta := harness.RunMeta{
		RunID:       harness.NewRunID(),
		Strategy:    string(strategy),
		Model:       flagLLM,
		Enumeration: mode.String(),
		Anonymized:  strategy == harness.StrategyLLM && !flagUseVariableName,
		StartedAt:   started,
		FinishedAt:  time.Now(),
		NumRecords:  len(results),
	}
	if strategy == harness.StrategySMT {
		meta.Model = ""
		meta.SMTSolver = flagSMTSolver
	}
	if err := harness.WriteRunMeta(csvPath, meta); err != nil {
		return err
	}

	slog.Info("Generation run finished", "records", len(results), "output", csvPath)
	ux.Success(fmt.Sprintf("Wrote %d records to %s", len(results), csvPath))
	return nil
}

// outputFileName mirrors the result naming convention used across prior
// runs: <solver>.csv for the SMT path, <model>.csv for the LLM path, with
// a _no_name suffix when the variable name was anonymized. Colons in model
// names are not filesystem-friendly and become dashes.
func outputFileName(strategy harness.Strategy) string {
	if strategy == harness.StrategySMT {
		return flagSMTSolver + ".csv"
	}
	model := flagLLM
	if model == "" {
		model = flagLLMFamily + "-default"
	}
	model = strings.ReplaceAll(model, ":", "-")
	if flagUseVariableName {
		return model + ".csv"
	}
	return model + "_no_name.csv"
}
