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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/constraintbench/pkg/ux"
	"github.com/AleutianAI/constraintbench/services/constraints"
	"github.com/AleutianAI/constraintbench/services/harness"
	"github.com/AleutianAI/constraintbench/services/smt"
)

func runValidate(cmd *cobra.Command, _ []string) error {
	if flagSMTSolver != "z3" {
		return fmt.Errorf("unsupported --smt-solver %q (only z3 is wired)", flagSMTSolver)
	}

	store, err := constraints.Load(flagConstraints)
	if err != nil {
		return err
	}
	prior, err := harness.ReadGenerationCSV(flagInput)
	if err != nil {
		return err
	}

	validator := harness.NewValidator(store, smt.NewZ3Solver(flagSolverTimeout))
	validator.Progress = func(name string, done, total int) {
		ux.Progress("validating "+name, done, total)
	}

	ux.Title(fmt.Sprintf("Validating %d records from %s", len(prior), flagInput))
	results, err := validator.ValidateAll(cmd.Context(), prior)
	if err != nil {
		return err
	}

	var valid, invalid, inconclusive int
	for _, r := range results {
		switch r.Validity {
		case harness.ValidityValid:
			valid++
		case harness.ValidityInvalid:
			invalid++
		default:
			inconclusive++
		}
	}

	base := flagInput[:len(flagInput)-len(filepath.Ext(flagInput))]
	outPath := base + "_validated.csv"
	if err := harness.WriteValidationCSV(outPath, results); err != nil {
		return err
	}

	slog.Info("Validation run finished", "records", len(results),
		"valid", valid, "invalid", invalid, "inconclusive", inconclusive)
	ux.Success(fmt.Sprintf("Wrote %d records to %s", len(results), outPath))
	ux.Info(fmt.Sprintf("valid: %d  invalid: %d  inconclusive: %d", valid, invalid, inconclusive))
	return nil
}
