// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package smt adapts the Z3 SMT solver for the harness. Every query builds
// a fresh context and solver, so no constraints leak between calls.
package smt

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	z3 "github.com/vhavlena/z3-go/z3"

	"github.com/AleutianAI/constraintbench/services/harness"
)

// DefaultTimeout bounds one solver call against pathological constraint
// sets.
const DefaultTimeout = 60 * time.Second

// Z3Solver implements harness.Solver over Z3's SMT-LIB2 frontend.
type Z3Solver struct {
	timeout time.Duration
}

// NewZ3Solver returns a solver adapter. A non-positive timeout selects
// DefaultTimeout.
func NewZ3Solver(timeout time.Duration) *Z3Solver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Z3Solver{timeout: timeout}
}

// Problem assembles the SMT-LIB2 problem unit: one string-typed constant
// declaration followed by the given constraint expressions.
func Problem(constraintTexts []string) string {
	parts := make([]string, 0, len(constraintTexts)+1)
	parts = append(parts, fmt.Sprintf("(declare-const %s String)", harness.SolverConstName))
	parts = append(parts, constraintTexts...)
	return strings.Join(parts, "\n")
}

// Solve checks satisfiability of the constraint conjunction and, when
// satisfiable, extracts the declared constant's model value as the witness.
//
// Timeouts and solver incompleteness surface as VerdictUnknown, not as
// errors; malformed solver syntax is an error and aborts the run.
func (s *Z3Solver) Solve(ctx context.Context, constraintTexts []string) (harness.Verdict, string, error) {
	if err := ctx.Err(); err != nil {
		return harness.VerdictUnknown, "", err
	}

	cfg := z3.NewConfig()
	defer cfg.Close()
	cfg.SetParam("timeout", strconv.FormatInt(s.timeout.Milliseconds(), 10))

	zctx := z3.NewContext(cfg)
	defer zctx.Close()

	solver := zctx.NewSolver()
	defer solver.Close()

	problem := Problem(constraintTexts)
	if err := solver.AssertSMTLIB2String(problem); err != nil {
		return harness.VerdictUnknown, "", fmt.Errorf("failed to load SMT problem: %w", err)
	}

	res, err := solver.Check()
	switch res {
	case z3.Sat:
		witness, err := s.witness(zctx, solver)
		if err != nil {
			return harness.VerdictSat, "", err
		}
		return harness.VerdictSat, witness, nil
	case z3.Unsat:
		return harness.VerdictUnsat, "", nil
	default:
		// Check reports the reason alongside Unknown; keep it out of the
		// result and in the log.
		if err != nil {
			slog.Debug("Solver returned unknown", "reason", err)
		}
		return harness.VerdictUnknown, "", nil
	}
}

func (s *Z3Solver) witness(zctx *z3.Context, solver *z3.Solver) (string, error) {
	model := solver.Model()
	if model == nil {
		return "", fmt.Errorf("solver reported sat but produced no model")
	}
	defer model.Close()

	decl, ok := zctx.ConstDecl(harness.SolverConstName)
	if !ok {
		return "", fmt.Errorf("declared constant %q missing from parsed problem", harness.SolverConstName)
	}
	val := model.Eval(decl, true)
	return harness.UnquoteSMTString(val.String()), nil
}
