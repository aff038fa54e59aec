// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package smt

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/AleutianAI/constraintbench/services/harness"
)

const (
	agePositive    = "(assert (> (str.to_int s) 0))"
	agePositiveNeg = "(assert (not (> (str.to_int s) 0)))"
	ageMinor       = "(assert (< (str.to_int s) 18))"
	ageMinorNeg    = "(assert (not (< (str.to_int s) 18)))"
)

func TestProblemAssembly(t *testing.T) {
	got := Problem([]string{"(assert a)", "(assert b)"})
	expected := "(declare-const s String)\n(assert a)\n(assert b)"
	if got != expected {
		t.Errorf("got %q, expected %q", got, expected)
	}
}

func TestZ3Solver_AgeScenario(t *testing.T) {
	solver := NewZ3Solver(30 * time.Second)
	ctx := context.Background()

	// (T,T): any minor age works.
	verdict, witness, err := solver.Solve(ctx, []string{agePositive, ageMinor})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if verdict != harness.VerdictSat {
		t.Fatalf("all-true mask: got %v, expected sat", verdict)
	}
	n, err := strconv.Atoi(witness)
	if err != nil {
		t.Fatalf("witness %q is not numeric: %v", witness, err)
	}
	if n <= 0 || n >= 18 {
		t.Errorf("witness %d outside (0, 18)", n)
	}

	// (T,F): at least 18.
	verdict, witness, err = solver.Solve(ctx, []string{agePositive, ageMinorNeg})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if verdict != harness.VerdictSat {
		t.Fatalf("(T,F) mask: got %v, expected sat", verdict)
	}
	if n, err := strconv.Atoi(witness); err != nil || n < 18 {
		t.Errorf("witness %q should be >= 18 (err %v)", witness, err)
	}

	// (F,T): str.to_int maps non-numeric strings to -1, so the negated
	// first constraint is satisfiable.
	verdict, _, err = solver.Solve(ctx, []string{agePositiveNeg, ageMinor})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if verdict != harness.VerdictSat {
		t.Fatalf("(F,T) mask: got %v, expected sat", verdict)
	}

	// (F,F): <= 0 and >= 18 at once is impossible.
	verdict, _, err = solver.Solve(ctx, []string{agePositiveNeg, ageMinorNeg})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if verdict != harness.VerdictUnsat {
		t.Fatalf("(F,F) mask: got %v, expected unsat", verdict)
	}
}

func TestZ3Solver_Determinism(t *testing.T) {
	solver := NewZ3Solver(30 * time.Second)
	ctx := context.Background()
	constraintTexts := []string{agePositive, ageMinor}

	v1, w1, err := solver.Solve(ctx, constraintTexts)
	if err != nil {
		t.Fatalf("first solve: %v", err)
	}
	v2, w2, err := solver.Solve(ctx, constraintTexts)
	if err != nil {
		t.Fatalf("second solve: %v", err)
	}
	if v1 != v2 {
		t.Errorf("verdicts differ: %v vs %v", v1, v2)
	}
	if w1 != w2 {
		t.Errorf("witnesses differ: %q vs %q", w1, w2)
	}
}

func TestZ3Solver_WitnessSatisfiesConstraints(t *testing.T) {
	solver := NewZ3Solver(30 * time.Second)
	ctx := context.Background()
	constraintTexts := []string{"(assert (>= (str.len s) 3))", "(assert (str.prefixof \"ab\" s))"}

	verdict, witness, err := solver.Solve(ctx, constraintTexts)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if verdict != harness.VerdictSat {
		t.Fatalf("got %v, expected sat", verdict)
	}

	// Pin the witness back; the pinned set must still be satisfiable.
	pinned := append(constraintTexts, harness.PinAssertion(witness))
	verdict, _, err = solver.Solve(ctx, pinned)
	if err != nil {
		t.Fatalf("pinned solve: %v", err)
	}
	if verdict != harness.VerdictSat {
		t.Errorf("witness %q does not satisfy its own constraints", witness)
	}
}

func TestZ3Solver_EmbeddedQuoteEscaping(t *testing.T) {
	solver := NewZ3Solver(30 * time.Second)
	ctx := context.Background()
	value := `say "hi"`

	// A pinning assertion built from a quote-bearing value must load
	// without a solver-syntax parse error.
	verdict, witness, err := solver.Solve(ctx, []string{harness.PinAssertion(value)})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if verdict != harness.VerdictSat {
		t.Fatalf("got %v, expected sat", verdict)
	}
	if witness != value {
		t.Errorf("witness %q, expected %q", witness, value)
	}
}

func TestZ3Solver_MalformedInput(t *testing.T) {
	solver := NewZ3Solver(30 * time.Second)
	_, _, err := solver.Solve(context.Background(), []string{"(assert (this is not smtlib"})
	if err == nil {
		t.Fatal("expected an error for malformed solver syntax")
	}
}

func TestZ3Solver_EmptyConstraintSet(t *testing.T) {
	solver := NewZ3Solver(30 * time.Second)
	verdict, _, err := solver.Solve(context.Background(), nil)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if verdict != harness.VerdictSat {
		t.Errorf("bare declaration should be sat, got %v", verdict)
	}
}

// pairStore is a minimal constraint store for the end-to-end validation
// round trip.
type pairStore struct{}

func (pairStore) Names() []string { return []string{"age"} }

func (pairStore) NumConstraints(string) (int, error) { return 2, nil }

func (pairStore) NLConstraints(string, harness.TruthMask) ([]string, error) {
	return nil, fmt.Errorf("natural language not used here")
}

func (pairStore) SMTConstraints(_ string, mask harness.TruthMask) ([]string, error) {
	out := make([]string, 2)
	if mask[0] {
		out[0] = agePositive
	} else {
		out[0] = agePositiveNeg
	}
	if mask[1] {
		out[1] = ageMinor
	} else {
		out[1] = ageMinorNeg
	}
	return out, nil
}

func TestSolverPathSelfValidates(t *testing.T) {
	// Records produced by the solver itself must validate as valid, for
	// witnesses and for unsat claims alike.
	solver := NewZ3Solver(30 * time.Second)
	store := pairStore{}
	ctx := context.Background()

	driver := harness.NewDriver(store, nil, solver, harness.ModeExhaustive)
	results, err := driver.EvaluateAll(ctx, harness.StrategySMT)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d records, expected 4", len(results))
	}

	validator := harness.NewValidator(store, solver)
	validated, err := validator.ValidateAll(ctx, results)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	for _, r := range validated {
		if r.Verdict == harness.VerdictUnknown {
			continue
		}
		if r.Validity != harness.ValidityValid {
			t.Errorf("mask %s (value %q, verdict %v): validity %d, expected valid",
				harness.FormatMask(r.Mask), r.Value.String(), r.Verdict, r.Validity)
		}
	}
}
