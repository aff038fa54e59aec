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
	"fmt"
	"log/slog"
)

// Store serves constraint renderings for the evaluated variables. The
// external constraint store satisfies this; masks passed in always match
// the variable's constraint count, and a length mismatch returned by the
// store is a fatal misconfiguration.
type Store interface {
	Names() []string
	NumConstraints(name string) (int, error)
	NLConstraints(name string, mask TruthMask) ([]string, error)
	SMTConstraints(name string, mask TruthMask) ([]string, error)
}

// Solver runs one satisfiability query over solver-syntax constraints and,
// when satisfiable, returns a witness value. Implementations construct a
// fresh solver per call so no constraints leak between queries.
type Solver interface {
	Solve(ctx context.Context, constraintTexts []string) (Verdict, string, error)
}

// SolverConstName is the single string constant every solver problem
// declares; witness extraction and value pinning both refer to it.
const SolverConstName = "s"

// Strategy selects which generation path a run uses.
type Strategy string

const (
	StrategyLLM Strategy = "llm"
	StrategySMT Strategy = "smt"
)

// Driver evaluates every (variable, truth mask) combination with one
// generation strategy and records the outcomes. Execution is synchronous:
// one variable, one mask, one adapter call at a time.
type Driver struct {
	store  Store
	gen    *Generator
	solver Solver
	mode   EnumMode

	// Progress, when set, is called after each completed mask for a
	// variable. Used for terminal progress reporting.
	Progress func(name string, done, total int)
}

// NewDriver wires a Driver. gen may be nil for SMT-only runs and solver may
// be nil for LLM-only runs; the strategy passed to EvaluateAll decides which
// is exercised.
func NewDriver(store Store, gen *Generator, solver Solver, mode EnumMode) *Driver {
	return &Driver{store: store, gen: gen, solver: solver, mode: mode}
}

// EvaluateAll runs every variable in the store under the given strategy.
func (d *Driver) EvaluateAll(ctx context.Context, strategy Strategy) ([]GenerationResult, error) {
	var results []GenerationResult
	for _, name := range d.store.Names() {
		rs, err := d.Evaluate(ctx, name, strategy)
		if err != nil {
			return nil, err
		}
		results = append(results, rs...)
	}
	return results, nil
}

// Evaluate runs one variable: for each enumerated mask it renders the
// constraints in the strategy's form, invokes the corresponding adapter,
// and emits one record. Each record owns an independent mask copy.
func (d *Driver) Evaluate(ctx context.Context, name string, strategy Strategy) ([]GenerationResult, error) {
	n, err := d.store.NumConstraints(name)
	if err != nil {
		return nil, fmt.Errorf("failed to size mask for %q: %w", name, err)
	}

	total := MaskCount(n, d.mode)
	slog.Info("Evaluating variable", "name", name, "constraints", n,
		"strategy", strategy, "enumeration", d.mode.String(), "cases", total)

	results := make([]GenerationResult, 0, total)
	for mask := range EnumerateMasks(n, d.mode) {
		var rec GenerationResult
		switch strategy {
		case StrategyLLM:
			rec, err = d.evalLLM(ctx, name, mask)
		case StrategySMT:
			rec, err = d.evalSMT(ctx, name, mask)
		default:
			return nil, fmt.Errorf("unknown strategy %q", strategy)
		}
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
		if d.Progress != nil {
			d.Progress(name, len(results), total)
		}
	}
	return results, nil
}

func (d *Driver) evalLLM(ctx context.Context, name string, mask TruthMask) (GenerationResult, error) {
	texts, err := d.store.NLConstraints(name, mask)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("failed to render constraints for %q: %w", name, err)
	}
	val, err := d.gen.Generate(ctx, name, texts)
	if err != nil {
		return GenerationResult{}, err
	}
	return GenerationResult{Name: name, Value: val, Mask: mask}, nil
}

func (d *Driver) evalSMT(ctx context.Context, name string, mask TruthMask) (GenerationResult, error) {
	texts, err := d.store.SMTConstraints(name, mask)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("failed to render constraints for %q: %w", name, err)
	}
	verdict, witness, err := d.solver.Solve(ctx, texts)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("solver failed on %q: %w", name, err)
	}
	var val Value
	switch verdict {
	case VerdictSat:
		val = StringValue(witness)
	case VerdictUnsat:
		val = UnsatValue()
	default:
		// Timeout or incompleteness: the record claims nothing.
	}
	return GenerationResult{Name: name, Value: val, Verdict: verdict, Mask: mask}, nil
}
