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
	"strings"
)

// Validator re-derives, for previously recorded results, whether each
// recorded value actually satisfies (or correctly fails to satisfy) its
// mask's constraint conjunction. It never trusts the generation strategy's
// self-report: ground truth always comes from a fresh solver query.
type Validator struct {
	store  Store
	solver Solver

	// Progress, when set, is called after each re-checked record.
	Progress func(name string, done, total int)
}

// NewValidator wires a Validator over the constraint store and a solver.
func NewValidator(store Store, solver Solver) *Validator {
	return &Validator{store: store, solver: solver}
}

// ValidateAll re-checks every prior record in order. The originals are
// never mutated; each output record is the input record plus a ternary
// verdict.
func (v *Validator) ValidateAll(ctx context.Context, prior []GenerationResult) ([]ValidationResult, error) {
	results := make([]ValidationResult, 0, len(prior))
	for i, rec := range prior {
		validity, err := v.Validate(ctx, rec)
		if err != nil {
			return nil, err
		}
		results = append(results, ValidationResult{GenerationResult: rec, Validity: validity})
		if v.Progress != nil {
			v.Progress(rec.Name, i+1, len(prior))
		}
	}
	return results, nil
}

// Validate re-checks one record.
//
// A record carrying a concrete value is checked by pinning the solver's
// string constant to that value on top of the mask's constraints:
// satisfiable confirms the record, unsatisfiable refutes it, unknown is
// inconclusive. A record claiming unsatisfiability is checked by solving
// the bare constraint set: there, satisfiable refutes the claim. A record
// that recorded no claim at all (its own generation timed out) is
// inconclusive without solving.
func (v *Validator) Validate(ctx context.Context, rec GenerationResult) (Validity, error) {
	if rec.Verdict == VerdictUnknown {
		return ValidityInconclusive, nil
	}

	texts, err := v.store.SMTConstraints(rec.Name, rec.Mask)
	if err != nil {
		return 0, fmt.Errorf("failed to re-render constraints for %q: %w", rec.Name, err)
	}

	if !rec.Value.Unsat {
		texts = append(texts, PinAssertion(rec.Value.Str))
	}

	verdict, _, err := v.solver.Solve(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("validation solve failed for %q: %w", rec.Name, err)
	}

	if rec.Value.Unsat {
		// The record claims no value exists; a satisfiable bare set
		// refutes that.
		switch verdict {
		case VerdictSat:
			return ValidityInvalid, nil
		case VerdictUnsat:
			return ValidityValid, nil
		default:
			return ValidityInconclusive, nil
		}
	}

	switch verdict {
	case VerdictSat:
		return ValidityValid, nil
	case VerdictUnsat:
		slog.Debug("Recorded value does not satisfy its mask",
			"name", rec.Name, "mask", FormatMask(rec.Mask), "value", rec.Value.Str)
		return ValidityInvalid, nil
	default:
		return ValidityInconclusive, nil
	}
}

// PinAssertion builds the equality assertion that pins the solver's string
// constant to a recorded literal value.
func PinAssertion(value string) string {
	return fmt.Sprintf("(assert (= %s %s))", SolverConstName, QuoteSMTString(value))
}

// QuoteSMTString renders a Go string as an SMT-LIB string literal. Embedded
// double quotes are escaped by doubling, per the SMT-LIB lexical rules.
func QuoteSMTString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// UnquoteSMTString reverses QuoteSMTString for literals read back from a
// solver model. Input without surrounding quotes is returned unchanged.
func UnquoteSMTString(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
