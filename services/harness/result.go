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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Value is the outcome of one generation attempt: either a concrete string
// or an explicit no-value marker. The marker is a tag rather than a reserved
// string, so a genuine value equal to the literal text "UNSAT" stays
// unambiguous.
type Value struct {
	Str   string
	Unsat bool
}

// StringValue wraps a concrete witness string.
func StringValue(s string) Value {
	return Value{Str: s}
}

// UnsatValue marks that no satisfying value exists.
func UnsatValue() Value {
	return Value{Unsat: true}
}

// String renders the value for logs and tables.
func (v Value) String() string {
	if v.Unsat {
		return "UNSAT"
	}
	return v.Str
}

// Verdict is a solver's three-valued answer to a satisfiability query. The
// zero value means no solver was consulted (LLM-path records).
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictSat
	VerdictUnsat
	VerdictUnknown
)

// String returns the table spelling of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictSat:
		return "sat"
	case VerdictUnsat:
		return "unsat"
	case VerdictUnknown:
		return "unknown"
	default:
		return ""
	}
}

// ParseVerdict maps a table spelling back to a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "":
		return VerdictNone, nil
	case "sat":
		return VerdictSat, nil
	case "unsat":
		return VerdictUnsat, nil
	case "unknown":
		return VerdictUnknown, nil
	default:
		return 0, fmt.Errorf("unknown verdict %q", s)
	}
}

// Validity is the ternary outcome of re-checking a recorded result against
// the solver.
type Validity int

const (
	ValidityInconclusive Validity = -1
	ValidityInvalid      Validity = 0
	ValidityValid        Validity = 1
)

// GenerationResult is one recorded outcome for a (variable, mask) pair.
// Records are append-only; Mask is an independent copy, never an alias of
// enumerator state.
type GenerationResult struct {
	Name    string
	Value   Value
	Verdict Verdict
	Mask    TruthMask
}

// ValidationResult extends a GenerationResult with the re-derived verdict.
// The original record is never mutated; validation output goes to a
// separate table.
type ValidationResult struct {
	GenerationResult
	Validity Validity
}

var generationHeader = []string{"name", "value", "unsat", "sat", "truth_masks"}
var validationHeader = []string{"name", "value", "unsat", "sat", "truth_masks", "valid"}

// WriteGenerationCSV persists generation records as delimited text with a
// header row. The truth_masks column uses the bit-string format from
// FormatMask so a later validation pass can re-parse it.
func WriteGenerationCSV(path string, results []GenerationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create result file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(generationHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.Name,
			r.Value.Str,
			strconv.FormatBool(r.Value.Unsat),
			r.Verdict.String(),
			FormatMask(r.Mask),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %q: %w", r.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush results: %w", err)
	}
	return nil
}

// ReadGenerationCSV loads a table produced by WriteGenerationCSV.
func ReadGenerationCSV(path string) ([]GenerationResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("result file %s is empty", path)
	}
	if len(rows[0]) < len(generationHeader) || rows[0][0] != "name" {
		return nil, fmt.Errorf("result file %s has unexpected header %v", path, rows[0])
	}

	results := make([]GenerationResult, 0, len(rows)-1)
	for i, row := range rows[1:] {
		unsat, err := strconv.ParseBool(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad unsat flag %q: %w", i+2, row[2], err)
		}
		verdict, err := ParseVerdict(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		mask, err := ParseMask(row[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		results = append(results, GenerationResult{
			Name:    row[0],
			Value:   Value{Str: row[1], Unsat: unsat},
			Verdict: verdict,
			Mask:    mask,
		})
	}
	return results, nil
}

// WriteValidationCSV persists validation records, one row per re-checked
// generation record plus its ternary verdict (1 valid, 0 invalid, -1
// inconclusive).
func WriteValidationCSV(path string, results []ValidationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create validation file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(validationHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.Name,
			r.Value.Str,
			strconv.FormatBool(r.Value.Unsat),
			r.Verdict.String(),
			FormatMask(r.Mask),
			strconv.Itoa(int(r.Validity)),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %q: %w", r.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush validation results: %w", err)
	}
	return nil
}

// RunMeta records the provenance of one evaluation run alongside its CSV.
type RunMeta struct {
	RunID       string    `yaml:"run_id"`
	Strategy    string    `yaml:"strategy"`
	Model       string    `yaml:"model,omitempty"`
	SMTSolver   string    `yaml:"smt_solver,omitempty"`
	Enumeration string    `yaml:"enumeration"`
	Anonymized  bool      `yaml:"anonymized"`
	StartedAt   time.Time `yaml:"started_at"`
	FinishedAt  time.Time `yaml:"finished_at"`
	NumRecords  int       `yaml:"num_records"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// WriteRunMeta writes the run metadata next to the result CSV, as
// <csv path without extension>_run.yaml.
func WriteRunMeta(csvPath string, meta RunMeta) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	base := csvPath[:len(csvPath)-len(filepath.Ext(csvPath))]
	path := base + "_run.yaml"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run metadata: %w", err)
	}
	return nil
}
