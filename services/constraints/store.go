// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package constraints loads and serves per-variable constraint renderings.
//
// Each variable owns an ordered constraint list; the position in that list
// is the stable identity that truth masks index into. Every constraint
// carries four renderings: natural language and SMT-LIB, each in stated and
// negated form, so a mask can be rendered without any on-the-fly rewriting.
package constraints

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/constraintbench/services/harness"
)

// Constraint holds the four renderings of one constraint.
type Constraint struct {
	NL        string `yaml:"nl" validate:"required"`
	NLNegated string `yaml:"nl_negated" validate:"required"`
	SMT       string `yaml:"smt" validate:"required"`
	SMTNeg    string `yaml:"smt_negated" validate:"required"`
}

// Variable is one named variable and its ordered constraint sequence.
type Variable struct {
	Name        string       `yaml:"name" validate:"required"`
	Constraints []Constraint `yaml:"constraints" validate:"required,min=1,dive"`
}

type storeFile struct {
	Variables []Variable `yaml:"variables" validate:"required,min=1,dive"`
}

// Store serves constraint renderings for a fixed set of variables. It is
// immutable after load.
type Store struct {
	names []string
	vars  map[string]Variable
}

// ErrMaskLength signals a mask whose length does not match the variable's
// constraint count. This is a harness misconfiguration, not a data-dependent
// condition; callers treat it as fatal.
var ErrMaskLength = fmt.Errorf("truth mask length does not match constraint count")

// Load reads a constraint definition file and validates its schema.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read constraint file: %w", err)
	}

	var file storeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse constraint file %s: %w", path, err)
	}
	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("constraint file %s failed validation: %w", path, err)
	}

	s := &Store{vars: make(map[string]Variable, len(file.Variables))}
	for _, v := range file.Variables {
		if _, dup := s.vars[v.Name]; dup {
			return nil, fmt.Errorf("constraint file %s declares variable %q twice", path, v.Name)
		}
		s.names = append(s.names, v.Name)
		s.vars[v.Name] = v
	}
	slog.Info("Loaded constraint store", "path", path, "variables", len(s.names))
	return s, nil
}

// Names returns the variable names in file order.
func (s *Store) Names() []string {
	return s.names
}

// NumConstraints returns the constraint count for a variable.
func (s *Store) NumConstraints(name string) (int, error) {
	v, ok := s.vars[name]
	if !ok {
		return 0, fmt.Errorf("unknown variable %q", name)
	}
	return len(v.Constraints), nil
}

// NLConstraints renders the natural-language constraint list for a mask;
// a false bit selects the negated rendering at that position.
func (s *Store) NLConstraints(name string, mask harness.TruthMask) ([]string, error) {
	return s.render(name, mask, func(c Constraint, stated bool) string {
		if stated {
			return c.NL
		}
		return c.NLNegated
	})
}

// SMTConstraints renders the solver-syntax constraint list for a mask.
func (s *Store) SMTConstraints(name string, mask harness.TruthMask) ([]string, error) {
	return s.render(name, mask, func(c Constraint, stated bool) string {
		if stated {
			return c.SMT
		}
		return c.SMTNeg
	})
}

func (s *Store) render(name string, mask harness.TruthMask, pick func(Constraint, bool) string) ([]string, error) {
	v, ok := s.vars[name]
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", name)
	}
	if len(mask) != len(v.Constraints) {
		return nil, fmt.Errorf("%w: variable %q has %d constraints, mask has %d bits",
			ErrMaskLength, name, len(v.Constraints), len(mask))
	}
	out := make([]string, len(mask))
	for i, stated := range mask {
		out[i] = pick(v.Constraints[i], stated)
	}
	return out, nil
}
