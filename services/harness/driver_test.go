// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore serves constraints for tests. Negated renderings are the stated
// ones wrapped in not(...) so assertions can distinguish them.
type memStore struct {
	order       []string
	constraints map[string][]string
}

func newMemStore(vars map[string][]string, order ...string) *memStore {
	return &memStore{order: order, constraints: vars}
}

func (m *memStore) Names() []string { return m.order }

func (m *memStore) NumConstraints(name string) (int, error) {
	cs, ok := m.constraints[name]
	if !ok {
		return 0, fmt.Errorf("unknown variable %q", name)
	}
	return len(cs), nil
}

func (m *memStore) render(name string, mask TruthMask) ([]string, error) {
	cs, ok := m.constraints[name]
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", name)
	}
	if len(mask) != len(cs) {
		return nil, fmt.Errorf("mask length %d != constraint count %d", len(mask), len(cs))
	}
	out := make([]string, len(cs))
	for i, c := range cs {
		if mask[i] {
			out[i] = c
		} else {
			out[i] = "not(" + c + ")"
		}
	}
	return out, nil
}

func (m *memStore) NLConstraints(name string, mask TruthMask) ([]string, error) {
	return m.render(name, mask)
}

func (m *memStore) SMTConstraints(name string, mask TruthMask) ([]string, error) {
	return m.render(name, mask)
}

// stubSolver replays a verdict function and records every constraint list
// it was asked to solve.
type stubSolver struct {
	verdict func(constraintTexts []string) (Verdict, string)
	calls   [][]string
}

func (s *stubSolver) Solve(_ context.Context, constraintTexts []string) (Verdict, string, error) {
	s.calls = append(s.calls, constraintTexts)
	if s.verdict == nil {
		return VerdictSat, "w", nil
	}
	v, w := s.verdict(constraintTexts)
	return v, w, nil
}

func satSolver() *stubSolver {
	return &stubSolver{}
}

func TestDriver_SweepRecordCount(t *testing.T) {
	store := newMemStore(map[string][]string{
		"age": {"(assert a)", "(assert b)", "(assert c)"},
	}, "age")
	driver := NewDriver(store, nil, satSolver(), ModeSweep)

	results, err := driver.EvaluateAll(context.Background(), StrategySMT)
	require.NoError(t, err)
	assert.Len(t, results, 4, "n+1 records under sweep")
}

func TestDriver_ExhaustiveRecordCount(t *testing.T) {
	store := newMemStore(map[string][]string{
		"age": {"(assert a)", "(assert b)", "(assert c)"},
	}, "age")
	driver := NewDriver(store, nil, satSolver(), ModeExhaustive)

	results, err := driver.EvaluateAll(context.Background(), StrategySMT)
	require.NoError(t, err)
	assert.Len(t, results, 8, "2^n records under exhaustive")
}

func TestDriver_RecordsOwnIndependentMasks(t *testing.T) {
	store := newMemStore(map[string][]string{
		"age": {"(assert a)", "(assert b)"},
	}, "age")
	driver := NewDriver(store, nil, satSolver(), ModeExhaustive)

	results, err := driver.EvaluateAll(context.Background(), StrategySMT)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, r := range results {
		seen[FormatMask(r.Mask)] = true
	}
	assert.Len(t, seen, 4, "each record keeps its own mask snapshot")
}

func TestDriver_SMTVerdictMapping(t *testing.T) {
	solver := &stubSolver{verdict: func(texts []string) (Verdict, string) {
		joined := strings.Join(texts, " ")
		switch {
		case strings.Contains(joined, "not((assert a))"):
			return VerdictUnsat, ""
		case strings.Contains(joined, "not((assert b))"):
			return VerdictUnknown, ""
		default:
			return VerdictSat, "10"
		}
	}}
	store := newMemStore(map[string][]string{
		"age": {"(assert a)", "(assert b)"},
	}, "age")
	driver := NewDriver(store, nil, solver, ModeSweep)

	results, err := driver.EvaluateAll(context.Background(), StrategySMT)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, VerdictSat, results[0].Verdict)
	assert.Equal(t, StringValue("10"), results[0].Value)

	assert.Equal(t, VerdictUnsat, results[1].Verdict)
	assert.True(t, results[1].Value.Unsat, "unsat verdict records the no-value marker")

	assert.Equal(t, VerdictUnknown, results[2].Verdict)
	assert.False(t, results[2].Value.Unsat, "unknown claims nothing")
	assert.Empty(t, results[2].Value.Str)
}

func TestDriver_LLMPathUsesNaturalLanguage(t *testing.T) {
	client := &scriptedLLM{responses: []string{`{"value": "10"}`}}
	gen := NewGenerator(client, GeneratorConfig{UseVariableName: true})
	store := newMemStore(map[string][]string{
		"age": {"age is greater than 0"},
	}, "age")
	driver := NewDriver(store, gen, nil, ModeSweep)

	results, err := driver.EvaluateAll(context.Background(), StrategyLLM)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, VerdictNone, results[0].Verdict, "LLM records carry no solver verdict")
	assert.Contains(t, client.prompts[0], "age is greater than 0")
	assert.Contains(t, client.prompts[1], "not(age is greater than 0)")
}

func TestDriver_ZeroConstraintVariable(t *testing.T) {
	store := newMemStore(map[string][]string{
		"free": {},
	}, "free")
	driver := NewDriver(store, nil, satSolver(), ModeExhaustive)

	results, err := driver.EvaluateAll(context.Background(), StrategySMT)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Mask)
}

func TestDriver_UnknownStrategy(t *testing.T) {
	store := newMemStore(map[string][]string{"age": {"a"}}, "age")
	driver := NewDriver(store, nil, satSolver(), ModeSweep)

	_, err := driver.EvaluateAll(context.Background(), Strategy("quantum"))
	assert.Error(t, err)
}

func TestDriver_ReportsProgress(t *testing.T) {
	store := newMemStore(map[string][]string{"age": {"a", "b"}}, "age")
	driver := NewDriver(store, nil, satSolver(), ModeSweep)

	var ticks []int
	driver.Progress = func(name string, done, total int) {
		assert.Equal(t, "age", name)
		assert.Equal(t, 3, total)
		ticks = append(ticks, done)
	}
	_, err := driver.EvaluateAll(context.Background(), StrategySMT)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ticks)
}
