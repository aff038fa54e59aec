// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package constraints

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/constraintbench/services/harness"
)

const testStoreYAML = `
variables:
  - name: age
    constraints:
      - nl: "age is greater than 0"
        nl_negated: "age is not greater than 0"
        smt: "(assert (> (str.to_int s) 0))"
        smt_negated: "(assert (not (> (str.to_int s) 0)))"
      - nl: "age is less than 18"
        nl_negated: "age is not less than 18"
        smt: "(assert (< (str.to_int s) 18))"
        smt_negated: "(assert (not (< (str.to_int s) 18)))"
  - name: username
    constraints:
      - nl: "username is at least 3 characters long"
        nl_negated: "username is shorter than 3 characters"
        smt: "(assert (>= (str.len s) 3))"
        smt_negated: "(assert (< (str.len s) 3))"
`

func writeStore(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "constraints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	store, err := Load(writeStore(t, testStoreYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "username"}, store.Names(), "file order is preserved")

	n, err := store.NumConstraints("age")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no variables", "variables: []"},
		{"variable without constraints", "variables:\n  - name: age\n    constraints: []"},
		{"constraint missing negation", `
variables:
  - name: age
    constraints:
      - nl: "age is positive"
        smt: "(assert (> (str.to_int s) 0))"
        smt_negated: "(assert (not (> (str.to_int s) 0)))"
`},
		{"not yaml", "{{{{"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeStore(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_DuplicateVariable(t *testing.T) {
	content := `
variables:
  - name: age
    constraints:
      - {nl: a, nl_negated: b, smt: c, smt_negated: d}
  - name: age
    constraints:
      - {nl: a, nl_negated: b, smt: c, smt_negated: d}
`
	_, err := Load(writeStore(t, content))
	assert.Error(t, err)
}

func TestStore_MaskRendering(t *testing.T) {
	store, err := Load(writeStore(t, testStoreYAML))
	require.NoError(t, err)

	nl, err := store.NLConstraints("age", harness.TruthMask{true, false})
	require.NoError(t, err)
	assert.Equal(t, []string{"age is greater than 0", "age is not less than 18"}, nl)

	smt, err := store.SMTConstraints("age", harness.TruthMask{false, true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"(assert (not (> (str.to_int s) 0)))",
		"(assert (< (str.to_int s) 18))",
	}, smt)
}

func TestStore_MaskLengthMismatchIsFatal(t *testing.T) {
	store, err := Load(writeStore(t, testStoreYAML))
	require.NoError(t, err)

	_, err = store.NLConstraints("age", harness.TruthMask{true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaskLength))

	_, err = store.SMTConstraints("age", harness.TruthMask{true, false, true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaskLength))
}

func TestStore_UnknownVariable(t *testing.T) {
	store, err := Load(writeStore(t, testStoreYAML))
	require.NoError(t, err)

	_, err = store.NumConstraints("ghost")
	assert.Error(t, err)
	_, err = store.NLConstraints("ghost", nil)
	assert.Error(t, err)
}
