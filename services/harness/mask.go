// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package harness implements the combinatorial constraint-evaluation core:
// truth-mask enumeration over a variable's constraint set, generation of
// candidate values through either an LLM or an SMT solver, and solver-backed
// validation of previously recorded results.
package harness

import (
	"fmt"
	"iter"
	"slices"
)

// TruthMask selects, per constraint position, whether the constraint holds
// as stated (true) or negated (false) for one evaluation case.
type TruthMask []bool

// EnumMode selects which mask combinations an evaluation run visits.
type EnumMode int

const (
	// ModeSweep visits the all-true baseline plus each single-position flip.
	ModeSweep EnumMode = iota
	// ModeExhaustive visits every boolean combination over the constraint set.
	ModeExhaustive
)

// String returns the CLI spelling of the mode.
func (m EnumMode) String() string {
	switch m {
	case ModeSweep:
		return "sweep"
	case ModeExhaustive:
		return "exhaustive"
	default:
		return "unknown"
	}
}

// ParseEnumMode maps a CLI spelling back to an EnumMode.
func ParseEnumMode(s string) (EnumMode, error) {
	switch s {
	case "sweep":
		return ModeSweep, nil
	case "exhaustive":
		return ModeExhaustive, nil
	default:
		return 0, fmt.Errorf("unknown enumeration mode %q (want sweep or exhaustive)", s)
	}
}

// Clone returns an independent copy of the mask. Records must own their own
// copy because enumerators reuse a working buffer across iterations.
func (t TruthMask) Clone() TruthMask {
	return slices.Clone(t)
}

// Equal reports whether two masks have identical length and bits.
func (t TruthMask) Equal(o TruthMask) bool {
	return slices.Equal(t, o)
}

// EnumerateMasks yields the truth masks for a constraint count n under the
// given mode.
//
// Sweep mode yields the all-true mask first, then n masks each flipping
// exactly one position of the baseline. Exhaustive mode yields all 2^n
// combinations with the first position varying slowest, so re-runs are
// directly diffable. Every yielded mask is an independent snapshot; the
// consumer may retain it without copying.
//
// n = 0 yields exactly one empty mask under either mode.
func EnumerateMasks(n int, mode EnumMode) iter.Seq[TruthMask] {
	if mode == ModeExhaustive {
		return enumerateExhaustive(n)
	}
	return enumerateSweep(n)
}

func enumerateSweep(n int) iter.Seq[TruthMask] {
	return func(yield func(TruthMask) bool) {
		mask := make(TruthMask, n)
		for i := range mask {
			mask[i] = true
		}
		if !yield(mask.Clone()) {
			return
		}
		for i := 0; i < n; i++ {
			mask[i] = false
			ok := yield(mask.Clone())
			mask[i] = true
			if !ok {
				return
			}
		}
	}
}

func enumerateExhaustive(n int) iter.Seq[TruthMask] {
	return func(yield func(TruthMask) bool) {
		mask := make(TruthMask, n)
		// Count down from all-true so the baseline comes first and the
		// first position varies slowest.
		for combo := (uint64(1) << n) - 1; ; combo-- {
			for i := 0; i < n; i++ {
				mask[i] = combo&(1<<(n-1-i)) != 0
			}
			if !yield(mask.Clone()) {
				return
			}
			if combo == 0 {
				return
			}
		}
	}
}

// MaskCount returns how many masks EnumerateMasks yields for n under mode.
func MaskCount(n int, mode EnumMode) int {
	if mode == ModeExhaustive {
		return 1 << n
	}
	return n + 1
}

// The persisted mask representation is a fixed-width bit string, one '1' or
// '0' per constraint position ("110" = first two constraints as stated,
// third negated). This is format v1; the empty mask serializes to "". The
// validate pass re-parses this column, so the format must stay stable.

// FormatMask serializes a mask to its bit-string form.
func FormatMask(mask TruthMask) string {
	buf := make([]byte, len(mask))
	for i, b := range mask {
		if b {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

// ParseMask parses a bit-string produced by FormatMask.
func ParseMask(s string) (TruthMask, error) {
	mask := make(TruthMask, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '1':
			mask[i] = true
		case '0':
			mask[i] = false
		default:
			return nil, fmt.Errorf("invalid truth mask %q: byte %q at position %d", s, s[i], i)
		}
	}
	return mask, nil
}
