// elPrep: a high-performance tool for analyzing SAM/BAM files.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

// Package connector implements C3, WindowConnector: for one individual,
// pick one full-panel haplotype pair per window minimising a global
// cost that mixes per-window fit (zero, by construction of the
// candidate set) and a cross-window strand-switch penalty (spec §4.3).
package connector

import (
	"fmt"

	"github.com/exascience/elphase/panel"
)

// switchCost is the number of strand-level mismatches between the
// previous chosen pair and a candidate pair, after considering the
// better of the two strand orderings (spec §4.3.a).
func switchCost(prev, cand panel.HapPair) int {
	straight := 0
	if prev.H1 != cand.H1 {
		straight++
	}
	if prev.H2 != cand.H2 {
		straight++
	}
	crossed := 0
	if prev.H1 != cand.H2 {
		crossed++
	}
	if prev.H2 != cand.H1 {
		crossed++
	}
	if straight < crossed {
		return straight
	}
	return crossed
}

// lexLess orders two haplotype pairs by (min(H1,H2), max(H1,H2)),
// matching the "lower lexicographic (a,b)" tie-break (spec §4.3.a); the
// pair components are compared as an unordered-as-strands set since
// strand identity is not yet canonicalised before C4.
func lexLess(a, b panel.HapPair) bool {
	aLo, aHi := a.H1, a.H2
	if aLo > aHi {
		aLo, aHi = aHi, aLo
	}
	bLo, bHi := b.H1, b.H2
	if bLo > bHi {
		bLo, bHi = bHi, bLo
	}
	if aLo != bLo {
		return aLo < bLo
	}
	return aHi < bHi
}

// ErrNoCandidates is returned when a window has no candidate pairs at
// all - a configuration bug upstream (RedundantExpansion guarantees a
// non-empty set whenever PairSearch succeeded), not a spec error kind
// in its own right.
var ErrNoCandidates = fmt.Errorf("connector: window has no candidate pairs")

// DP runs WindowConnector in DP mode (spec §4.3.a) for one individual.
// candidates[g] is the redundant full-panel pair set Rg for window g.
// It returns the chosen pair per window, strand labels not yet
// canonicalised.
func DP(candidates [][]panel.HapPair, lambda float64) ([]panel.HapPair, error) {
	w := len(candidates)
	if w == 0 {
		return nil, nil
	}
	if len(candidates[0]) == 0 {
		return nil, ErrNoCandidates
	}

	cost := make([][]float64, w)
	pred := make([][]int, w)
	cost[0] = make([]float64, len(candidates[0]))
	pred[0] = make([]int, len(candidates[0]))
	for c := range pred[0] {
		pred[0][c] = -1
	}

	for g := 1; g < w; g++ {
		if len(candidates[g]) == 0 {
			return nil, ErrNoCandidates
		}
		cost[g] = make([]float64, len(candidates[g]))
		pred[g] = make([]int, len(candidates[g]))
		for c, cand := range candidates[g] {
			best := cost[g-1][0] + lambda*float64(switchCost(candidates[g-1][0], cand))
			bestP := 0
			for p := 1; p < len(candidates[g-1]); p++ {
				total := cost[g-1][p] + lambda*float64(switchCost(candidates[g-1][p], cand))
				if total < best || (total == best && lexLess(candidates[g-1][p], candidates[g-1][bestP])) {
					best = total
					bestP = p
				}
			}
			cost[g][c] = best
			pred[g][c] = bestP
		}
	}

	last := w - 1
	bestC := 0
	bestCost := cost[last][0]
	for c := 1; c < len(candidates[last]); c++ {
		if cost[last][c] < bestCost || (cost[last][c] == bestCost && lexLess(candidates[last][c], candidates[last][bestC])) {
			bestCost = cost[last][c]
			bestC = c
		}
	}

	chosen := make([]panel.HapPair, w)
	c := bestC
	for g := last; g >= 0; g-- {
		chosen[g] = candidates[g][c]
		if g > 0 {
			c = pred[g][c]
		}
	}
	return chosen, nil
}
