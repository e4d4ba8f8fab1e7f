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

// Package breakpoint implements C4, BreakpointSearch: between two
// consecutive windows, decide whether to flip strand assignment and
// locate up to one breakpoint per strand (spec §4.4).
package breakpoint

import (
	"github.com/exascience/elphase/panel"
	"github.com/exascience/elphase/target"
)

// Decision is C4's output at one window boundary for one individual.
// Pair is the resolved haplotype pair to continue into the next window,
// in the previous pair's strand orientation: Pair.H1 is the haplotype
// strand 1 carries on (its breakpoint is T1), Pair.H2 the one strand 2
// carries on (its breakpoint is T2). When the previous and next pairs
// are equal as sets, Pair is the next pair exactly as given.
// T1/T2 are offsets into the typed-marker span (spec §4.4); -1 means
// that strand has no breakpoint in this span.
type Decision struct {
	Pair   panel.HapPair
	T1, T2 int
}

// HAt returns the allele of haplotype hap at span offset u.
type HAt func(u int, hap int32) int8

// oneDSearch locates the single breakpoint on the strand that switches
// from haplotype a to haplotype b, with the other strand held constant
// at s1, over a typed-marker span of length L = len(x). It returns the
// argmin offset (ties: smallest t) and its error count. t=0 means
// "switch before the span" (the whole span matches b); t=L means the
// whole span matches a.
func oneDSearch(s1, a, b int32, x []int8, hAt HAt) (tStar, errStar int) {
	l := len(x)
	err := 0
	for u := 0; u < l; u++ {
		if x[u] == target.Missing {
			continue
		}
		if x[u] != hAt(u, s1)+hAt(u, b) {
			err++
		}
	}
	best, bestT := err, 0
	for t := 1; t <= l; t++ {
		u := t - 1
		if x[u] != target.Missing {
			if x[u] != hAt(u, s1)+hAt(u, b) {
				err--
			}
			if x[u] != hAt(u, s1)+hAt(u, a) {
				err++
			}
		}
		if err < best {
			best, bestT = err, t
		}
	}
	return bestT, best
}

// twoDSearch locates the pair of breakpoints (t1, t2) minimising the
// combined error when strand 1 switches from a1 to b1 and strand 2
// switches from a2 to b2 independently. A per-marker genotype depends
// on both strands' alleles jointly, so the search is not separable and
// runs the full O(L^2) grid, scanning t1 ascending and, within each
// t1, t2 ascending with incremental error accounting - ties keep the
// first (smallest t1, then smallest t2) encountered.
func twoDSearch(a1, b1, a2, b2 int32, x []int8, hAt HAt) (t1Star, t2Star, errStar int) {
	l := len(x)
	best, bestT1, bestT2 := -1, 0, 0

	for t1 := 0; t1 <= l; t1++ {
		strand1 := func(u int) int8 {
			if u < t1 {
				return hAt(u, a1)
			}
			return hAt(u, b1)
		}
		err := 0
		for u := 0; u < l; u++ {
			if x[u] == target.Missing {
				continue
			}
			if x[u] != strand1(u)+hAt(u, b2) {
				err++
			}
		}
		if best < 0 || err < best {
			best, bestT1, bestT2 = err, t1, 0
		}
		for t2 := 1; t2 <= l; t2++ {
			u := t2 - 1
			if x[u] != target.Missing {
				v1 := strand1(u)
				if x[u] != v1+hAt(u, b2) {
					err--
				}
				if x[u] != v1+hAt(u, a2) {
					err++
				}
			}
			if err < best {
				best, bestT1, bestT2 = err, t1, t2
			}
		}
	}
	return bestT1, bestT2, best
}

// Resolve runs C4 for one individual at the boundary between the
// previous window's continuing pair prev (already canonicalised: H1 on
// strand 1, H2 on strand 2) and the next window's candidate pair next
// (unordered as strands). x is the typed-genotype span (spec §4.4's
// X_span) and hAt looks up H at the same span offsets.
func Resolve(prev, next panel.HapPair, x []int8, hAt HAt) Decision {
	i, j := prev.H1, prev.H2
	k, l := next.H1, next.H2

	if (i == k && j == l) || (i == l && j == k) {
		return Decision{Pair: next, T1: -1, T2: -1}
	}

	switch {
	case i == k:
		t, _ := oneDSearch(k, j, l, x, hAt)
		return Decision{Pair: panel.HapPair{H1: k, H2: l}, T1: -1, T2: t}
	case i == l:
		t, _ := oneDSearch(l, j, k, x, hAt)
		return Decision{Pair: panel.HapPair{H1: l, H2: k}, T1: -1, T2: t}
	case j == k:
		t, _ := oneDSearch(k, i, l, x, hAt)
		return Decision{Pair: panel.HapPair{H1: l, H2: k}, T1: t, T2: -1}
	case j == l:
		t, _ := oneDSearch(l, i, k, x, hAt)
		return Decision{Pair: panel.HapPair{H1: k, H2: l}, T1: t, T2: -1}
	default:
		t1s, t2s, errStraight := twoDSearch(i, k, j, l, x, hAt)
		t1c, t2c, errCrossed := twoDSearch(i, l, j, k, x, hAt)
		if errStraight <= errCrossed {
			return Decision{Pair: panel.HapPair{H1: k, H2: l}, T1: t1s, T2: t2s}
		}
		return Decision{Pair: panel.HapPair{H1: l, H2: k}, T1: t1c, T2: t2c}
	}
}
