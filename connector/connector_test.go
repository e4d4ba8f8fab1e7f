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

package connector

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elphase/panel"
)

// Haplotype indices for readability: A=0 B=1 C=2 D=3 E=4 F=5 G=6 H=7.
const (
	hA int32 = iota
	hB
	hC
	hD
	hE
	hF
	hG
	hH
)

func TestDPPrefersLexicographicallyEarlierTiedPath(t *testing.T) {
	// S6: three windows, two candidates each. Path (A,B)->(A,B)->(E,F)
	// costs 0+2=2, same as (C,D)->(E,F)->(E,F) at 2+0=2; the tie must
	// resolve in favour of (A,B) at the first window.
	candidates := [][]panel.HapPair{
		{{H1: hA, H2: hB}, {H1: hC, H2: hD}},
		{{H1: hA, H2: hB}, {H1: hE, H2: hF}},
		{{H1: hE, H2: hF}, {H1: hG, H2: hH}},
	}

	got, err := DP(candidates, 1.0)
	require.NoError(t, err)
	require.Equal(t, []panel.HapPair{
		{H1: hA, H2: hB},
		{H1: hA, H2: hB},
		{H1: hE, H2: hF},
	}, got)
}

func TestDPNoCandidatesError(t *testing.T) {
	candidates := [][]panel.HapPair{
		{{H1: hA, H2: hB}},
		{},
	}
	_, err := DP(candidates, 1.0)
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestSwitchCostPrefersBetterOrientation(t *testing.T) {
	require.Equal(t, 0, switchCost(panel.HapPair{H1: hA, H2: hB}, panel.HapPair{H1: hA, H2: hB}))
	require.Equal(t, 0, switchCost(panel.HapPair{H1: hA, H2: hB}, panel.HapPair{H1: hB, H2: hA}))
	require.Equal(t, 1, switchCost(panel.HapPair{H1: hA, H2: hB}, panel.HapPair{H1: hA, H2: hC}))
	require.Equal(t, 2, switchCost(panel.HapPair{H1: hA, H2: hB}, panel.HapPair{H1: hC, H2: hD}))
}

func bitsOf(d int, members ...uint) *bitset.BitSet {
	b := bitset.New(uint(d))
	for _, m := range members {
		b.Set(m)
	}
	return b
}

func TestIntersectKeepsRunWhileChainsNonEmpty(t *testing.T) {
	const d = 6
	// All three windows agree on the straight pairing {0,1,2} / {3,4,5};
	// the chain should never close and the representative should be the
	// smallest surviving index on each strand throughout.
	strand1 := []*bitset.BitSet{
		bitsOf(d, 0, 1, 2),
		bitsOf(d, 0, 1),
		bitsOf(d, 0),
	}
	strand2 := []*bitset.BitSet{
		bitsOf(d, 3, 4, 5),
		bitsOf(d, 3, 4),
		bitsOf(d, 3),
	}

	got := Intersect(strand1, strand2)
	require.Len(t, got, 3)
	for _, pair := range got {
		require.Equal(t, int32(0), pair.H1)
		require.Equal(t, int32(3), pair.H2)
	}
}

func TestIntersectClosesRunOnEmptyChain(t *testing.T) {
	const d = 6
	// Window 0 and 1 share {0,1} / {2,3}; window 2's sets are disjoint
	// from both straight and crossed intersections, forcing a run close
	// and restart at window 2.
	strand1 := []*bitset.BitSet{
		bitsOf(d, 0, 1),
		bitsOf(d, 0, 1),
		bitsOf(d, 4),
	}
	strand2 := []*bitset.BitSet{
		bitsOf(d, 2, 3),
		bitsOf(d, 2, 3),
		bitsOf(d, 5),
	}

	got := Intersect(strand1, strand2)
	require.Len(t, got, 3)
	// First run (windows 0-1) closes on the pre-intersection survivors.
	require.Equal(t, panel.HapPair{H1: 0, H2: 2}, got[0])
	require.Equal(t, panel.HapPair{H1: 0, H2: 2}, got[1])
	// Second run (window 2 alone) picks its own smallest members.
	require.Equal(t, panel.HapPair{H1: 4, H2: 5}, got[2])
}
