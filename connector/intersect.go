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
	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/elphase/panel"
)

// smallestMember returns the lowest-index member of s as a full-panel
// haplotype index. s must be non-empty.
func smallestMember(s *bitset.BitSet) int32 {
	i, _ := s.NextSet(0)
	return int32(i)
}

// Intersect runs WindowConnector in set-intersection mode (spec
// §4.3.b) for one individual. strand1Sets[g]/strand2Sets[g] are
// bitHap[i][g], the two per-strand bitsets over 0..d-1 for window g.
// It returns one chosen pair per window, strand labels not yet
// canonicalised (as in DP mode).
//
// Both chain-set emptiness checks use the cardinality (length) test,
// resolving spec §9's open question about symmetric strand-1/strand-2
// handling in favour of the symmetric form.
func Intersect(strand1Sets, strand2Sets []*bitset.BitSet) []panel.HapPair {
	w := len(strand1Sets)
	if w == 0 {
		return nil
	}
	chosen := make([]panel.HapPair, w)

	var a, b *bitset.BitSet
	runStart := 0
	closeRun := func(end int) {
		rep := panel.HapPair{H1: smallestMember(a), H2: smallestMember(b)}
		for g := runStart; g < end; g++ {
			chosen[g] = rep
		}
	}

	for g := 0; g < w; g++ {
		s1, s2 := strand1Sets[g], strand2Sets[g]
		if a == nil {
			a, b = s1.Clone(), s2.Clone()
			runStart = g
			continue
		}

		straightTotal := a.IntersectionCardinality(s1) + b.IntersectionCardinality(s2)
		crossedTotal := a.IntersectionCardinality(s2) + b.IntersectionCardinality(s1)

		var newA, newB *bitset.BitSet
		if straightTotal >= crossedTotal {
			newA, newB = a.Intersection(s1), b.Intersection(s2)
		} else {
			newA, newB = a.Intersection(s2), b.Intersection(s1)
		}

		if newA.Count() == 0 || newB.Count() == 0 {
			closeRun(g)
			a, b = s1.Clone(), s2.Clone()
			runStart = g
		} else {
			a, b = newA, newB
		}
	}
	closeRun(w)
	return chosen
}
