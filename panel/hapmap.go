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

package panel

import "github.com/bits-and-blooms/bitset"

// MaxRedundantPairs caps the enumerated pairs per individual per window
// (spec §3 "Per-window redundant sets... capped at 1000 entries").
const MaxRedundantPairs = 1000

// HapPair is an unordered-as-strands pair of full-panel haplotype
// indices (0-based), as chosen for one window by WindowConnector.
type HapPair struct {
	H1, H2 int32
}

// InvertedHapmap inverts w.Hapmap into, for each unique column, the
// sorted list of full-panel haplotype indices representing it (spec C2
// "Inverted on demand"). The result has length w.UniqueH.Cols().
func (w *Window) InvertedHapmap() [][]int32 {
	inv := make([][]int32, w.UniqueH.Cols())
	for full, unique := range w.Hapmap {
		inv[unique] = append(inv[unique], int32(full))
	}
	return inv
}

// RedundantPairs enumerates the full-panel pair set S1 × S2 in
// lexicographic order, truncated at MaxRedundantPairs (spec C2, DP
// mode). S1 and S2 must each be sorted ascending, as InvertedHapmap
// produces them.
func RedundantPairs(s1, s2 []int32) []HapPair {
	pairs := make([]HapPair, 0, min(len(s1)*len(s2), MaxRedundantPairs))
outer:
	for _, a := range s1 {
		for _, b := range s2 {
			if len(pairs) >= MaxRedundantPairs {
				break outer
			}
			pairs = append(pairs, HapPair{H1: a, H2: b})
		}
	}
	return pairs
}

// BitPairs returns two bitsets over 0..D-1 representing s1 and s2 (spec
// C2, set-intersection mode "bitHap[i][g] = (strand1Set, strand2Set)").
func BitPairs(d int, s1, s2 []int32) (strand1, strand2 *bitset.BitSet) {
	strand1 = bitset.New(uint(d))
	strand2 = bitset.New(uint(d))
	for _, a := range s1 {
		strand1.Set(uint(a))
	}
	for _, b := range s2 {
		strand2.Set(uint(b))
	}
	return
}
