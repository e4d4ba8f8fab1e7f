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

// Package impute implements C6, the Imputer: walk each individual's
// mosaic and emit the diploid genotype (phased pair or dosage) at
// every reference marker (spec §4.6).
package impute

import (
	"github.com/exascience/elphase/mosaic"
	"github.com/exascience/elphase/target"
	"github.com/exascience/elphase/utils/nibbles"
)

// AlleleAt looks up H[row, hapLabel] in {0,1} for the reference marker
// at 0-based index row.
type AlleleAt func(row int, hapLabel int32) int8

// Options controls the observed-value-vs-mosaic preference.
type Options struct {
	// FullMosaic, when true, always reconstructs alleles from the
	// mosaic even at typed positions, ignoring observed genotypes.
	FullMosaic bool
}

// Result is the dense P x N phased output, row-major by reference
// marker then individual. Alleles are 0/1, so each strand is packed
// two values to the byte via nibbles.Nibbles rather than a full []int8.
type Result struct {
	P, N             int
	Allele1, Allele2 nibbles.Nibbles
}

// NewResult allocates a zeroed P x N phased result.
func NewResult(p, n int) *Result {
	return &Result{P: p, N: n, Allele1: nibbles.Make(p * n), Allele2: nibbles.Make(p * n)}
}

func (r *Result) set(row, col int, a1, a2 int8) {
	off := row*r.N + col
	r.Allele1.Set(off, byte(a1))
	r.Allele2.Set(off, byte(a2))
}

// Phased returns the phased allele pair at reference marker row,
// individual col.
func (r *Result) Phased(row, col int) (a1, a2 int8) {
	off := row*r.N + col
	return int8(r.Allele1.Get(off)), int8(r.Allele2.Get(off))
}

// Dosage returns the unphased allele sum in {0,1,2}.
func (r *Result) Dosage(row, col int) int8 {
	off := row*r.N + col
	return int8(r.Allele1.Get(off)) + int8(r.Allele2.Get(off))
}

// hidxToTyped inverts genotypes.XtoHIdx (typed row -> reference-marker
// index) into a p-length lookup from reference-marker index to typed
// row, -1 where the reference marker was never typed.
func hidxToTyped(p int, xToHIdx []int32) []int32 {
	out := make([]int32, p)
	for i := range out {
		out[i] = -1
	}
	for t, h := range xToHIdx {
		if h >= 0 && int(h) < p {
			out[h] = int32(t)
		}
	}
	return out
}

// splitDosage turns an observed genotype sum into a phased pair
// consistent with that sum. Phase is not recoverable from a bare
// dosage; callers needing the haplotype-derived phase at typed
// positions should request Options.FullMosaic instead.
func splitDosage(v int8) (int8, int8) {
	switch v {
	case 0:
		return 0, 0
	case 2:
		return 1, 1
	default:
		return 0, 1
	}
}

// Impute walks every individual's mosaic over all p reference markers.
// mosaics[col] is individual col's mosaic; alleleAt resolves a
// haplotype label to its allele at a given reference-marker row. When
// genotypes is non-nil and opts.FullMosaic is false, a typed
// non-missing observed value at a reference marker is emitted in place
// of the mosaic reconstruction (spec §4.6). There is no failure path:
// every row/individual always receives a value.
func Impute(mosaics []*mosaic.Mosaic, p int, alleleAt AlleleAt, genotypes *target.Genotypes, opts Options) *Result {
	n := len(mosaics)
	result := NewResult(p, n)

	var hidxToT []int32
	if !opts.FullMosaic && genotypes != nil {
		hidxToT = hidxToTyped(p, genotypes.XtoHIdx)
	}

	for col, m := range mosaics {
		for row := 0; row < p; row++ {
			if hidxToT != nil {
				if t := hidxToT[row]; t >= 0 {
					v := genotypes.At(int(t), col)
					if v != target.Missing {
						a1, a2 := splitDosage(v)
						result.set(row, col, a1, a2)
						continue
					}
				}
			}
			marker := int32(row + 1)
			seg1 := m.Strand1.At(marker)
			seg2 := m.Strand2.At(marker)
			result.set(row, col, alleleAt(row, seg1.HapLabel), alleleAt(row, seg2.HapLabel))
		}
	}
	return result
}
