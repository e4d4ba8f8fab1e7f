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

package pipeline

import (
	"github.com/exascience/elphase/regions"
	"github.com/exascience/elphase/utils"
)

// ChunkPlan splits a typed-marker range into memory-bound chunks (spec
// §5 "Memory bound"): haplotypes cost 1 bit/entry, genotypes 32
// bits/entry, and a chunk may use at most two thirds of the available
// budget.
type ChunkPlan struct {
	MaxChunk int
}

// NewChunkPlan computes max_chunk = floor((2/3)*systemBits/(d+32*n))
// for a panel of d haplotypes and n target individuals, given a
// systemBits memory budget (bits). It panics if d+32*n is non-positive,
// which would indicate a misconfigured panel/target pairing rather than
// a data condition to recover from.
func NewChunkPlan(systemBits int64, d, n int) ChunkPlan {
	denom := int64(d) + 32*int64(n)
	if denom <= 0 {
		panic("pipeline: chunk plan denominator must be positive")
	}
	maxChunk := (2 * systemBits) / (3 * denom)
	if maxChunk < 1 {
		maxChunk = 1
	}
	return ChunkPlan{MaxChunk: int(maxChunk)}
}

// Split divides the typed-marker range [start, end) on chrom into
// contiguous chunks no larger than p.MaxChunk markers each.
func (p ChunkPlan) Split(chrom utils.Symbol, start, end int32) []*regions.Region {
	var out []*regions.Region
	for s := start; s < end; s += int32(p.MaxChunk) {
		e := s + int32(p.MaxChunk)
		if e > end {
			e = end
		}
		out = append(out, &regions.Region{Chrom: chrom, Start: s, End: e})
	}
	return out
}
