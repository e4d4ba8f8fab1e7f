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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exascience/elphase/utils"
)

func TestNewChunkPlanFormula(t *testing.T) {
	// d=100000 haplotypes, n=1000 individuals, 8 Gbit budget:
	// max_chunk = floor((2/3)*8e9 / (100000+32000)) = floor(5.333e9/132000) = 40404.
	plan := NewChunkPlan(8_000_000_000, 100000, 1000)
	require.Equal(t, 40404, plan.MaxChunk)
}

func TestNewChunkPlanNeverBelowOne(t *testing.T) {
	plan := NewChunkPlan(1, 1000000, 1000000)
	require.Equal(t, 1, plan.MaxChunk)
}

func TestNewChunkPlanPanicsOnNonPositiveDenominator(t *testing.T) {
	require.Panics(t, func() {
		NewChunkPlan(1000, 0, 0)
	})
}

func TestSplitProducesBoundedContiguousChunks(t *testing.T) {
	chrom := utils.Intern("chr1")
	plan := ChunkPlan{MaxChunk: 3}
	chunks := plan.Split(chrom, 0, 10)

	require.Len(t, chunks, 4)
	wantBounds := [][2]int32{{0, 3}, {3, 6}, {6, 9}, {9, 10}}
	for i, want := range wantBounds {
		require.Equal(t, want[0], chunks[i].Start, "chunk %d start", i)
		require.Equal(t, want[1], chunks[i].End, "chunk %d end", i)
		require.Equal(t, chrom, chunks[i].Chrom, "chunk %d chrom", i)
	}
}

func TestSplitEmptyRangeProducesNoChunks(t *testing.T) {
	chrom := utils.Intern("chr1")
	plan := ChunkPlan{MaxChunk: 5}
	require.Nil(t, plan.Split(chrom, 4, 4))
}
