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

package pairsearch

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/exascience/pargo/parallel"
)

// thinnedSearch implements the scale guard of spec §4.1: when d exceeds
// MaxHaplotypes, select `keep` candidate haplotypes per individual by a
// cheap score (the dot product xᵀh, each row weighted by 1/altfreq when
// ThinningScaleAlleleFreq is set and altFreq covers every row), then run
// the full O(keep^2) search on just that subset. This only ever needs
// to return a feasible (j, k), j <= k - it is a performance lever, not
// a correctness one (spec §4.1 "Scale guard").
func thinnedSearch(xw, hw *mat.Dense, xwNormSq, altFreq []float64, opts Options) Result {
	p, nIndiv := xw.Dims()
	_, d := hw.Dims()

	keep := opts.ThinningFactor
	if keep <= 0 {
		keep = opts.MaxHaplotypes
	}
	if keep > d {
		keep = d
	}

	var weight []float64
	if opts.ThinningScaleAlleleFreq && len(altFreq) == p {
		weight = make([]float64, p)
		for r, af := range altFreq {
			if af > 0 {
				weight[r] = 1 / af
			} else {
				weight[r] = 1
			}
		}
	}

	bestJ := make([]int32, nIndiv)
	bestK := make([]int32, nIndiv)
	bestScore := make([]float64, nIndiv)

	parallel.Range(0, nIndiv, 0, func(low, high int) {
		scores := make([]float64, d)
		candidates := make([]int, d)
		for i := low; i < high; i++ {
			for j := 0; j < d; j++ {
				var s float64
				for r := 0; r < p; r++ {
					v := xw.At(r, i) * hw.At(r, j)
					if weight != nil {
						v *= weight[r]
					}
					s += v
				}
				scores[j] = s
				candidates[j] = j
			}
			sort.Slice(candidates, func(a, b int) bool {
				if scores[candidates[a]] != scores[candidates[b]] {
					return scores[candidates[a]] > scores[candidates[b]]
				}
				return candidates[a] < candidates[b]
			})
			kept := append([]int(nil), candidates[:keep]...)
			sort.Ints(kept)

			j, k, score := searchSubset(xw, hw, i, kept, xwNormSq[i])
			bestJ[i], bestK[i], bestScore[i] = j, k, score
		}
	})

	return Result{J: bestJ, K: bestK, Score: bestScore}
}

// searchSubset runs the brute-force pair search of spec step 3 for a
// single individual i, restricted to the given ascending-sorted subset
// of haplotype columns.
func searchSubset(xw, hw *mat.Dense, i int, subset []int, xwNormSqI float64) (j, k int32, score float64) {
	p, _ := xw.Dims()
	best := math.Inf(1)
	var bestJ, bestK int32
	for kk := 0; kk < len(subset); kk++ {
		hk := subset[kk]
		var normK, crossK float64
		for r := 0; r < p; r++ {
			hv := hw.At(r, hk)
			normK += hv * hv
			crossK += xw.At(r, i) * hv
		}
		for jj := 0; jj <= kk; jj++ {
			hj := subset[jj]
			var normJ, crossJ, dot float64
			for r := 0; r < p; r++ {
				hv := hw.At(r, hj)
				normJ += hv * hv
				dot += hv * hw.At(r, hk)
				crossJ += xw.At(r, i) * hv
			}
			m := 2*dot + normJ + normK
			if hj == hk {
				m = 4 * normJ
			}
			n2 := 2 * crossJ
			n1 := 2 * crossK
			s := m - n1 - n2
			if s < best {
				best = s
				bestJ = int32(hj)
				bestK = int32(hk)
			}
		}
	}
	return bestJ, bestK, best + xwNormSqI
}
