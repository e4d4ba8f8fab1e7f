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

// lassoCoordinateDescentPasses is the fixed number of cyclic coordinate
// descent sweeps run per individual. Fixed rather than convergence-gated
// so the strategy stays deterministic regardless of thread count (spec
// §8 property 3).
const lassoCoordinateDescentPasses = 10

// lassoSearch implements the `lasso` alternate large-window solver
// (spec §4.1, §9 "Alternate solvers", §6 configuration item `lasso`):
// for each individual, fit a sparse L1-regularised regression of x_i
// onto the window's haplotype columns, keep the `keep` columns with the
// largest-magnitude coefficients as a candidate subset, and run the
// exact pair search (spec step 3) restricted to that subset. This
// differs from the plain dot-product thinning strategy in thinning.go
// by scoring candidates through a joint sparse fit instead of
// independent per-column correlations, which favours the haplotype
// combination that actually reconstructs x_i over haplotypes that are
// merely individually correlated with it.
func lassoSearch(xw, hw *mat.Dense, xwNormSq []float64, r float64, opts Options) Result {
	p, nIndiv := xw.Dims()
	_, d := hw.Dims()

	keep := opts.ThinningFactor
	if keep <= 0 {
		keep = opts.MaxHaplotypes
	}
	if keep > d {
		keep = d
	}

	// z[j] = ||H[:,j]||^2, shared across individuals.
	z := make([]float64, d)
	for j := 0; j < d; j++ {
		var s float64
		for row := 0; row < p; row++ {
			v := hw.At(row, j)
			s += v * v
		}
		z[j] = s
	}

	bestJ := make([]int32, nIndiv)
	bestK := make([]int32, nIndiv)
	bestScore := make([]float64, nIndiv)

	parallel.Range(0, nIndiv, 0, func(low, high int) {
		beta := make([]float64, d)
		residual := make([]float64, p)
		candidates := make([]int, d)
		for i := low; i < high; i++ {
			for row := 0; row < p; row++ {
				residual[row] = xw.At(row, i)
			}
			for j := range beta {
				beta[j] = 0
			}

			lassoFit(xw, hw, i, z, r, beta, residual)

			for j := range candidates {
				candidates[j] = j
			}
			sort.Slice(candidates, func(a, b int) bool {
				ba, bb := math.Abs(beta[candidates[a]]), math.Abs(beta[candidates[b]])
				if ba != bb {
					return ba > bb
				}
				return candidates[a] < candidates[b]
			})
			subset := append([]int(nil), candidates[:keep]...)
			sort.Ints(subset)

			j, k, score := searchSubset(xw, hw, i, subset, xwNormSq[i])
			bestJ[i], bestK[i], bestScore[i] = j, k, score
		}
	})

	return Result{J: bestJ, K: bestK, Score: bestScore}
}

// lassoFit runs lassoCoordinateDescentPasses cyclic coordinate-descent
// sweeps for individual i's regression of xw[:,i] onto hw, with
// soft-thresholding penalty r. residual must start as a copy of
// xw[:,i] (beta assumed all-zero on entry) and is updated in place
// along with beta.
func lassoFit(xw, hw *mat.Dense, i int, z []float64, r float64, beta, residual []float64) {
	p, _ := xw.Dims()
	d := len(beta)
	for pass := 0; pass < lassoCoordinateDescentPasses; pass++ {
		for j := 0; j < d; j++ {
			if z[j] == 0 {
				continue
			}
			var rho float64
			for row := 0; row < p; row++ {
				rho += hw.At(row, j) * residual[row]
			}
			rho += z[j] * beta[j]

			newBeta := softThreshold(rho, r) / z[j]
			delta := beta[j] - newBeta
			if delta != 0 {
				for row := 0; row < p; row++ {
					residual[row] += hw.At(row, j) * delta
				}
			}
			beta[j] = newBeta
		}
	}
}

// softThreshold is the standard lasso coordinate-descent shrinkage
// operator: sign(a) * max(|a| - t, 0).
func softThreshold(a, t float64) float64 {
	switch {
	case a > t:
		return a - t
	case a < -t:
		return a + t
	default:
		return 0
	}
}
