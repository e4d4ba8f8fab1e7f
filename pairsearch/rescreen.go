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
	"gonum.org/v1/gonum/mat"

	"github.com/exascience/pargo/parallel"
)

// rescreen implements the optional rescreen strategy (spec §4.1, §9
// "Alternate solvers"): re-evaluate the chosen pair and its one-sided
// swap neighbourhood (same j with any k, or same k with any j) against
// observed entries only, and move to a neighbour if it has strictly
// lower observed-only error. Missing entries were pre-filled with an
// estimate for the coarse search; rescreen exists because that estimate
// can mislead the coarse minimum when a window has few observed calls.
func rescreen(xw, observed, hw *mat.Dense, result *Result) {
	p, nIndiv := xw.Dims()
	_, d := hw.Dims()

	parallel.Range(0, nIndiv, 0, func(low, high int) {
		for i := low; i < high; i++ {
			j0, k0 := int(result.J[i]), int(result.K[i])
			bestJ, bestK := j0, k0
			bestErr := observedError(xw, observed, hw, i, j0, k0, p)

			tryPair := func(j, k int) {
				if j > k {
					j, k = k, j
				}
				e := observedError(xw, observed, hw, i, j, k, p)
				if e < bestErr {
					bestErr = e
					bestJ, bestK = j, k
				}
			}
			for k := 0; k < d; k++ {
				tryPair(j0, k)
			}
			for j := 0; j < d; j++ {
				tryPair(j, k0)
			}

			if bestJ != j0 || bestK != k0 {
				result.J[i] = int32(bestJ)
				result.K[i] = int32(bestK)
				result.Score[i] = filledError(xw, hw, i, bestJ, bestK, p)
			}
		}
	})
}

func observedError(xw, observed, hw *mat.Dense, i, j, k, p int) float64 {
	var sum float64
	for r := 0; r < p; r++ {
		if observed.At(r, i) == 0 {
			continue
		}
		diff := xw.At(r, i) - hw.At(r, j) - hw.At(r, k)
		sum += diff * diff
	}
	return sum
}

func filledError(xw, hw *mat.Dense, i, j, k, p int) float64 {
	var sum float64
	for r := 0; r < p; r++ {
		diff := xw.At(r, i) - hw.At(r, j) - hw.At(r, k)
		sum += diff * diff
	}
	return sum
}
