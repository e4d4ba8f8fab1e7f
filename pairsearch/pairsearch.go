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

// Package pairsearch implements C1, the per-window optimal-pair search:
// for each individual, the pair of haplotype columns (j, k), j <= k,
// minimising ||x - h_j - h_k||^2 (spec §4.1).
package pairsearch

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/exascience/elphase/panel"
	"github.com/exascience/elphase/target"
)

// EmptyWindowError is raised when a window has zero typed markers or
// zero unique haplotypes. Spec §7: fatal, must be caught at
// configuration time.
type EmptyWindowError struct {
	P, D int
}

func (e *EmptyWindowError) Error() string {
	return fmt.Sprintf("pairsearch: empty window, p=%d d=%d", e.P, e.D)
}

// NumericalAnomalyError is raised when Xw or the materialised Hw
// contains NaN or infinite values. Spec §7: fatal, indicates a bug.
type NumericalAnomalyError struct {
	Row, Col int
	Source   string
}

func (e *NumericalAnomalyError) Error() string {
	return fmt.Sprintf("pairsearch: numerical anomaly in %s at (%d,%d)", e.Source, e.Row, e.Col)
}

// Result is C1's output: for each individual i, the optimal pair
// (J[i], K[i]), J[i] <= K[i], into the window's unique-haplotype
// columns, and its score.
type Result struct {
	J, K  []int32
	Score []float64
}

// BuildWindowMatrix constructs Xw (p x n floats) for one window from
// raw genotype rows (length n each, values 0, 1, 2 or target.Missing),
// applying the missing-initialisation rule of spec §4.1: a missing
// entry is filled with 2 times the observed alt-allele frequency of its
// row, or zero if the entire row is missing. It also returns the
// observed-entry mask (1.0 observed, 0.0 missing), needed by the
// rescreen strategy.
func BuildWindowMatrix(rows [][]int8) (xw, observed *mat.Dense, err error) {
	p := len(rows)
	if p == 0 {
		return nil, nil, &EmptyWindowError{P: 0}
	}
	n := len(rows[0])
	data := make([]float64, p*n)
	mask := make([]float64, p*n)
	for r, row := range rows {
		var sumAlleles, obsCount int
		for _, v := range row {
			if v != target.Missing {
				sumAlleles += int(v)
				obsCount++
			}
		}
		fillValue := 0.0
		if obsCount > 0 {
			fillValue = 2 * float64(sumAlleles) / float64(2*obsCount)
		}
		for i, v := range row {
			off := r*n + i
			if v == target.Missing {
				data[off] = fillValue
				mask[off] = 0
			} else {
				data[off] = float64(v)
				mask[off] = 1
			}
		}
	}
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, &NumericalAnomalyError{Source: "Xw"}
		}
	}
	return mat.NewDense(p, n, data), mat.NewDense(p, n, mask), nil
}

// materialize builds a dense p x d matrix out of a HaplotypeSource,
// one column at a time - the one place storage polymorphism (spec §9)
// is resolved into the dense layout the BLAS products need.
func materialize(h panel.HaplotypeSource) (*mat.Dense, error) {
	p, d := h.Rows(), h.Cols()
	if p == 0 || d == 0 {
		return nil, &EmptyWindowError{P: p, D: d}
	}
	data := make([]float64, p*d)
	var col []float64
	for j := 0; j < d; j++ {
		col = h.Column(j, col)
		for i := 0; i < p; i++ {
			v := col[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &NumericalAnomalyError{Row: i, Col: j, Source: "Hw"}
			}
			data[i*d+j] = v
		}
	}
	return mat.NewDense(p, d, data), nil
}

// gramAndCross computes M (d x d, spec step 1) and N (n x d, spec step
// 2) from dense Xw (p x n) and Hw (p x d).
func gramAndCross(xw, hw *mat.Dense) (m, n *mat.Dense) {
	_, d := hw.Dims()
	_, nCols := xw.Dims()

	gram := new(mat.Dense)
	gram.Mul(hw.T(), hw)
	m = mat.NewDense(d, d, nil)
	for k := 0; k < d; k++ {
		for j := 0; j <= k; j++ {
			var v float64
			if j == k {
				v = 4 * gram.At(j, j)
			} else {
				v = 2*gram.At(j, k) + gram.At(j, j) + gram.At(k, k)
			}
			m.Set(j, k, v)
			m.Set(k, j, v)
		}
	}

	cross := new(mat.Dense)
	cross.Mul(xw.T(), hw)
	n = mat.NewDense(nCols, d, nil)
	n.Scale(2, cross)
	return m, n
}

// rowNormsSquared returns ||Xw[:,i]||^2 for every individual i.
func rowNormsSquared(xw *mat.Dense) []float64 {
	p, nCols := xw.Dims()
	out := make([]float64, nCols)
	for i := 0; i < nCols; i++ {
		var sum float64
		for r := 0; r < p; r++ {
			v := xw.At(r, i)
			sum += v * v
		}
		out[i] = sum
	}
	return out
}

// bruteForce runs the O(d^2 n) pair search of spec step 3 over the full
// d x d candidate space, with the deterministic tie-break: iterate k
// ascending, j ascending from 0 to k, strict-less keeps the first pair
// achieving the minimum.
func bruteForce(m, nMat *mat.Dense, xwNormSq []float64) Result {
	d, _ := m.Dims()
	nIndiv := len(xwNormSq)

	bestScore := make([]float64, nIndiv)
	bestJ := make([]int32, nIndiv)
	bestK := make([]int32, nIndiv)
	for i := range bestScore {
		bestScore[i] = math.Inf(1)
	}

	for k := 0; k < d; k++ {
		for j := 0; j <= k; j++ {
			mjk := m.At(j, k)
			for i := 0; i < nIndiv; i++ {
				score := mjk - nMat.At(i, j) - nMat.At(i, k)
				if score < bestScore[i] {
					bestScore[i] = score
					bestJ[i] = int32(j)
					bestK[i] = int32(k)
				}
			}
		}
	}

	for i := range bestScore {
		bestScore[i] += xwNormSq[i]
	}
	return Result{J: bestJ, K: bestK, Score: bestScore}
}

// Options configures a single Search call; it mirrors the subset of
// config.Config relevant to C1 so that pairsearch does not import the
// config package.
type Options struct {
	MaxHaplotypes           int
	ThinningFactor          int
	ThinningScaleAlleleFreq bool
	Rescreen                bool
	// Lasso, if non-zero, is the L1 penalty r for the
	// alternate large-window solver (spec §9 "Alternate solvers"),
	// used instead of plain dot-product thinning once d > MaxHaplotypes.
	Lasso float64
}

// Search runs C1 for one window: xw is the pre-filled p x n target
// matrix, h is the window's unique-haplotype source, altFreq (optional,
// length p) is used only by the allele-frequency-scaled thinning
// strategy. observed, if non-nil, enables the rescreen strategy.
func Search(xw, observed *mat.Dense, h panel.HaplotypeSource, altFreq []float64, opts Options) (Result, error) {
	p, _ := xw.Dims()
	d := h.Cols()
	if p == 0 || d == 0 {
		return Result{}, &EmptyWindowError{P: p, D: d}
	}
	hw, err := materialize(h)
	if err != nil {
		return Result{}, err
	}
	xwNormSq := rowNormsSquared(xw)

	var result Result
	switch {
	case d <= opts.MaxHaplotypes:
		m, n := gramAndCross(xw, hw)
		result = bruteForce(m, n, xwNormSq)
	case opts.Lasso > 0:
		result = lassoSearch(xw, hw, xwNormSq, opts.Lasso, opts)
	default:
		result = thinnedSearch(xw, hw, xwNormSq, altFreq, opts)
	}

	if opts.Rescreen && observed != nil {
		rescreen(xw, observed, hw, &result)
	}
	return result, nil
}
