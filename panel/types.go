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

// Package panel models the reference haplotype panel: pre-windowed
// unique-haplotype matrices, the hapmap from full-panel haplotype index
// to unique column, and its redundant-set inverse.
package panel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/exascience/elphase/intervals"
)

// HaplotypeSource is any source of p×d 0/1 haplotype values that can
// materialise one column into a float64 slice. Hw can be a dense float
// matrix or a bit-packed store; callers of PairSearch never depend on
// which.
type HaplotypeSource interface {
	Rows() int
	Cols() int
	// Column writes column j into dst, reusing dst's storage if it has
	// enough capacity, and returns the (possibly reallocated) slice.
	Column(j int, dst []float64) []float64
}

// DenseHaplotypes is a HaplotypeSource backed by a flat row-major
// array, the layout elPrep's filters use for read-likelihood matrices
// (see filters/pairhmm.go's float64Matrix).
type DenseHaplotypes struct {
	rows, cols int
	data       []float64
}

// NewDenseHaplotypes wraps a row-major p×d array of 0/1 values. data
// must have length rows*cols.
func NewDenseHaplotypes(rows, cols int, data []float64) *DenseHaplotypes {
	if len(data) != rows*cols {
		panic(fmt.Sprintf("panel: data length %d does not match %d x %d", len(data), rows, cols))
	}
	return &DenseHaplotypes{rows: rows, cols: cols, data: data}
}

// Rows implements HaplotypeSource.
func (d *DenseHaplotypes) Rows() int { return d.rows }

// Cols implements HaplotypeSource.
func (d *DenseHaplotypes) Cols() int { return d.cols }

// Column implements HaplotypeSource.
func (d *DenseHaplotypes) Column(j int, dst []float64) []float64 {
	if cap(dst) < d.rows {
		dst = make([]float64, d.rows)
	}
	dst = dst[:d.rows]
	for i := 0; i < d.rows; i++ {
		dst[i] = d.data[i*d.cols+j]
	}
	return dst
}

// Matrix returns a *mat.Dense view over the same backing array, for
// direct use in BLAS products (HᵀH, XᵀH).
func (d *DenseHaplotypes) Matrix() *mat.Dense {
	return mat.NewDense(d.rows, d.cols, d.data)
}

// Window is one fixed-width block of reference markers (spec §3). The
// last window of a panel may be narrower, absorbing the remainder.
type Window struct {
	Index int
	// Range is the reference-marker span this window covers, as
	// positions into ReferencePanel.Pos (Start inclusive, End exclusive).
	Range intervals.Interval
	// UniqueH holds the distinct haplotype columns among the reference
	// panel's D haplotypes, restricted to this window's typed markers.
	UniqueH HaplotypeSource
	// Hapmap maps full-panel haplotype index (0-based, 0..D-1) to its
	// representative column index into UniqueH. FullH is not indexed
	// through it.
	Hapmap []int32
	// FullH holds all D reference haplotype columns (indexed directly by
	// full-panel haplotype index, not through Hapmap) over every
	// reference marker in the window, not just the typed subset UniqueH
	// covers, as supplied by the reference loader collaborator (spec
	// §6). C6 reads alleles - typed or not - from here.
	FullH HaplotypeSource
	// AltFreq is the optional per-marker alt-allele frequency, aligned
	// with Range.
	AltFreq []float64
	// TypedCount is the number of markers the reference loader counts
	// for this window. The pipeline does not read it: its
	// InsufficientTypedMarkers check (min_typed_snps) counts the typed
	// rows that fall inside Range itself.
	TypedCount int
}

// NMarkers returns the number of reference markers in this window.
func (w *Window) NMarkers() int {
	return int(w.Range.End - w.Range.Start)
}

// FirstMarker returns the reference-marker index (0-based, into
// ReferencePanel.Pos) of the first marker of the window.
func (w *Window) FirstMarker() int32 {
	return w.Range.Start
}

// ReferencePanel is the fully-phased reference haplotype panel, read-only
// after construction (spec §3, §5 "Shared resources").
type ReferencePanel struct {
	// Pos holds the sorted reference-marker positions, length P.
	Pos []int32
	// D is the number of full-panel haplotypes (2 per reference sample).
	D int
	// Width is the configured window size in markers.
	Width int
	Windows []*Window
}

// NumWindows returns the number of windows in the panel.
func (p *ReferencePanel) NumWindows() int { return len(p.Windows) }
