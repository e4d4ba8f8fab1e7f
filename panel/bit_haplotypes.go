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

// BitHaplotypes is a HaplotypeSource backed by one bitset per column,
// one bit per marker row. It is the bit-packed alternative to
// DenseHaplotypes called for in the design notes ("H can be 0/1
// bit-packed or dense float. Model as any source of p×d 0/1 values with
// a column materialisation primitive into floats").
type BitHaplotypes struct {
	rows, cols int
	columns    []*bitset.BitSet
}

// NewBitHaplotypes allocates an empty rows x cols BitHaplotypes with
// every bit clear.
func NewBitHaplotypes(rows, cols int) *BitHaplotypes {
	columns := make([]*bitset.BitSet, cols)
	for j := range columns {
		columns[j] = bitset.New(uint(rows))
	}
	return &BitHaplotypes{rows: rows, cols: cols, columns: columns}
}

// Set sets the allele at marker row i of column j to 1.
func (b *BitHaplotypes) Set(i, j int) {
	b.columns[j].Set(uint(i))
}

// Rows implements HaplotypeSource.
func (b *BitHaplotypes) Rows() int { return b.rows }

// Cols implements HaplotypeSource.
func (b *BitHaplotypes) Cols() int { return b.cols }

// Column implements HaplotypeSource.
func (b *BitHaplotypes) Column(j int, dst []float64) []float64 {
	if cap(dst) < b.rows {
		dst = make([]float64, b.rows)
	}
	dst = dst[:b.rows]
	col := b.columns[j]
	for i := 0; i < b.rows; i++ {
		if col.Test(uint(i)) {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
	return dst
}
