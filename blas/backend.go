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

// Package blas selects the BLAS backend for the dense products in
// pairsearch (M = HᵀH, N = XᵀH). It does not set the thread count of
// either backend.
package blas

import (
	"gonum.org/v1/gonum/blas/blas64"
	gonetlib "gonum.org/v1/netlib/blas/netlib"
)

// Backend names the two supported BLAS implementations.
type Backend int

const (
	// Native is gonum's pure-Go blas64 implementation. Always available,
	// no cgo dependency.
	Native Backend = iota
	// Netlib delegates to a platform BLAS library via cgo, bound through
	// gonum.org/v1/netlib. Faster for the large dense products C1
	// performs, at the cost of a cgo build.
	Netlib
)

// Use installs the given backend as gonum's blas64 implementation. It
// only swaps the implementation: the netlib-bound library runs with
// whatever threading the platform BLAS is configured for, alongside the
// outer pargo/parallel regions in pairsearch and the pipeline.
func Use(b Backend) {
	switch b {
	case Netlib:
		blas64.Use(gonetlib.Implementation{})
	default:
		// blas64's default Implementation is already gonum's pure-Go
		// one; nothing to install.
	}
}
