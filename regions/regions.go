// elPrep: a high-performance tool for analyzing SAM/BAM files.
// Copyright (c) 2017-2020 imec vzw.

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

// Package regions represents named marker-position ranges: the chunks
// pipeline.ChunkPlan splits the typed-marker range into, and optional
// user-supplied region restrictions loaded from a BED-like file. Window
// spans are panel.Window.Range values, not Regions.
package regions

import (
	"github.com/exascience/elphase/intervals"
	"github.com/exascience/elphase/utils"
)

// A Region is a named, half-open marker-position range [Start, End) on
// one contig.
type Region struct {
	Chrom utils.Symbol
	Start int32
	End   int32
}

// A Set maps a contig name onto the regions defined for it.
type Set struct {
	RegionMap map[utils.Symbol][]*Region
	// ranges holds, per contig, the Sort()ed Regions converted to
	// closed intervals, flattened so overlapping entries in a
	// restriction file collapse into a single covering range. Built by
	// Sort; nil before it is called.
	ranges map[utils.Symbol][]intervals.Interval
}

// NewSet allocates and initializes an empty Set.
func NewSet() *Set {
	return &Set{RegionMap: make(map[utils.Symbol][]*Region)}
}

// Add adds a region to the set.
func (s *Set) Add(region *Region) {
	s.RegionMap[region.Chrom] = append(s.RegionMap[region.Chrom], region)
}

// Sort orders every contig's regions by Start position and flattens
// overlapping entries, so Contains can binary-search them. Call once
// after all Add calls and before querying.
func (s *Set) Sort() {
	s.ranges = make(map[utils.Symbol][]intervals.Interval, len(s.RegionMap))
	for chrom, regs := range s.RegionMap {
		ivs := make([]intervals.Interval, len(regs))
		for i, r := range regs {
			// Region is half-open [Start, End); Interval here is
			// closed, so the last covered position is End-1.
			ivs[i] = intervals.Interval{Start: r.Start, End: r.End - 1}
		}
		intervals.SortByStart(ivs)
		s.ranges[chrom] = intervals.Flatten(ivs)
	}
}

// Contains reports whether position pos on contig chrom falls within any
// region of the set. The set must have been Sort()ed.
func (s *Set) Contains(chrom utils.Symbol, pos int32) bool {
	return intervals.Overlap(s.ranges[chrom], pos, pos)
}
