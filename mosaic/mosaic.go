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

// Package mosaic implements C5, MosaicAssembler: records C4's decisions
// into each individual's append-only, per-strand segment sequence
// (spec §4.5).
package mosaic

import (
	"fmt"
	"sort"
)

// Segment is one run of a single haplotype label starting at a
// reference marker index and first recorded while processing a given
// window.
type Segment struct {
	StartMarker int32
	WindowID    int
	HapLabel    int32
}

// BreakpointInvariantViolation means C4's reported breakpoint position
// fell outside the two-window span it searched - a bug upstream, not a
// data issue (spec §7).
type BreakpointInvariantViolation struct {
	Position int32
	WindowG  int
}

func (e *BreakpointInvariantViolation) Error() string {
	return fmt.Sprintf("mosaic: breakpoint position %d outside span for window %d", e.Position, e.WindowG)
}

// Strand is one strand's append-only segment sequence.
type Strand struct {
	Segments []Segment
}

func (s *Strand) append(seg Segment) {
	s.Segments = append(s.Segments, seg)
}

// Init starts the strand's mosaic at reference marker 1, window 1.
func (s *Strand) Init(label int32) {
	s.Segments = s.Segments[:0]
	s.append(Segment{StartMarker: 1, WindowID: 1, HapLabel: label})
}

// Persist records window g's C4 decision for this strand (spec §4.4,
// "Persisting a breakpoint"). t is the breakpoint offset C4 returned
// for this strand (-1: no breakpoint, stay on curLabel; l: the
// previous haplotype covered the entire span). prevLabel/curLabel are
// the labels before/after the transition. firstMarkerOfPrevG and
// firstMarkerOfG are the first reference markers of windows g-1 and g.
// xToHIdx maps a 0-based offset into the typed span to its reference
// marker index, and must cover at least offset t.
func (s *Strand) Persist(t, l int, prevLabel, curLabel int32, g int, firstMarkerOfPrevG, firstMarkerOfG int32, xToHIdx []int32) error {
	switch {
	case t < 0:
		s.append(Segment{StartMarker: firstMarkerOfG, WindowID: g, HapLabel: curLabel})
		return nil
	case t == l:
		s.append(Segment{StartMarker: firstMarkerOfG, WindowID: g, HapLabel: prevLabel})
		return nil
	}

	if t >= len(xToHIdx) {
		return &BreakpointInvariantViolation{Position: -1, WindowG: g}
	}
	bkpt := xToHIdx[t]
	if bkpt < firstMarkerOfPrevG {
		return &BreakpointInvariantViolation{Position: bkpt, WindowG: g}
	}

	if bkpt >= firstMarkerOfG {
		if bkpt > firstMarkerOfG {
			s.append(Segment{StartMarker: firstMarkerOfG, WindowID: g, HapLabel: prevLabel})
		}
		s.append(Segment{StartMarker: bkpt, WindowID: g, HapLabel: curLabel})
	} else {
		s.append(Segment{StartMarker: bkpt, WindowID: g - 1, HapLabel: curLabel})
	}
	return nil
}

// Collapse merges adjacent segments sharing a hap label, keeping the
// earlier start (spec §4.5, post-processing).
func (s *Strand) Collapse() {
	if len(s.Segments) == 0 {
		return
	}
	out := s.Segments[:1]
	for _, seg := range s.Segments[1:] {
		if seg.HapLabel == out[len(out)-1].HapLabel {
			continue
		}
		out = append(out, seg)
	}
	s.Segments = out
}

// At returns the segment covering reference marker r, via binary
// search on segment starts (spec §4.6).
func (s *Strand) At(r int32) Segment {
	idx := sort.Search(len(s.Segments), func(i int) bool {
		return s.Segments[i].StartMarker > r
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return s.Segments[idx]
}

// Validate checks the monotone-mosaic invariant (spec property 2):
// the first segment starts at marker 1 and starts strictly increase.
func (s *Strand) Validate() error {
	if len(s.Segments) == 0 {
		return fmt.Errorf("mosaic: empty strand")
	}
	if s.Segments[0].StartMarker != 1 {
		return fmt.Errorf("mosaic: first segment starts at %d, want 1", s.Segments[0].StartMarker)
	}
	for i := 1; i < len(s.Segments); i++ {
		if s.Segments[i].StartMarker <= s.Segments[i-1].StartMarker {
			return fmt.Errorf("mosaic: segment start %d at index %d not strictly greater than previous %d",
				s.Segments[i].StartMarker, i, s.Segments[i-1].StartMarker)
		}
	}
	return nil
}

// Mosaic is one individual's two-strand segment sequence.
type Mosaic struct {
	Strand1, Strand2 Strand
}

// New starts a mosaic for an individual whose first window assigned
// label1 to strand 1 and label2 to strand 2.
func New(label1, label2 int32) *Mosaic {
	m := &Mosaic{}
	m.Strand1.Init(label1)
	m.Strand2.Init(label2)
	return m
}

// Collapse runs post-processing collapse on both strands.
func (m *Mosaic) Collapse() {
	m.Strand1.Collapse()
	m.Strand2.Collapse()
}

// Validate checks the monotone-mosaic invariant on both strands.
func (m *Mosaic) Validate() error {
	if err := m.Strand1.Validate(); err != nil {
		return fmt.Errorf("strand 1: %w", err)
	}
	if err := m.Strand2.Validate(); err != nil {
		return fmt.Errorf("strand 2: %w", err)
	}
	return nil
}
