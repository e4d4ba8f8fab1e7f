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

// Package pipeline orchestrates C1-C6 into a full run over a chunk of
// typed markers (spec §5), reporting recoverable per-window/per-sample
// issues as counts rather than aborting.
package pipeline

import "fmt"

// InsufficientTypedMarkers means a window had fewer than
// config.Config.MinTypedSNPs typed markers. Non-fatal (spec §7): the
// window reuses the neighbouring window's chosen pair.
type InsufficientTypedMarkers struct {
	WindowIndex int
	Typed       int
	Required    int
}

func (e *InsufficientTypedMarkers) Error() string {
	return fmt.Sprintf("window %d has %d typed markers, fewer than the required %d",
		e.WindowIndex, e.Typed, e.Required)
}

// IssueCounts tallies the recoverable error kinds a run accumulated
// (spec §7: "reported as counts in the summary").
type IssueCounts struct {
	PositionMismatch         int
	InsufficientTypedMarkers int
}

func (c *IssueCounts) AddPositionMismatch(n int)         { c.PositionMismatch += n }
func (c *IssueCounts) AddInsufficientTypedMarkers(n int) { c.InsufficientTypedMarkers += n }

// Total returns the sum of all recoverable issue counts.
func (c *IssueCounts) Total() int {
	return c.PositionMismatch + c.InsufficientTypedMarkers
}
