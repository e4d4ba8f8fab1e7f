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

package pipeline

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Summary is the per-stage wall-clock timing report (spec §6 "Summary
// timings"), tagged with a run ID so log lines from concurrent workers
// can be correlated back to one run.
type Summary struct {
	RunID uuid.UUID

	PairSearch        time.Duration
	RedundantExpand   time.Duration
	WindowConnect     time.Duration
	BreakpointSearch  time.Duration
	MosaicAssembly    time.Duration
	Impute            time.Duration

	Issues IssueCounts
}

// NewSummary starts a new summary with a fresh run ID.
func NewSummary() *Summary {
	return &Summary{RunID: uuid.New()}
}

// Time runs fn, adds its wall-clock duration to *field, and logs a
// one-line progress message the way elPrep logs filter timings.
func (s *Summary) Time(stage string, field *time.Duration, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	*field += elapsed
	log.Printf("[%s] %s: %s", s.RunID, stage, elapsed)
}

// Progress is a single atomic counter shared across worker goroutines
// (spec §5 "Progress counter"). Delivery of updates to any UI is
// best-effort and outside this package's concern.
type Progress struct {
	done int64
}

// Add increments the counter by n and returns the new total.
func (p *Progress) Add(n int64) int64 {
	return atomic.AddInt64(&p.done, n)
}

// Done returns the current total.
func (p *Progress) Done() int64 {
	return atomic.LoadInt64(&p.done)
}
