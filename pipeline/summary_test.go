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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSummaryAssignsRunID(t *testing.T) {
	a := NewSummary()
	b := NewSummary()
	require.NotEqual(t, a.RunID, b.RunID)
}

func TestSummaryTimeAccumulatesDuration(t *testing.T) {
	s := NewSummary()
	s.Time("stage-a", &s.PairSearch, func() { time.Sleep(time.Millisecond) })
	s.Time("stage-a", &s.PairSearch, func() { time.Sleep(time.Millisecond) })
	require.GreaterOrEqual(t, s.PairSearch, 2*time.Millisecond)
}

func TestProgressAddIsConcurrencySafe(t *testing.T) {
	var p Progress
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Add(1)
		}()
	}
	wg.Wait()
	require.Equal(t, int64(100), p.Done())
}
