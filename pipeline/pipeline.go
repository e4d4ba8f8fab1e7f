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
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elphase/breakpoint"
	"github.com/exascience/elphase/config"
	"github.com/exascience/elphase/connector"
	"github.com/exascience/elphase/impute"
	"github.com/exascience/elphase/internal"
	"github.com/exascience/elphase/intervals"
	"github.com/exascience/elphase/mosaic"
	"github.com/exascience/elphase/pairsearch"
	"github.com/exascience/elphase/panel"
	"github.com/exascience/elphase/target"
)

// Result is one full run's output (spec §6 "Outputs produced to
// collaborators").
type Result struct {
	Mosaics []*mosaic.Mosaic
	Imputed *impute.Result
	Summary *Summary
}

// windowState is everything RedundantExpansion hands the individual
// loop for one window: the typed rows it covers and, per individual,
// its redundant candidate pair set.
type windowState struct {
	typedRows []int // typed-row indices (into genotypes) in this window, ascending
	pairs     [][]panel.HapPair
}

// typedRowRange returns the half-open range of typed-row indices whose
// bound reference-marker index falls in [start, end). Each typed row
// is a single reference-marker index, modelled as a closed interval
// [v, v] so the lookup can delegate to intervals.Bounds instead of
// reimplementing the binary search.
func typedRowRange(xToHIdx []int32, start, end int32) (lo, hi int) {
	ivs := make([]intervals.Interval, len(xToHIdx))
	for i, v := range xToHIdx {
		ivs[i] = intervals.Interval{Start: v, End: v}
	}
	return intervals.Bounds(ivs, start, end-1)
}

// processWindow runs C1 (PairSearch) and C2 (RedundantExpansion) for
// one window, across all individuals.
func processWindow(w *panel.Window, genotypes *target.Genotypes, cfg config.Config) *windowState {
	lo, hi := typedRowRange(genotypes.XtoHIdx, w.Range.Start, w.Range.End)
	typedRows := make([]int, hi-lo)
	for i := range typedRows {
		typedRows[i] = lo + i
	}
	st := &windowState{typedRows: typedRows}

	if len(typedRows) < cfg.MinTypedSNPs {
		// InsufficientTypedMarkers: leave st.pairs nil, resolved by the
		// neighbour-reuse pass after all windows have been processed.
		return st
	}

	rows := make([][]int8, len(typedRows))
	for i, r := range typedRows {
		rows[i] = genotypes.Row(r)
	}
	xw, observed, err := pairsearch.BuildWindowMatrix(rows)
	internal.Must(err) // EmptyWindow/NumericalAnomaly: fatal per spec §7

	opts := pairsearch.Options{
		MaxHaplotypes:           cfg.MaxHaplotypes,
		ThinningFactor:          cfg.ThinningFactor,
		ThinningScaleAlleleFreq: cfg.ThinningScaleAlleleFreq,
		Rescreen:                cfg.Rescreen,
		Lasso:                   cfg.Lasso,
	}
	result, err := pairsearch.Search(xw, observed, w.UniqueH, w.AltFreq, opts)
	internal.Must(err)

	invHapmap := w.InvertedHapmap()
	st.pairs = make([][]panel.HapPair, genotypes.N)
	for i := 0; i < genotypes.N; i++ {
		st.pairs[i] = panel.RedundantPairs(invHapmap[result.J[i]], invHapmap[result.K[i]])
	}
	return st
}

// applyInsufficientTypedMarkersPolicy fills in windows flagged
// insufficient by copying the nearest processed neighbour's candidate
// pairs (spec §6 "min_typed_snps... reuse the neighbouring window's
// chosen pair"), preferring the previous window and falling back to
// the next.
func applyInsufficientTypedMarkersPolicy(states []*windowState, n int, summary *Summary) {
	for g, st := range states {
		if st.pairs != nil {
			continue
		}
		summary.Issues.AddInsufficientTypedMarkers(1)
		switch {
		case g > 0 && states[g-1].pairs != nil:
			st.pairs = states[g-1].pairs
		case g+1 < len(states) && states[g+1].pairs != nil:
			st.pairs = states[g+1].pairs
		default:
			st.pairs = make([][]panel.HapPair, n)
		}
	}
}

// processIndividual runs C3 (WindowConnector), C4 (BreakpointSearch)
// and C5 (MosaicAssembler) for one individual across all windows.
func processIndividual(i int, windows []*panel.Window, states []*windowState, genotypes *target.Genotypes, cfg config.Config) *mosaic.Mosaic {
	w := len(windows)
	candidates := make([][]panel.HapPair, w)
	for g := range states {
		candidates[g] = states[g].pairs[i]
	}

	var chosen []panel.HapPair
	if cfg.DynamicProgramming {
		var err error
		chosen, err = connector.DP(candidates, cfg.Lambda)
		internal.Must(err)
	} else {
		chosen = connectorIntersect(windows, candidates)
	}

	m := mosaic.New(chosen[0].H1, chosen[0].H2)
	for g := 1; g < w; g++ {
		span, hAt := spanAndAlleleLookup(windows, states, genotypes, i, g)
		d := breakpoint.Resolve(chosen[g-1], chosen[g], span, hAt)
		l := len(span)
		firstPrev := windows[g-1].FirstMarker() + 1
		firstG := windows[g].FirstMarker() + 1
		xToHIdx := spanXtoHIdx(states, genotypes, g)
		internal.Must(m.Strand1.Persist(d.T1, l, chosen[g-1].H1, d.Pair.H1, g+1, firstPrev, firstG, xToHIdx))
		internal.Must(m.Strand2.Persist(d.T2, l, chosen[g-1].H2, d.Pair.H2, g+1, firstPrev, firstG, xToHIdx))
		chosen[g] = d.Pair
	}
	m.Collapse()
	return m
}

// spanXtoHIdx returns the reference-marker index (1-based reference
// marker ordinal, matching mosaic.Segment.StartMarker) for each typed
// offset in the two-window span ending at window g.
func spanXtoHIdx(states []*windowState, genotypes *target.Genotypes, g int) []int32 {
	var rows []int
	rows = append(rows, states[g-1].typedRows...)
	rows = append(rows, states[g].typedRows...)
	out := make([]int32, len(rows))
	for i, r := range rows {
		out[i] = genotypes.XtoHIdx[r] + 1 // 1-based marker ordinal
	}
	return out
}

// spanAndAlleleLookup builds the typed-genotype span for individual i
// across windows g-1 and g, and an H lookup closure over that span.
func spanAndAlleleLookup(windows []*panel.Window, states []*windowState, genotypes *target.Genotypes, i, g int) ([]int8, breakpoint.HAt) {
	prevRows := states[g-1].typedRows
	curRows := states[g].typedRows
	span := make([]int8, len(prevRows)+len(curRows))
	for off, r := range prevRows {
		span[off] = genotypes.At(r, i)
	}
	for off, r := range curRows {
		span[len(prevRows)+off] = genotypes.At(r, i)
	}

	prevW, curW := windows[g-1], windows[g]
	hAt := func(u int, hap int32) int8 {
		if u < len(prevRows) {
			col := prevW.UniqueH.Column(int(prevW.Hapmap[hap]), nil)
			return int8(col[u])
		}
		col := curW.UniqueH.Column(int(curW.Hapmap[hap]), nil)
		return int8(col[u-len(prevRows)])
	}
	return span, hAt
}

// connectorIntersect runs C3's set-intersection mode for one
// individual: it rebuilds each window's two strand bitsets from the
// candidate pairs RedundantExpansion produced, then delegates to
// connector.Intersect.
func connectorIntersect(windows []*panel.Window, candidates [][]panel.HapPair) []panel.HapPair {
	w := len(windows)
	strand1 := make([]*bitset.BitSet, w)
	strand2 := make([]*bitset.BitSet, w)
	for g := range windows {
		pairs := candidates[g]
		s1 := make([]int32, 0, len(pairs))
		s2 := make([]int32, 0, len(pairs))
		for _, p := range pairs {
			s1 = append(s1, p.H1)
			s2 = append(s2, p.H2)
		}
		b1, b2 := panel.BitPairs(len(windows[g].Hapmap), s1, s2)
		strand1[g] = b1
		strand2[g] = b2
	}
	return connector.Intersect(strand1, strand2)
}

// Run executes C1-C6 over one chunk (spec §5's two nested parallel
// regions): the window loop (PairSearch + RedundantExpansion) runs
// first, in parallel across windows; then the individual loop
// (WindowConnector + BreakpointSearch + MosaicAssembler) runs in
// parallel across individuals. Impute runs last if cfg.Impute is set.
func Run(rp *panel.ReferencePanel, genotypes *target.Genotypes, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	summary := NewSummary()
	mismatches := genotypes.Bind(rp.Pos)
	summary.Issues.AddPositionMismatch(len(mismatches))

	numWindows := rp.NumWindows()
	n := genotypes.N
	states := make([]*windowState, numWindows)

	summary.Time("pairsearch+redundant-expansion", &summary.PairSearch, func() {
		parallel.Range(0, numWindows, 0, func(low, high int) {
			for g := low; g < high; g++ {
				states[g] = processWindow(rp.Windows[g], genotypes, cfg)
			}
		})
	})

	applyInsufficientTypedMarkersPolicy(states, n, summary)

	mosaics := make([]*mosaic.Mosaic, n)
	summary.Time("connector+breakpoint+mosaic", &summary.WindowConnect, func() {
		parallel.Range(0, n, 0, func(low, high int) {
			for i := low; i < high; i++ {
				mosaics[i] = processIndividual(i, rp.Windows, states, genotypes, cfg)
			}
		})
	})

	result := &Result{Mosaics: mosaics, Summary: summary}

	if cfg.Impute {
		summary.Time("impute", &summary.Impute, func() {
			alleleAt := func(row int, hap int32) int8 {
				g := windowOf(rp.Windows, int32(row))
				w := rp.Windows[g]
				localRow := row - int(w.FirstMarker())
				col := w.FullH.Column(int(hap), nil)
				return int8(col[localRow])
			}
			result.Imputed = impute.Impute(mosaics, len(rp.Pos), alleleAt, genotypes, impute.Options{})
		})
	}

	return result, nil
}

// windowOf returns the index of the window covering reference-marker
// index r.
func windowOf(windows []*panel.Window, r int32) int {
	return sort.Search(len(windows), func(g int) bool { return windows[g].Range.End > r })
}
