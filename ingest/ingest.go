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

// Package ingest reads the reference panel and target genotype matrix
// from plain tab-separated text files, the on-disk counterpart to
// panel.ReferencePanel and target.Genotypes. It is the reference
// "loader" collaborator spec §6 describes, in its simplest form: one
// haplotype source column per full-panel haplotype, not deduplicated
// into a reduced unique-haplotype matrix. Panels with many redundant
// haplotypes would benefit from collapsing duplicate columns before
// building each Window, which this loader does not attempt.
package ingest

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/exascience/elphase/intervals"
	"github.com/exascience/elphase/panel"
	"github.com/exascience/elphase/target"
)

// LoadPanel reads a reference panel file: a header line "pos h0 h1 ...
// h{d-1}", then one line per reference marker, position then d 0/1
// values, all whitespace-separated. Windows are cut every width
// markers.
func LoadPanel(filename string, width int) (*panel.ReferencePanel, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Panic(cerr)
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1<<20), 1<<24)
	if !scanner.Scan() {
		return nil, fmt.Errorf("ingest: empty panel file %q", filename)
	}
	header := strings.Fields(scanner.Text())
	if len(header) < 2 {
		return nil, fmt.Errorf("ingest: panel file %q has no haplotype columns", filename)
	}
	d := len(header) - 1

	var pos []int32
	var rows [][]int8
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != d+1 {
			return nil, fmt.Errorf("ingest: panel file %q: expected %d fields, got %d", filename, d+1, len(fields))
		}
		p, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("ingest: panel file %q: %w", filename, err)
		}
		row := make([]int8, d)
		for j, f := range fields[1:] {
			v, err := strconv.ParseInt(f, 10, 8)
			if err != nil || (v != 0 && v != 1) {
				return nil, fmt.Errorf("ingest: panel file %q: invalid allele %q at position %d", filename, f, p)
			}
			row[j] = int8(v)
		}
		pos = append(pos, int32(p))
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	rp := &panel.ReferencePanel{Pos: pos, D: d, Width: width}
	for start := 0; start < len(pos); start += width {
		end := start + width
		if end > len(pos) {
			end = len(pos)
		}
		n := end - start
		h := panel.NewBitHaplotypes(n, d)
		for i := 0; i < n; i++ {
			for j := 0; j < d; j++ {
				if rows[start+i][j] == 1 {
					h.Set(i, j)
				}
			}
		}
		hapmap := make([]int32, d)
		for j := range hapmap {
			hapmap[j] = int32(j)
		}
		rp.Windows = append(rp.Windows, &panel.Window{
			Index:      len(rp.Windows),
			Range:      intervals.Interval{Start: int32(start), End: int32(end)},
			UniqueH:    h,
			FullH:      h,
			Hapmap:     hapmap,
			TypedCount: n,
		})
	}
	return rp, nil
}

// LoadTargets reads a target genotype file: a header line "pos
// sample0 sample1 ...", then one line per typed marker, position then
// per-sample genotypes in {0, 1, 2, .} ('.' meaning missing).
func LoadTargets(filename string) (*target.Genotypes, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Panic(cerr)
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1<<20), 1<<24)
	if !scanner.Scan() {
		return nil, fmt.Errorf("ingest: empty target file %q", filename)
	}
	header := strings.Fields(scanner.Text())
	if len(header) < 2 {
		return nil, fmt.Errorf("ingest: target file %q has no sample columns", filename)
	}
	sampleID := header[1:]
	n := len(sampleID)

	var pos []int32
	var data []int8
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != n+1 {
			return nil, fmt.Errorf("ingest: target file %q: expected %d fields, got %d", filename, n+1, len(fields))
		}
		p, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("ingest: target file %q: %w", filename, err)
		}
		for _, f := range fields[1:] {
			if f == "." {
				data = append(data, target.Missing)
				continue
			}
			v, err := strconv.ParseInt(f, 10, 8)
			if err != nil || v < 0 || v > 2 {
				return nil, fmt.Errorf("ingest: target file %q: invalid genotype %q at position %d", filename, f, p)
			}
			data = append(data, int8(v))
		}
		pos = append(pos, int32(p))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &target.Genotypes{
		Pt:       len(pos),
		N:        n,
		Data:     data,
		Pos:      pos,
		SampleID: sampleID,
	}, nil
}

// WriteDosages writes the imputed dosage matrix as a tab-separated
// file: a header line "pos sample0 sample1 ...", then one line per
// reference marker.
func WriteDosages(filename string, pos []int32, sampleID []string, imputed interface {
	Dosage(row, col int) int8
}, p, n int) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Panic(cerr)
		}
	}()

	w := bufio.NewWriter(file)
	fmt.Fprint(w, "pos")
	for _, s := range sampleID {
		fmt.Fprint(w, "\t", s)
	}
	fmt.Fprintln(w)
	for r := 0; r < p; r++ {
		fmt.Fprint(w, pos[r])
		for c := 0; c < n; c++ {
			fmt.Fprint(w, "\t", imputed.Dosage(r, c))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
