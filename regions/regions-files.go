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

package regions

import (
	"bufio"
	"log"
	"os"
	"strings"

	"github.com/exascience/elphase/internal"
	"github.com/exascience/elphase/utils"
)

// ParseFile parses a BED-like region-restriction file: three
// tab-separated columns, chrom, start, end, any further columns
// ignored. Lines starting with "#", "track", or "browser" are skipped.
func ParseFile(filename string) (*Set, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Panic(cerr)
		}
	}()

	set := NewSet()
	scanner := bufio.NewScanner(bufio.NewReader(file))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") ||
			strings.HasPrefix(line, "browser") ||
			line == "" {
			continue
		}
		data := strings.SplitN(line, "\t", 4)
		if len(data) < 3 {
			continue
		}
		chrom := utils.Intern(data[0])
		start := internal.ParseInt(data[1], 10, 32)
		end := internal.ParseInt(data[2], 10, 32)
		set.Add(&Region{Chrom: chrom, Start: int32(start), End: int32(end)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	set.Sort()
	return set, nil
}
