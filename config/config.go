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

// Package config holds the pipeline's configuration options (spec §6).
package config

import "fmt"

// Config holds every tunable named in spec §6.
type Config struct {
	// Width is the window size in markers.
	Width int
	// Impute emits untyped markers in the output when true.
	Impute bool
	// DynamicProgramming selects DP mode for WindowConnector (true) or
	// set-intersection mode (false).
	DynamicProgramming bool
	// MaxHaplotypes is the thinning threshold: windows with more unique
	// haplotypes than this run PairSearch's thinning strategy first.
	MaxHaplotypes int
	// ThinningFactor, if non-zero, is the number of haplotypes retained
	// per individual per window before full search runs, when
	// d > MaxHaplotypes.
	ThinningFactor int
	// ThinningScaleAlleleFreq weights thinning scores by 1/altfreq.
	ThinningScaleAlleleFreq bool
	// Rescreen re-evaluates the top-k PairSearch candidates against
	// observed (non-imputed) data only.
	Rescreen bool
	// Lasso, if non-zero, selects the alternate large-window solver with
	// L1 penalty r. Zero disables it.
	Lasso float64
	// MinTypedSNPs is the minimum number of typed markers a window must
	// have; windows below this reuse the neighbouring window's pair.
	MinTypedSNPs int
	// Lambda is the DP switch-cost weight. Default sets it to 1.0; the
	// phase command's --lambda flag overrides it.
	Lambda float64
}

// Default returns the configuration spec §6 lists as defaults.
func Default() Config {
	return Config{
		Width:                   2048,
		Impute:                  true,
		DynamicProgramming:      true,
		MaxHaplotypes:           2000,
		ThinningFactor:          0,
		ThinningScaleAlleleFreq: false,
		Rescreen:                false,
		Lasso:                   0,
		MinTypedSNPs:            50,
		Lambda:                  1.0,
	}
}

// Validate rejects configurations that would make EmptyWindow
// unreachable-by-construction errors instead fail fatally up front
// (spec §7: "EmptyWindow ... must be caught at configuration time, not
// during compute").
func (c *Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("config: width must be positive, got %d", c.Width)
	}
	if c.MaxHaplotypes <= 0 {
		return fmt.Errorf("config: max_haplotypes must be positive, got %d", c.MaxHaplotypes)
	}
	if c.ThinningFactor < 0 {
		return fmt.Errorf("config: thinning_factor must be non-negative, got %d", c.ThinningFactor)
	}
	if c.MinTypedSNPs < 0 {
		return fmt.Errorf("config: min_typed_snps must be non-negative, got %d", c.MinTypedSNPs)
	}
	if c.Lasso < 0 {
		return fmt.Errorf("config: lasso must be non-negative, got %v", c.Lasso)
	}
	return nil
}
