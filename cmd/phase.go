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

package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/exascience/elphase/blas"
	"github.com/exascience/elphase/config"
	"github.com/exascience/elphase/ingest"
	"github.com/exascience/elphase/pipeline"
)

// PhaseHelp is the help string for the phase command.
const PhaseHelp = "Phase parameters:\n" +
	"elphase phase /path/to/panel.txt /path/to/targets.txt /path/to/output.txt\n" +
	"[--width nr]\n" +
	"[--impute]\n" +
	"[--dp]\n" +
	"[--max-haplotypes nr]\n" +
	"[--min-typed-snps nr]\n" +
	"[--thinning-factor nr]\n" +
	"[--rescreen]\n" +
	"[--lasso value]\n" +
	"[--lambda value]\n" +
	"[--blas-backend [native | netlib]]\n"

// Phase implements the elphase phase command: runs C1-C6 over a
// reference panel and target genotype file, writing the imputed
// dosage matrix to the given output file.
func Phase() error {
	var (
		width, maxHaplotypes, thinningFactor, minTypedSNPs int
		lambda, lasso                                      float64
		impute, dp, rescreen                               bool
		blasBackend                                        string
	)

	flags := flag.NewFlagSet("phase", flag.ContinueOnError)
	def := config.Default()
	flags.IntVar(&width, "width", def.Width, "window size in markers")
	flags.BoolVar(&impute, "impute", def.Impute, "emit untyped markers in the output")
	flags.BoolVar(&dp, "dp", def.DynamicProgramming, "use dynamic-programming window connector instead of set intersection")
	flags.IntVar(&maxHaplotypes, "max-haplotypes", def.MaxHaplotypes, "thinning threshold")
	flags.IntVar(&thinningFactor, "thinning-factor", def.ThinningFactor, "haplotypes retained per individual per window above max-haplotypes")
	flags.IntVar(&minTypedSNPs, "min-typed-snps", def.MinTypedSNPs, "minimum typed markers per window")
	flags.BoolVar(&rescreen, "rescreen", def.Rescreen, "rescreen top candidates against observed data only")
	flags.Float64Var(&lasso, "lasso", def.Lasso, "L1 penalty r for the alternate large-window solver; 0 disables it")
	flags.Float64Var(&lambda, "lambda", def.Lambda, "dynamic-programming switch-cost weight")
	flags.StringVar(&blasBackend, "blas-backend", "native", "BLAS backend for the dense pair-search products")

	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, PhaseHelp)
		os.Exit(1)
	}
	panelFile, targetFile, outputFile := os.Args[2], os.Args[3], os.Args[4]
	parseFlags(flags, 5, PhaseHelp)

	if !checkExist("panel file", panelFile) || !checkExist("target file", targetFile) {
		return fmt.Errorf("cmd: invalid input files")
	}
	if !checkBackend(blasBackend) {
		return fmt.Errorf("cmd: invalid blas backend %q", blasBackend)
	}

	cfg := config.Config{
		Width:                   width,
		Impute:                  impute,
		DynamicProgramming:      dp,
		MaxHaplotypes:           maxHaplotypes,
		ThinningFactor:          thinningFactor,
		ThinningScaleAlleleFreq: def.ThinningScaleAlleleFreq,
		Rescreen:                rescreen,
		Lasso:                   lasso,
		MinTypedSNPs:            minTypedSNPs,
		Lambda:                  lambda,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if blasBackend == "netlib" {
		blas.Use(blas.Netlib)
	} else {
		blas.Use(blas.Native)
	}

	rp, err := ingest.LoadPanel(panelFile, cfg.Width)
	if err != nil {
		return err
	}
	genotypes, err := ingest.LoadTargets(targetFile)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(rp, genotypes, cfg)
	if err != nil {
		return err
	}
	log.Printf("run %s: %d position mismatches, %d windows with insufficient typed markers",
		result.Summary.RunID, result.Summary.Issues.PositionMismatch, result.Summary.Issues.InsufficientTypedMarkers)

	if result.Imputed != nil {
		return ingest.WriteDosages(outputFile, rp.Pos, genotypes.SampleID, result.Imputed, result.Imputed.P, result.Imputed.N)
	}
	return nil
}
