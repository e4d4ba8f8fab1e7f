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
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/exascience/elphase/internal"
	"github.com/exascience/elphase/utils"
)

// ProgramMessage is the first line printed when the elphase binary is
// called.
var ProgramMessage string

func init() {
	ProgramMessage = fmt.Sprint(
		"\n", utils.ProgramName, " version ", utils.ProgramVersion,
		" compiled with ", runtime.Version(), " - see ", utils.ProgramURL,
		" for more information.\n",
	)
}

// HelpMessage is printed to show the --help flag.
const HelpMessage = "Print command details:\n" +
	"[--help]\n"

func parseFlags(flags *flag.FlagSet, requiredArgs int, help string) {
	if len(os.Args) < requiredArgs {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
	flags.SetOutput(io.Discard)
	if err := flags.Parse(os.Args[requiredArgs:]); err != nil {
		x := 0
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			x = 1
		}
		fmt.Fprint(os.Stderr, help)
		os.Exit(x)
	}
	if flags.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Cannot parse remaining parameters:", flags.Args())
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
}

func checkExist(parameter, filename string) bool {
	if len(filename) == 0 {
		log.Printf("Error: Missing filename for command line parameter %v.\n", parameter)
		return false
	}
	if _, err := os.Stat(filename); err != nil {
		log.Printf("Error: %v for command line parameter %v.\n", err, parameter)
		return false
	}
	if full, err := internal.FullPathname(filename); err == nil {
		log.Printf("Using %v for command line parameter %v.\n", full, parameter)
	}
	return true
}

func checkBackend(backend string) bool {
	switch strings.ToLower(backend) {
	case "", "native", "netlib":
		return true
	default:
		log.Printf("Error: Invalid blas backend %v.\n", backend)
		return false
	}
}
