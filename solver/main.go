// The MIT License (MIT)
//
// # Copyright (c) 2025 eukaryo
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/eukaryo/connect4-semi-strong-experiment/std"
)

// canonicalTTCap is the slot count the reference run was sized with. Any
// positive capacity works; smaller tables run at higher occupancy.
const canonicalTTCap = (1 << 33) + (1 << 32)

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		// Enable timestamps + file:line to simplify debugging self-built binaries.
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "c4solver"
	myApp.Usage = "connect-four strong-solver driver (WDL oracle + alpha-beta prover)"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "wdl,w",
			Value: "./wdl.out",
			Usage: "path to the WDL oracle binary",
		},
		cli.StringFlag{
			Name:  "solution,s",
			Value: "solution_w7_h6",
			Usage: "oracle solution directory",
		},
		cli.BoolFlag{
			Name:  "mmap",
			Usage: "let the oracle mmap its solution instead of loading it up front",
		},
		cli.Int64Flag{
			Name:  "ttcap",
			Value: canonicalTTCap,
			Usage: "transposition table slot count, any positive integer",
		},
		cli.StringFlag{
			Name:  "opening",
			Value: "",
			Usage: `move sequence to search from, eg: "44" (empty = initial position)`,
		},
		cli.StringFlag{
			Name:  "histogram",
			Value: "",
			Usage: "write the depth histogram csv to a file, default goes to stdout",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "to suppress the startup banner",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "", // when set, the JSON file must exist on disk
			Usage: "config from json file, which will override the command from shell",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.WdlBin = c.String("wdl")
		config.Solution = c.String("solution")
		config.Mmap = c.Bool("mmap")
		config.TTCap = c.Int64("ttcap")
		config.Opening = c.String("opening")
		config.Histogram = c.String("histogram")
		config.Log = c.String("log")
		config.Quiet = c.Bool("quiet")

		if c.String("c") != "" {
			// Only JSON configuration files are supported at the moment.
			err := parseJSONConfig(&config, c.String("c"))
			checkError(err)
		}

		// Redirect logs when the user supplied a dedicated log file.
		if config.Log != "" {
			f, err := os.OpenFile(config.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			checkError(err)
			defer f.Close()
			log.SetOutput(f)
		}

		if !config.Quiet {
			log.Println("version:", VERSION)
			log.Println("wdl oracle:", config.WdlBin)
			log.Println("solution:", config.Solution)
			log.Println("mmap:", config.Mmap)
			log.Println("ttcap:", config.TTCap)
			log.Println("opening:", config.Opening)
			log.Println("histogram:", config.Histogram)
		}

		if config.TTCap < canonicalTTCap {
			color.Red("TT Warning: ttcap %d is below the canonical %d slots, a full-game run may abort with a full table", config.TTCap, int64(canonicalTTCap))
		}

		tt, err := std.NewTransTable(config.TTCap)
		checkError(err)

		srv, err := std.StartWdlServer(config.WdlBin, config.Solution, config.Mmap)
		checkError(err)

		// Warm-up query: pages the oracle's solution in before the search
		// clock starts, and verifies the opening is a position it knows.
		if _, err := srv.Query(config.Opening); err != nil {
			srv.Close()
			checkError(err)
		}

		engine := std.NewEngine(tt, srv)

		log.Println("starting search")
		value, err := engine.Search(config.Opening, -1, 1)
		if err != nil {
			srv.Close()
			checkError(err)
		}
		log.Println("search completed. value =", value, ", transposition table size =", tt.Size())

		checkError(srv.Close())

		counts, err := std.DepthHistogram(tt)
		checkError(err)

		out := os.Stdout
		if config.Histogram != "" {
			f, err := os.OpenFile(config.Histogram, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
			checkError(err)
			defer f.Close()
			out = f
		}
		checkError(std.WriteHistogram(out, counts))

		log.Println("program finished")
		return nil
	}
	myApp.Run(os.Args)
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
