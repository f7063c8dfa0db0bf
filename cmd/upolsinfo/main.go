// Command upolsinfo builds a dsp/upols/routing.Convolver from a JSON
// routing/IR description and prints its partition layout and route table.
//
// Usage:
//
//	upolsinfo [flags] <config.json>
//
// Example config.json:
//
//	{
//	  "numInputs": 2, "numOutputs": 2,
//	  "blockLength": 256, "maxFilterLen": 2048, "maxFilters": 4,
//	  "alignment": 1, "fftBackend": "default",
//	  "irLibrary": "hall.upil",
//	  "routes": [
//	    {"in": [0, 1], "out": [0, 1], "filter": 0, "gain": 1.0}
//	  ]
//	}
//
// This is host glue around THE CORE's programmatic interface, not part of
// it: the engine itself has no file I/O or CLI surface.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-dsp/dsp/upols/core"
	"github.com/cwbudde/algo-dsp/dsp/upols/irfile"
	"github.com/cwbudde/algo-dsp/dsp/upols/routing"
)

func main() {
	watch := flag.Bool("watch", false, "after printing the table, open a live route/cross-fade meter")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: upolsinfo [flags] <config.json>\n\n")
		fmt.Fprintf(os.Stderr, "Builds a routing.Convolver from a JSON routing/IR description\n")
		fmt.Fprintf(os.Stderr, "and prints its partition layout and route table.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	rc, err := buildConvolver(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printLayout(cfg, rc)
	printRoutes(rc)

	if *watch {
		if err := runWatch(rc); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Alignment <= 0 {
		cfg.Alignment = 1
	}
	if cfg.FFTBackend == "" {
		cfg.FFTBackend = "default"
	}
	return &cfg, nil
}

func loadInitialFilters(cfg *config) ([][]float64, error) {
	if cfg.IRLibrary == "" {
		return nil, nil
	}
	f, err := os.Open(cfg.IRLibrary)
	if err != nil {
		return nil, fmt.Errorf("open IR library: %w", err)
	}
	defer f.Close()

	rd, err := irfile.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read IR library: %w", err)
	}

	n := rd.Count()
	if n > cfg.MaxFilters {
		n = cfg.MaxFilters
	}
	filters := make([][]float64, n)
	for i := 0; i < n; i++ {
		e, err := rd.Load(i)
		if err != nil {
			return nil, fmt.Errorf("load IR entry %d: %w", i, err)
		}
		row, err := irfile.ToFilterMatrix[float64](e, 0)
		if err != nil {
			return nil, fmt.Errorf("IR entry %d: %w", i, err)
		}
		filters[i] = row
	}
	return filters, nil
}

func buildConvolver(cfg *config) (*routing.Convolver[float64, complex128], error) {
	initialFilters, err := loadInitialFilters(cfg)
	if err != nil {
		return nil, err
	}

	c, err := core.NewCore[float64, complex128](
		cfg.NumInputs, cfg.NumOutputs, cfg.BlockLength, cfg.MaxFilterLen, cfg.MaxFilters,
		initialFilters, cfg.Alignment, cfg.FFTBackend,
	)
	if err != nil {
		return nil, fmt.Errorf("build core: %w", err)
	}

	maxRoutings := cfg.NumInputs * cfg.NumOutputs
	rc, err := routing.NewConvolver(c, maxRoutings)
	if err != nil {
		return nil, fmt.Errorf("build routing convolver: %w", err)
	}

	for _, spec := range cfg.Routes {
		entries, err := spec.expand()
		if err != nil {
			return nil, fmt.Errorf("route: %w", err)
		}
		for _, e := range entries {
			if err := rc.Table().SetEntry(e.In, e.Out, spec.Filter, e.Gain, cfg.NumInputs, cfg.NumOutputs, cfg.MaxFilters); err != nil {
				return nil, fmt.Errorf("route in=%d out=%d: %w", e.In, e.Out, err)
			}
		}
	}

	return rc, nil
}

func printLayout(cfg *config, rc *routing.Convolver[float64, complex128]) {
	c := rc.Core()
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Inputs\tOutputs\tBlock\tMax Filter Len\tMax Filters\tPartitions\tDFT Bins\tBackend\n")
	fmt.Fprintf(tw, "------\t-------\t-----\t--------------\t-----------\t----------\t--------\t-------\n")
	fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
		c.NumInputs(), c.NumOutputs(), c.BlockLength(), c.MaxFilterLen(), c.MaxFilters(),
		c.NumPartitions(), c.DFTBins(), cfg.FFTBackend,
	)
	tw.Flush()
	fmt.Println()
}

func printRoutes(rc *routing.Convolver[float64, complex128]) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "In\tOut\tFilter\tGain\n")
	fmt.Fprintf(tw, "--\t---\t------\t----\n")
	for _, e := range rc.Table().Entries() {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.4f\n", e.InIdx, e.OutIdx, e.FilterIdx, e.Gain)
	}
	tw.Flush()
}
