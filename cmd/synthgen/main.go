package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"zymeboard/internal/testkit"
)

func main() {
	out := flag.String("out", "data/synthetic", "output directory")
	records := flag.Int("records", 500, "number of proteins")
	clusters := flag.Int("clusters", 6, "number of clusters")
	noiseEvery := flag.Int("noise-every", 17, "label every n-th protein as noise (-1); 0 disables")
	format := flag.String("format", testkit.FormatParquet, "table format: parquet, csv or xlsx")
	combined := flag.Bool("combined", false, "write a single X_red_mst_slc.npz instead of two archives")
	card := flag.String("card", "", "optional markdown written as README.md")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	flag.Parse()

	if *records < 2 {
		fmt.Fprintln(os.Stderr, "records must be >= 2")
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	switch fmtName {
	case testkit.FormatParquet, testkit.FormatCSV, testkit.FormatXLSX:
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}

	cfg := testkit.DefaultConfig()
	cfg.Records = *records
	cfg.Clusters = *clusters
	cfg.NoiseEvery = *noiseEvery
	cfg.Seed = *seed

	res, err := testkit.Generate(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating results:", err)
		os.Exit(1)
	}

	opts := testkit.WriteOptions{TableFormat: fmtName, Combined: *combined, Card: *card}
	if err := testkit.WriteDir(*out, res, opts); err != nil {
		fmt.Fprintln(os.Stderr, "error writing results:", err)
		os.Exit(1)
	}

	fmt.Printf("Synthetic results written to %s\n", *out)
	fmt.Printf("Proteins: %d | Tree edges: %d | Merges: %d\n", res.Dataset.Len(), len(res.Tree.Edges), len(res.Linkage.Steps))
}
