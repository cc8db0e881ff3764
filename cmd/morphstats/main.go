// Command morphstats builds the classical feature table of a record directory:
// one CSV row per image with its ground-truth category, the heuristic
// topological category and the scale-invariant descriptors SIA, SIP and SIE.
//
// Usage:
//
//	morphstats -dir data/validation -out output/features.csv
//
// A JSON file holding a datasets.Config can be passed with -config; explicit
// flags override its values.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Noofbiz/rabani/datasets"
	"github.com/Noofbiz/rabani/features"
	"github.com/Noofbiz/rabani/records"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	dir := flag.String("dir", "", "directory of simulation records (required unless set in -config)")
	configPath := flag.String("config", "", "path to a JSON generator configuration (optional)")
	batchSize := flag.Int("batch-size", 128, "number of records held in memory at once")
	imageSize := flag.Int("image-size", 0, "canonical image resolution (0 = read from the first record)")
	maxImages := flag.Int("max-images", 5000, "maximum number of images in the table (0 = whole directory)")
	categories := flag.String("categories", "", "comma-separated categories (default liquid,hole,cellular,labyrinth,island)")
	parameters := flag.String("parameters", "", "comma-separated simulation parameters to copy into the table, e.g. kT,mu")
	seed := flag.Uint64("seed", 0, "random seed for binarisation (0 = time based)")
	out := flag.String("out", "output/features.csv", "output CSV path, '-' for stdout")
	printEffectiveConfig := flag.Bool("print-effective-config", false, "print the effective (JSON+CLI merged) configuration and exit")
	flag.Parse()
	defer klog.Flush()

	cfg := datasets.Config{
		Mode:      datasets.Classifier,
		BatchSize: *batchSize,
		ImageSize: *imageSize,
	}
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			klog.Fatalf("failed to read config %s: %v", *configPath, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			klog.Fatalf("failed to parse config %s: %v", *configPath, err)
		}
		klog.Infof("Loaded generator config from %s", *configPath)
	}

	// Explicit flags win over the JSON file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			cfg.Dir = *dir
		case "batch-size":
			cfg.BatchSize = *batchSize
		case "image-size":
			cfg.ImageSize = *imageSize
		case "seed":
			cfg.Seed = *seed
		case "parameters":
			cfg.Parameters = strings.Split(*parameters, ",")
		case "categories":
			cats, err := records.ParseCategories(strings.Split(*categories, ","))
			if err != nil {
				klog.Fatalf("invalid -categories: %v", err)
			}
			cfg.Categories = cats
		}
	})
	if cfg.Dir == "" {
		klog.Fatalf("no record directory: pass -dir or set \"dir\" in -config")
	}
	cfg.Mode = datasets.Classifier
	cfg.Train = false
	cfg.ForceBinarisation = true

	if *printEffectiveConfig {
		effective, err := cfg.WithDefaults()
		if err != nil {
			klog.Fatalf("invalid configuration: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(effective); err != nil {
			klog.Fatalf("failed to print config: %v", err)
		}
		os.Exit(0)
	}

	gen, err := datasets.NewGenerator(cfg)
	if err != nil {
		klog.Fatalf("failed to create generator: %v", err)
	}
	numBatches := gen.Len()
	if *maxImages > 0 {
		numBatches = min(numBatches, *maxImages/cfg.BatchSize)
	}
	rows := gen.Len() * cfg.BatchSize
	res := gen.ImageRes()
	klog.Infof("%s: %d batches of %d images at %dx%d, accumulator holds %s",
		gen.Name(), gen.Len(), cfg.BatchSize, res, res, humanize.Bytes(uint64(rows*res*res*4)))

	pBar := progressbar.NewOptions(numBatches,
		progressbar.OptionSetDescription("Extracting descriptors"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("batches"),
	)
	table, err := features.Build(gen, features.Options{MaxImages: *maxImages, Progress: pBar})
	if err != nil {
		klog.Fatalf("failed to build feature table: %v", err)
	}
	_ = pBar.Finish()
	fmt.Println()

	if err := writeTable(*out, table, gen.Config().Parameters); err != nil {
		klog.Fatalf("failed to write %s: %v", *out, err)
	}
	klog.Infof("Wrote %s rows to %s", humanize.Comma(int64(len(table))), *out)

	cats := gen.Config().Categories
	fmt.Printf("Heuristic agreement with ground truth: %.1f%%\n", 100*features.Agreement(table))
	confusion := features.Confusion(table, cats)
	fmt.Printf("%-10s", "truth")
	for _, c := range cats {
		fmt.Printf("%10s", c)
	}
	fmt.Printf("%10s\n", "other")
	for i, c := range cats {
		fmt.Printf("%-10s", c)
		for j := 0; j <= len(cats); j++ {
			fmt.Printf("%10.0f", confusion.At(i, j))
		}
		fmt.Println()
	}
}

func writeTable(path string, table []features.Row, params []string) error {
	if path == "-" {
		return features.WriteCSV(os.Stdout, table, params)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := features.WriteCSV(f, table, params); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
