package main

// Example command that demonstrates iterating a record directory with a
// training generator and a validation generator, and converting batches into
// gomlx tensors.
//
// Records are read lazily: the generator only stores the directory listing
// and opens each record file when it is needed for a batch.
//
// Usage:
//   go run ./example -dir ../data/simulated
//
// The directory must contain only records written by records.Save.

import (
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/Noofbiz/rabani/datasets"
)

func main() {
	dir := flag.String("dir", "../data/simulated", "directory of simulation records")
	batchSize := flag.Int("batch-size", 8, "batch size")
	flag.Parse()

	// Training generator: shuffled order, augmentations and binarisation.
	cfg := datasets.DefaultConfig(*dir)
	cfg.BatchSize = *batchSize
	trainDS, err := datasets.NewGenerator(cfg)
	if err != nil {
		log.Fatalf("failed to create training generator: %v", err)
	}
	fmt.Printf("Using record directory: %s\n", *dir)
	fmt.Printf("Batches per epoch: %d (images %dx%d)\n", trainDS.Len(), trainDS.ImageRes(), trainDS.ImageRes())
	fmt.Printf("Class weights: %v\n", trainDS.ClassWeights())

	// Yield is what a gomlx training loop calls.
	_, inputs, labels, err := trainDS.Yield()
	if err != nil {
		log.Fatalf("failed to yield a training batch: %v", err)
	}
	fmt.Printf("Created training tensors: input=%s label=%s\n", inputs[0].Shape(), labels[0].Shape())
	trainDS.Reset()

	fmt.Println()

	// Validation generator: sorted order, every record exactly once per pass.
	valCfg := cfg
	valCfg.Train = false
	valDS, err := datasets.NewGenerator(valCfg)
	if err != nil {
		log.Fatalf("failed to create validation generator: %v", err)
	}
	acc := valDS.NewAccumulator()
	if err := valDS.AttachAccumulator(acc); err != nil {
		log.Fatalf("failed to attach accumulator: %v", err)
	}
	for {
		_, _, _, err := valDS.Yield()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("failed to yield a validation batch: %v", err)
		}
	}
	fmt.Printf("Validation pass complete=%v: %d images accumulated\n", acc.Complete(), acc.Rows())
	if acc.Rows() > 0 {
		fmt.Printf("  First image label index: %d\n", acc.Label(0))
	}

	fmt.Println("\nExample completed successfully!")
}
