package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ironsheep/colorsquares/internal/detection"
	"github.com/ironsheep/colorsquares/internal/imaging"
)

type batchOptions struct {
	outDir   string
	annotate bool
	jsonDest string
	workers  int
}

// imageResult is the outcome of one input image.
type imageResult struct {
	path   string
	output string // base name of the files written for this image
	set    *detection.DetectionSet
	err    error
}

// processAll runs the detector over paths on a bounded pool of workers.
// Results are returned in input order regardless of completion order.
func processAll(det *detection.Detector, paths []string, opts batchOptions) []imageResult {
	results := make([]imageResult, len(paths))
	names := outputNames(paths)

	workers := opts.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	cache := imaging.NewImageCache(workers)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				set, err := processImage(det, cache, paths[i], names[i], opts)
				results[i] = imageResult{path: paths[i], output: names[i], set: set, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// processImage detects squares in one file and writes its outputs under the
// base name base.
func processImage(det *detection.Detector, cache *imaging.ImageCache, path, base string, opts batchOptions) (*detection.DetectionSet, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	// Each image is visited once; keep memory flat across large batches.
	defer cache.Evict(path)

	set, err := det.Detect(img, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to detect squares in %s: %w", path, err)
	}

	if opts.jsonDest == "" {
		if err := writeJSON(set, filepath.Join(opts.outDir, base+".json")); err != nil {
			return nil, err
		}
	}
	if opts.annotate {
		if err := imaging.Save(detection.Annotate(img, set), filepath.Join(opts.outDir, base+"_annotated.png")); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// outputBase is the input file name without directory or extension.
func outputBase(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// outputNames picks a distinct output base name for every path, in input
// order. The first image with a given base name keeps it; later ones get
// _2, _3 and so on, skipping names already taken.
func outputNames(paths []string) []string {
	names := make([]string, len(paths))
	taken := make(map[string]bool, len(paths))
	for i, p := range paths {
		base := outputBase(p)
		name := base
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func writeJSON(set *detection.DetectionSet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := set.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
