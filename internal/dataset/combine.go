package dataset

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"dataset-resplit/internal/fsutil"
)

// Combiner merges the images and labels of the pre-existing
// train/valid/test folders into one flat image pool and one flat label
// pool. Originals are copied, never moved.
type Combiner struct {
	log     *slog.Logger
	workers int
	pattern string
}

// NewCombiner creates a Combiner. workers bounds the number of
// concurrent copies per split; pattern filters which image files are
// picked up.
func NewCombiner(logger *slog.Logger, workers int, pattern string) *Combiner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Combiner{log: logger, workers: workers, pattern: pattern}
}

// CombineReport summarizes a combine run.
type CombineReport struct {
	Images     int      // image files copied into the pool
	Labels     int      // label files copied into the pool
	Orphans    []string // images that had no label file
	Collisions []string // images that overwrote a same-named file from an earlier split
}

// Combine reads each split folder under dataDir and copies its images
// into imageDir and the matching labels into labelDir.
//
// An image without a <base>.txt label is copied anyway and reported as
// an orphan; it will be excluded again at partition time. A filename
// already present in the pool is overwritten (last writer wins) and
// reported as a collision. A split folder that cannot be read is fatal.
func (c *Combiner) Combine(dataDir, imageDir, labelDir string) (*CombineReport, error) {
	if err := fsutil.EnsureDir(imageDir); err != nil {
		return nil, fmt.Errorf("create image pool %s: %w", imageDir, err)
	}
	if err := fsutil.EnsureDir(labelDir); err != nil {
		return nil, fmt.Errorf("create label pool %s: %w", labelDir, err)
	}

	report := &CombineReport{}
	for _, split := range SplitNames {
		if err := c.combineSplit(dataDir, split, imageDir, labelDir, report); err != nil {
			return nil, err
		}
	}

	c.log.Info("combine complete",
		slog.Int("images", report.Images),
		slog.Int("labels", report.Labels),
		slog.Int("orphans", len(report.Orphans)),
		slog.Int("collisions", len(report.Collisions)))
	return report, nil
}

func (c *Combiner) combineSplit(dataDir, split, imageDir, labelDir string, report *CombineReport) error {
	srcImages := filepath.Join(dataDir, split, "images")
	srcLabels := filepath.Join(dataDir, split, "labels")

	names, err := ListPool(srcImages, c.pattern)
	if err != nil {
		return fmt.Errorf("read split %s: %w", split, err)
	}
	c.log.Debug("combining split", slog.String("split", split), slog.Int("files", len(names)))

	sem := fsutil.NewSemaphore(c.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := make(chan error, len(names))

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem.Acquire()
			defer sem.Release()

			dst := filepath.Join(imageDir, name)
			if fsutil.Exists(dst) {
				c.log.Warn("overwriting same-named file from an earlier split",
					slog.String("split", split), slog.String("file", name))
				mu.Lock()
				report.Collisions = append(report.Collisions, name)
				mu.Unlock()
			}
			if err := fsutil.CopyFile(filepath.Join(srcImages, name), dst); err != nil {
				errs <- fmt.Errorf("copy image %s: %w", name, err)
				return
			}
			mu.Lock()
			report.Images++
			mu.Unlock()

			labelName := LabelFor(name)
			labelSrc := filepath.Join(srcLabels, labelName)
			if !fsutil.Exists(labelSrc) {
				c.log.Warn("label file not found for image",
					slog.String("split", split), slog.String("image", name))
				mu.Lock()
				report.Orphans = append(report.Orphans, name)
				mu.Unlock()
				return
			}
			if err := fsutil.CopyFile(labelSrc, filepath.Join(labelDir, labelName)); err != nil {
				errs <- fmt.Errorf("copy label %s: %w", labelName, err)
				return
			}
			mu.Lock()
			report.Labels++
			mu.Unlock()
		}(name)
	}

	wg.Wait()
	close(errs)

	if err, ok := <-errs; ok {
		return err
	}
	return nil
}
