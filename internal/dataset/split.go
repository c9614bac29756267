package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"path/filepath"

	"dataset-resplit/internal/fsutil"
)

// DefaultSeed is the seed used when none is configured. With a fixed
// seed, identical pools and ratios always produce the same assignment.
const DefaultSeed = 42

// ratioTolerance absorbs float representation error when checking that
// the three ratios sum to 1.
const ratioTolerance = 1e-9

// Ratios are the target train/validation/test proportions.
type Ratios struct {
	Train float64
	Val   float64
	Test  float64
}

// Validate checks the ratios before any file I/O happens: each must be
// in [0, 1] and together they must sum to 1.
func (r Ratios) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"train_ratio", r.Train},
		{"val_ratio", r.Val},
		{"test_ratio", r.Test},
	} {
		if v.value < 0 || v.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %g", v.name, v.value)
		}
	}
	if sum := r.Train + r.Val + r.Test; math.Abs(sum-1) > ratioTolerance {
		return fmt.Errorf("ratios must sum to 1, got %g", sum)
	}
	return nil
}

// Splitter repartitions a flat image pool and label pool into
// train/valid/test folders. Files are moved, not copied: the pools are
// emptied as a side effect.
type Splitter struct {
	log     *slog.Logger
	seed    int64
	pattern string
}

// NewSplitter creates a Splitter using the given seed for the shuffle.
func NewSplitter(logger *slog.Logger, seed int64, pattern string) *Splitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Splitter{log: logger, seed: seed, pattern: pattern}
}

// SplitSummary reports how many matched pairs landed in each bucket.
type SplitSummary struct {
	Train int
	Val   int
	Test  int
}

// Split validates the ratios, scaffolds the output tree, matches
// images to labels by base name, computes the seeded split, and moves
// every matched pair into its assigned bucket.
//
// Images without a label never reach any output split. A matched file
// that vanishes between listing and relocation is a hard error: a
// silently incomplete partition would be worse than an aborted run.
func (s *Splitter) Split(imageDir, labelDir, outputDir string, r Ratios) (*SplitSummary, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	for _, split := range SplitNames {
		for _, sub := range []string{"images", "labels"} {
			if err := fsutil.EnsureDir(filepath.Join(outputDir, split, sub)); err != nil {
				return nil, fmt.Errorf("create output directory: %w", err)
			}
		}
	}

	images, err := ListPool(imageDir, s.pattern)
	if err != nil {
		return nil, fmt.Errorf("list image pool %s: %w", imageDir, err)
	}
	labels, err := ListPool(labelDir, "*"+LabelExt)
	if err != nil {
		return nil, fmt.Errorf("list label pool %s: %w", labelDir, err)
	}

	pairs := MatchPairs(images, labels)
	s.log.Debug("matched pairs",
		slog.Int("images", len(images)),
		slog.Int("labels", len(labels)),
		slog.Int("matched", len(pairs)))

	train, val, test := s.partition(pairs, r)

	buckets := []struct {
		name  string
		pairs []Pair
	}{
		{"train", train},
		{"valid", val},
		{"test", test},
	}
	for _, b := range buckets {
		if err := relocate(b.pairs, imageDir, labelDir, filepath.Join(outputDir, b.name)); err != nil {
			return nil, err
		}
	}

	summary := &SplitSummary{Train: len(train), Val: len(val), Test: len(test)}
	s.log.Info("split complete",
		slog.Int("train", summary.Train),
		slog.Int("valid", summary.Val),
		slog.Int("test", summary.Test))
	return summary, nil
}

// partition assigns every matched pair to exactly one bucket using a
// two-stage shuffle-then-cut: first train vs held-out (val+test), then
// validation vs test within the held-out group. Both stages use a
// Fisher-Yates shuffle seeded with the configured seed, so the
// assignment is a pure function of pool contents, ratios, and seed.
func (s *Splitter) partition(pairs []Pair, r Ratios) (train, val, test []Pair) {
	shuffled := make([]Pair, len(pairs))
	copy(shuffled, pairs)
	shuffle(shuffled, rand.New(rand.NewSource(s.seed)))

	held := int(math.Round(float64(len(shuffled)) * (r.Val + r.Test)))
	train = shuffled[:len(shuffled)-held]
	rest := shuffled[len(shuffled)-held:]

	// An empty held-out group also covers val=test=0, where the
	// second stage's fraction would be undefined.
	if held == 0 {
		return train, nil, nil
	}

	testCount := int(math.Round(float64(held) * (r.Test / (r.Val + r.Test))))
	// Fresh generator so the second cut does not depend on how much
	// randomness the first stage consumed.
	shuffle(rest, rand.New(rand.NewSource(s.seed)))
	return train, rest[:held-testCount], rest[held-testCount:]
}

// shuffle is an explicit Fisher-Yates so the permutation depends only
// on the generator's output sequence, not on library internals.
func shuffle(pairs []Pair, rng *rand.Rand) {
	for i := len(pairs) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		pairs[i], pairs[j] = pairs[j], pairs[i]
	}
}

// relocate moves each pair's image and label into the bucket directory.
func relocate(pairs []Pair, imageDir, labelDir, bucketDir string) error {
	for _, p := range pairs {
		src := filepath.Join(imageDir, p.Image)
		if err := fsutil.MoveFile(src, filepath.Join(bucketDir, "images", p.Image)); err != nil {
			return fmt.Errorf("move image %s: %w", p.Image, err)
		}
		if err := fsutil.MoveFile(filepath.Join(labelDir, p.Label), filepath.Join(bucketDir, "labels", p.Label)); err != nil {
			return fmt.Errorf("move label %s: %w", p.Label, err)
		}
	}
	return nil
}
