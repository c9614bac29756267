// Package dataset implements the combine-and-repartition pipeline:
// merging per-split image/label folders into flat pools and splitting
// the pools back into train/valid/test sets.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SplitNames are the split folders processed by the pipeline, in the
// order they are read. The order matters for collision semantics: a
// later split overwrites an earlier split's same-named file.
var SplitNames = []string{"train", "valid", "test"}

// LabelExt is the extension label files are expected to carry.
const LabelExt = ".txt"

// Pair is an image and its label, joined by base name.
type Pair struct {
	Image string
	Label string
}

// ListPool lists the regular files in dir, optionally filtered by a
// doublestar pattern (e.g. "*.{jpg,png}"). Hidden files are skipped.
// The result is sorted lexicographically so downstream seeded
// shuffling is reproducible.
func ListPool(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if pattern != "" {
			ok, err := doublestar.Match(pattern, entry.Name())
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	return names, nil
}

// BaseName strips the extension from a filename; it is the join key
// between an image and its label.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// LabelFor returns the label filename corresponding to an image.
func LabelFor(image string) string {
	return BaseName(image) + LabelExt
}

// MatchPairs keeps, in listing order, the images whose base name also
// appears among the labels. Images without a label are dropped; the
// combine stage already warned about them.
func MatchPairs(images, labels []string) []Pair {
	bases := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		bases[BaseName(label)] = struct{}{}
	}

	var pairs []Pair
	for _, image := range images {
		if _, ok := bases[BaseName(image)]; ok {
			pairs = append(pairs, Pair{Image: image, Label: LabelFor(image)})
		}
	}
	return pairs
}
