// Command resplit prepares a supervised image dataset for training:
// it merges pre-existing train/valid/test folders into flat image and
// label pools and repartitions them into new splits by configurable
// ratios, plus the per-file transforms (background masking,
// compositing) that feed the pools.
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dataset-resplit/internal/archive"
	"dataset-resplit/internal/config"
	"dataset-resplit/internal/dataset"
	"dataset-resplit/internal/fsutil"
	"dataset-resplit/internal/transform"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "resplit",
		Short:         "Combine and repartition an image dataset",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file (resplit.yaml is picked up when present)")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(newCombineCmd())
	root.AddCommand(newSplitCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newMaskCmd())
	root.AddCommand(newCompositeCmd())
	return root
}

// newLogger builds the run logger; every invocation gets its own run id
// so interleaved logs from repeated runs can be told apart.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return logger.With(slog.String("run_id", uuid.NewString()))
}

// loadConfig resolves the effective configuration: defaults, then the
// config file, then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" && fsutil.Exists(config.DefaultFile) {
		path = config.DefaultFile
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	overrideFromFlags(cmd.Flags(), cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overrideFromFlags applies every explicitly set flag on top of the
// loaded config. Only flags the command actually declares are checked.
func overrideFromFlags(f *pflag.FlagSet, cfg *config.Config) {
	stringFlag := func(name string, dst *string) {
		if fl := f.Lookup(name); fl != nil && fl.Changed {
			*dst, _ = f.GetString(name)
		}
	}
	floatFlag := func(name string, dst *float64) {
		if fl := f.Lookup(name); fl != nil && fl.Changed {
			*dst, _ = f.GetFloat64(name)
		}
	}
	intFlag := func(name string, dst *int) {
		if fl := f.Lookup(name); fl != nil && fl.Changed {
			*dst, _ = f.GetInt(name)
		}
	}
	int64Flag := func(name string, dst *int64) {
		if fl := f.Lookup(name); fl != nil && fl.Changed {
			*dst, _ = f.GetInt64(name)
		}
	}
	boolFlag := func(name string, dst *bool) {
		if fl := f.Lookup(name); fl != nil && fl.Changed {
			*dst, _ = f.GetBool(name)
		}
	}

	stringFlag("data-dir", &cfg.DataDir)
	stringFlag("image-dir", &cfg.ImageDir)
	stringFlag("label-dir", &cfg.LabelDir)
	stringFlag("output-dir", &cfg.OutputDir)
	floatFlag("train-ratio", &cfg.TrainRatio)
	floatFlag("val-ratio", &cfg.ValRatio)
	floatFlag("test-ratio", &cfg.TestRatio)
	int64Flag("seed", &cfg.Seed)
	intFlag("copy-workers", &cfg.CopyWorkers)
	stringFlag("image-pattern", &cfg.ImagePattern)
	boolFlag("tar", &cfg.TarOutput)
}

func addPoolFlags(f *pflag.FlagSet, def *config.Config) {
	f.String("data-dir", "", "root directory holding the train/valid/test split folders")
	f.String("image-dir", "", "flat image pool (default <data-dir>/all_images)")
	f.String("label-dir", "", "flat label pool (default <data-dir>/all_labels)")
	f.String("image-pattern", def.ImagePattern, "glob pattern selecting image files")
}

func addSplitFlags(f *pflag.FlagSet, def *config.Config) {
	f.String("output-dir", "", "destination for the new train/valid/test folders")
	f.Float64("train-ratio", def.TrainRatio, "fraction of pairs assigned to train")
	f.Float64("val-ratio", def.ValRatio, "fraction of pairs assigned to valid")
	f.Float64("test-ratio", def.TestRatio, "fraction of pairs assigned to test")
	f.Int64("seed", def.Seed, "shuffle seed; identical inputs and seed reproduce the split")
	f.Bool("tar", def.TarOutput, "archive the output tree to <output-dir>.tar afterwards")
}

func newCombineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Merge per-split images and labels into flat pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DataDir == "" {
				return fmt.Errorf("data directory is required (--data-dir)")
			}
			logger := newLogger(cmd)
			combiner := dataset.NewCombiner(logger, cfg.CopyWorkers, cfg.ImagePattern)
			_, err = combiner.Combine(cfg.DataDir, cfg.ImageDir, cfg.LabelDir)
			return err
		},
	}
	def := config.Default()
	addPoolFlags(cmd.Flags(), def)
	cmd.Flags().Int("copy-workers", def.CopyWorkers, "concurrent file copies")
	return cmd
}

func newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Repartition the flat pools into new train/valid/test folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runSplit(newLogger(cmd), cfg)
		},
	}
	def := config.Default()
	addPoolFlags(cmd.Flags(), def)
	addSplitFlags(cmd.Flags(), def)
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Combine and then split in one invocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DataDir == "" {
				return fmt.Errorf("data directory is required (--data-dir)")
			}
			logger := newLogger(cmd)
			combiner := dataset.NewCombiner(logger, cfg.CopyWorkers, cfg.ImagePattern)
			if _, err := combiner.Combine(cfg.DataDir, cfg.ImageDir, cfg.LabelDir); err != nil {
				return err
			}
			return runSplit(logger, cfg)
		},
	}
	def := config.Default()
	addPoolFlags(cmd.Flags(), def)
	addSplitFlags(cmd.Flags(), def)
	cmd.Flags().Int("copy-workers", def.CopyWorkers, "concurrent file copies")
	return cmd
}

func runSplit(logger *slog.Logger, cfg *config.Config) error {
	if cfg.ImageDir == "" || cfg.LabelDir == "" {
		return fmt.Errorf("image and label pools are required (--image-dir/--label-dir or --data-dir)")
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("output directory is required (--output-dir)")
	}

	splitter := dataset.NewSplitter(logger, cfg.Seed, cfg.ImagePattern)
	ratios := dataset.Ratios{Train: cfg.TrainRatio, Val: cfg.ValRatio, Test: cfg.TestRatio}
	if _, err := splitter.Split(cfg.ImageDir, cfg.LabelDir, cfg.OutputDir, ratios); err != nil {
		return err
	}

	if cfg.TarOutput {
		tarPath := cfg.OutputDir + ".tar"
		if err := archive.TarDirectory(cfg.OutputDir, tarPath); err != nil {
			logger.Warn("tar archive failed", slog.String("error", err.Error()))
		} else {
			logger.Info("tar archive written", slog.String("path", tarPath))
		}
	}
	return nil
}

func newMaskCmd() *cobra.Command {
	var inputDir, maskDir, outputDir string
	cmd := &cobra.Command{
		Use:   "mask",
		Short: "Remove image backgrounds using grayscale segmentation masks",
		Long: "For every image in the input directory, loads <base>.png from the mask\n" +
			"directory, binarizes it, and writes the masked image as a transparent PNG.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd)

			if err := fsutil.EnsureDir(outputDir); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			images, err := dataset.ListPool(inputDir, cfg.ImagePattern)
			if err != nil {
				return fmt.Errorf("list input directory: %w", err)
			}

			processed := 0
			for _, name := range images {
				base := dataset.BaseName(name)
				maskPath := filepath.Join(maskDir, base+".png")
				if !fsutil.Exists(maskPath) {
					logger.Warn("mask not found for image", slog.String("image", name))
					continue
				}
				outPath := filepath.Join(outputDir, base+".png")
				if err := transform.RemoveBackground(filepath.Join(inputDir, name), maskPath, outPath); err != nil {
					return err
				}
				processed++
			}
			logger.Info("mask transform complete", slog.Int("processed", processed), slog.Int("total", len(images)))
			return nil
		},
	}
	cmd.Flags().StringVar(&inputDir, "input-dir", "", "directory of source images")
	cmd.Flags().StringVar(&maskDir, "mask-dir", "", "directory of grayscale masks named <base>.png")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for masked PNGs")
	cmd.Flags().String("image-pattern", config.Default().ImagePattern, "glob pattern selecting image files")
	_ = cmd.MarkFlagRequired("input-dir")
	_ = cmd.MarkFlagRequired("mask-dir")
	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}

func newCompositeCmd() *cobra.Command {
	var fgDir, bgDir, outputDir string
	cmd := &cobra.Command{
		Use:   "composite",
		Short: "Superimpose foreground cutouts onto background images",
		Long: "Composites every foreground onto every background at a seeded random\n" +
			"position, writing <fgbase>_<bgbase>.png into the output directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd)

			if err := fsutil.EnsureDir(outputDir); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			foregrounds, err := dataset.ListPool(fgDir, cfg.ImagePattern)
			if err != nil {
				return fmt.Errorf("list foreground directory: %w", err)
			}
			backgrounds, err := dataset.ListPool(bgDir, cfg.ImagePattern)
			if err != nil {
				return fmt.Errorf("list background directory: %w", err)
			}

			rng := rand.New(rand.NewSource(cfg.Seed))
			written := 0
			for _, fg := range foregrounds {
				for _, bg := range backgrounds {
					outName := fmt.Sprintf("%s_%s.png", dataset.BaseName(fg), dataset.BaseName(bg))
					outPath := filepath.Join(outputDir, outName)
					if err := transform.Superimpose(filepath.Join(fgDir, fg), filepath.Join(bgDir, bg), outPath, rng); err != nil {
						return err
					}
					written++
				}
			}
			logger.Info("composite transform complete", slog.Int("written", written))
			return nil
		},
	}
	cmd.Flags().StringVar(&fgDir, "foreground-dir", "", "directory of foreground cutouts (transparent PNGs)")
	cmd.Flags().StringVar(&bgDir, "background-dir", "", "directory of background images")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for composited PNGs")
	cmd.Flags().String("image-pattern", config.Default().ImagePattern, "glob pattern selecting image files")
	cmd.Flags().Int64("seed", config.Default().Seed, "placement seed")
	_ = cmd.MarkFlagRequired("foreground-dir")
	_ = cmd.MarkFlagRequired("background-dir")
	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}
