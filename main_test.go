package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataset-resplit/internal/config"
)

func TestRootCmdSubcommands(t *testing.T) {
	root := rootCmd()

	want := []string{"combine", "split", "run", "mask", "composite"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestOverrideFromFlags(t *testing.T) {
	cmd := newSplitCmd()
	require.NoError(t, cmd.Flags().Set("train-ratio", "0.8"))
	require.NoError(t, cmd.Flags().Set("val-ratio", "0.1"))
	require.NoError(t, cmd.Flags().Set("output-dir", "out"))

	cfg := config.Default()
	cfg.TestRatio = 0.1
	overrideFromFlags(cmd.Flags(), cfg)

	assert.Equal(t, 0.8, cfg.TrainRatio)
	assert.Equal(t, 0.1, cfg.ValRatio)
	assert.Equal(t, "out", cfg.OutputDir)
	// flags left at their defaults do not clobber the config
	assert.Equal(t, 0.1, cfg.TestRatio)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestCombineRequiresDataDir(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"combine"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}
