package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gpunexus/internal/config"
	"github.com/san-kum/gpunexus/internal/explain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestCommands(t *testing.T) {
	tests := map[string]struct {
		args     []string
		expErr   bool
		contains []string
	}{
		"Topics should list blocks, stages and facts.": {
			args:     []string{"topics"},
			contains: []string{"l2-cache", "光栅化", "将矢量形状（三角形）转换为潜在的像素（片段）。", "SIMT 架构"},
		},
		"Presets should list every preset.": {
			args:     []string{"presets"},
			contains: []string{"classic", "default", "quick", "12.5"},
		},
		"Race should stop at the deadline.": {
			args:     []string{"race", "--seed", "3", "--deadline", "150ms"},
			contains: []string{"outcome", "deadline", "64/64", "12.5 tasks/s"},
		},
		"Race with an unknown preset should fail.": {
			args:   []string{"race", "--preset", "nope"},
			expErr: true,
		},
		"Bench should report both backends.": {
			args:     []string{"bench", "--tasks", "4", "--size", "8", "--rounds", "1", "--workers", "2"},
			contains: []string{"serial", "parallel", "speedup"},
		},
		"Explaining a name shared by several blocks should fail.": {
			args:   []string{"explain", "流式多处理器 (SM)"},
			expErr: true,
		},
		"An invalid log format should fail.": {
			args:   []string{"topics", "--log-format", "xml"},
			expErr: true,
		},
		"An unknown command should fail.": {
			args:   []string{"nope"},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := runCLI(t, tc.args...)
			if tc.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestRaceCSV(t *testing.T) {
	out, err := runCLI(t, "race", "--seed", "3", "--deadline", "100ms", "--csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Greater(t, len(rows), 2)
	assert.Equal(t, []string{"elapsed_ms", "serial", "parallel"}, rows[0])

	last := rows[len(rows)-1]
	assert.Equal(t, "100.00", last[1])
	assert.Equal(t, "100.00", last[2])
}

func TestExplainWithoutCredential(t *testing.T) {
	t.Setenv(config.DefaultAPIKeyEnv, "")
	t.Setenv(config.FallbackAPIKeyEnv, "")

	out, err := runCLI(t, "explain", "raster")
	require.NoError(t, err)
	assert.Equal(t, explain.ExplainNoCredential+"\n", out)

	out, err = runCLI(t, "ask", "什么是", "warp")
	require.NoError(t, err)
	assert.Equal(t, explain.ChatNoCredential+"\n", out)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpunexus.yaml")

	_, err := runCLI(t, "config", "init", path)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Simulation, cfg.Simulation)

	_, err = runCLI(t, "config", "init", path)
	assert.Error(t, err, "existing files are not overwritten")

	_, err = runCLI(t, "--config", path, "config", "init", "--force", path)
	assert.NoError(t, err)
}
