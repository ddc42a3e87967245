package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsela"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRun_LocalStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.dat", "1 1 2\n2 2 3\n")
	writeFile(t, dir, "b.dat", "1 4\n2 9\n")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-store", dir,
		"-A", "a.dat",
		"-b", "b.dat",
		"-method", "cg",
		"-offset", "1",
		"-verbosity", "1",
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	x, err := sparsela.ReadVector[float64](&stdout, 1)
	require.NoError(t, err)
	require.Equal(t, 2, x.Len())
	assert.InDeltaSlice(t, []float64{2, 3}, x.Elements(), 1e-6)
}

func TestRun_CompressedOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.dat", "0 0 4\n1 1 1\n2 1 1\n")
	writeFile(t, dir, "b.dat", "0 8\n1 1\n2 1\n")
	writeFile(t, dir, "x0.dat", "0 1\n1 1\n")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-store", dir,
		"-A", "a.dat",
		"-b", "b.dat",
		"-x0", "x0.dat",
		"-out", "out/x.dat.zst",
		"-log-file", filepath.Join(dir, "solve.log"),
	}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	x, err := sparsela.LoadVector[float64](filepath.Join(dir, "out", "x.dat.zst"), 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 1}, x.Elements(), 1e-5)

	log, err := os.ReadFile(filepath.Join(dir, "solve.log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "solve finished")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.dat", "0 0 1\n1 1 1\n")
	writeFile(t, dir, "b.dat", "0 1\n1 1\n2 1\n")
	writeFile(t, dir, "b2.dat", "0 1\n1 1\n")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing A", []string{"-b", "b.dat"}, nil},
		{"dimension mismatch", []string{"-A", "a.dat", "-b", "b.dat"}, sparsela.ErrDimensionMismatch},
		{"unknown method", []string{"-A", "a.dat", "-b", "b2.dat", "-method", "gmres"}, sparsela.ErrUnknownMethod},
		{"missing blob", []string{"-A", "nope.dat", "-b", "b2.dat"}, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			args := append([]string{"-store", dir, "-verbosity", "1"}, tt.args...)
			err := run(context.Background(), args, &stdout, &stderr)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := openStore(ctx, t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = openStore(ctx, "minio://")
	assert.Error(t, err)

	_, err = openStore(ctx, "minio://localhost:9000/")
	assert.Error(t, err)
}

func TestSplitBucket(t *testing.T) {
	bucket, prefix, err := splitBucket("systems/poisson/2d")
	require.NoError(t, err)
	assert.Equal(t, "systems", bucket)
	assert.Equal(t, "poisson/2d", prefix)

	_, _, err = splitBucket("")
	assert.Error(t, err)
}

func TestParseFlags_HelpDescribesVerbosity(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"-h"}, &stderr)
	require.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, stderr.String(), "1 (errors) to 5 (debug)")
	assert.Contains(t, stderr.String(), "4 adds low-priority")
}
