package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
	"github.com/ironsheep/registry-segmenter/internal/registry"
	"github.com/ironsheep/registry-segmenter/internal/segment"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "1975", "p002.tif"))
	touch(t, filepath.Join(dir, "1975", "p001.tif"))
	touch(t, filepath.Join(dir, "1975", "vol2", "p100.tif"))
	touch(t, filepath.Join(dir, "2005", "p001.png"))
	touch(t, filepath.Join(dir, "notes.txt"))

	got, err := ExpandInputs([]string{
		filepath.Join(dir, "**", "*.tif"),
		filepath.Join(dir, "1975", "p001.tif"),
		filepath.Join(dir, "2005", "*.png"),
		filepath.Join(dir, "missing", "*.tif"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "1975", "p001.tif"),
		filepath.Join(dir, "1975", "p002.tif"),
		filepath.Join(dir, "1975", "vol2", "p100.tif"),
		filepath.Join(dir, "2005", "p001.png"),
	}, got)
}

func TestExpandInputs_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ExpandInputs([]string{filepath.Join(dir, "*.tif")})
	assert.ErrorIs(t, err, ErrNoInputs)

	_, err = ExpandInputs([]string{filepath.Join(dir, "[")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input pattern")
}

type fakeProcessor struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeProcessor) Process(ctx context.Context, path string) (*segment.PageResult, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	switch {
	case strings.Contains(path, "bad"):
		return nil, &segment.PageError{Kind: segment.FatalPage, Page: path, Stage: segment.StateEdgeFiltered, Cause: segment.ErrNoContent}
	case strings.Contains(path, "boom"):
		panic("decoder exploded")
	}

	box := geometry.BoundingBox{X: 10, Y: 20, W: 30, H: 40}
	return &segment.PageResult{
		Page:        path,
		Blocks:      []segment.TextBlock{{Column: 0, Index: 0, Box: box, Text: path + "\nline two"}},
		Records:     []registry.Business{{Name: path}},
		BlockErrors: []*segment.PageError{{Kind: segment.BlockFailure, Page: path, Cause: segment.ErrEmptyText}},
	}, nil
}

func TestRun(t *testing.T) {
	paths := []string{"p1.tif", "bad.tif", "p3.tif", "boom.tif", "p5.tif", "p6.tif"}
	proc := &fakeProcessor{}

	sum, err := Run(context.Background(), proc, paths, 2)
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, int32(len(paths)), proc.calls.Load())
	assert.LessOrEqual(t, proc.maxSeen.Load(), int32(2))
	require.Len(t, sum.Results, len(paths))

	for i, r := range sum.Results {
		assert.Equal(t, paths[i], r.Path, "results keep input order")
	}
	assert.True(t, segment.IsFatal(sum.Results[1].Err))
	assert.ErrorIs(t, sum.Results[1].Err, segment.ErrNoContent)
	require.Error(t, sum.Results[3].Err)
	assert.Contains(t, sum.Results[3].Err.Error(), "panic")
	assert.Nil(t, sum.Results[3].Page)

	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, 4, sum.Blocks)
	assert.Equal(t, 4, sum.Skipped)
}

func TestRun_InvalidWorkers(t *testing.T) {
	_, err := Run(context.Background(), &fakeProcessor{}, []string{"a"}, 0)
	assert.Error(t, err)
}

func TestWriteBlocks(t *testing.T) {
	sum, err := Run(context.Background(), &fakeProcessor{}, []string{"p1.tif", "bad.tif", "p2.tif"}, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBlocks(&buf, sum.Results, true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(BlockColumns, "\t"), lines[0])
	assert.Equal(t, "p1.tif\t0\t0\t10\t20\t30\t40\tp1.tif\\nline two", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "p2.tif\t"))
}

func TestWriteRecords(t *testing.T) {
	results := []Result{
		{Path: "a", Page: &segment.PageResult{Records: []registry.Business{{Name: "Alpha"}, {Name: "Beta"}}}},
		{Path: "b", Err: errors.New("failed")},
		{Path: "c", Page: &segment.PageResult{Records: []registry.Business{{Name: "Gamma"}}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, results))

	got, err := registry.ReadTSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Gamma", got[2].Name)
}
