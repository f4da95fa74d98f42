// Package batch runs the segmentation pipeline over many pages.
//
// Pages are independent, so they are processed in parallel on a bounded
// worker pool. A page that fails is recorded in its Result and never stops
// the rest of the batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/ironsheep/registry-segmenter/internal/log"
	"github.com/ironsheep/registry-segmenter/internal/segment"
)

// ErrNoInputs is returned when no pattern matches a file.
var ErrNoInputs = errors.New("no input files")

// ExpandInputs resolves file patterns, which may use ** to match across
// directories. Matches of each pattern are sorted; a path matched by more
// than one pattern appears once, at its first position.
func ExpandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			log.Warnf("no files match %s", pattern)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoInputs
	}
	return out, nil
}

// Processor handles a single page. *segment.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, path string) (*segment.PageResult, error)
}

// Result is the outcome of one page.
type Result struct {
	Path string
	Page *segment.PageResult
	Err  error
}

// Summary collects the results of a batch in input order.
type Summary struct {
	RunID    string
	Results  []Result
	Failed   int
	Blocks   int
	Skipped  int
	Duration time.Duration
}

type pageTask struct {
	idx     int
	ctx     context.Context
	proc    Processor
	path    string
	results []Result
	wg      *sync.WaitGroup
}

// Run processes paths on a pool of workers. The returned error concerns the
// batch itself (an unusable pool, for instance); page failures are reported
// in Summary.Results.
func Run(ctx context.Context, proc Processor, paths []string, workers int) (*Summary, error) {
	if workers <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString(), Results: make([]Result, len(paths))}

	pool, err := ants.NewPoolWithFunc(workers, func(args any) {
		task, ok := args.(*pageTask)
		if !ok {
			panic("page pool args type error")
		}
		defer task.wg.Done()
		task.results[task.idx] = processPage(task.ctx, task.proc, task.path)
	})
	if err != nil {
		return nil, fmt.Errorf("create page pool: %w", err)
	}
	defer pool.Release()

	log.Infof("batch %s: %d pages on %d workers", sum.RunID, len(paths), workers)

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		task := &pageTask{idx: i, ctx: ctx, proc: proc, path: path, results: sum.Results, wg: &wg}
		if err := pool.Invoke(task); err != nil {
			wg.Done()
			sum.Results[i] = Result{Path: path, Err: fmt.Errorf("submit page: %w", err)}
		}
	}
	wg.Wait()

	for _, r := range sum.Results {
		if r.Err != nil {
			sum.Failed++
			continue
		}
		sum.Blocks += len(r.Page.Blocks)
		sum.Skipped += len(r.Page.BlockErrors)
	}
	sum.Duration = time.Since(start)
	log.Infof("batch %s: %d pages, %d failed, %d blocks, %d blocks skipped in %s",
		sum.RunID, len(paths), sum.Failed, sum.Blocks, sum.Skipped, sum.Duration)
	return sum, nil
}

func processPage(ctx context.Context, proc Processor, path string) (res Result) {
	res.Path = path
	defer func() {
		if r := recover(); r != nil {
			res.Page = nil
			res.Err = fmt.Errorf("page %s: panic: %v", path, r)
			log.Errorf("%v", res.Err)
		}
	}()

	page, err := proc.Process(ctx, path)
	if err != nil {
		res.Err = err
		return res
	}
	if page == nil {
		res.Err = fmt.Errorf("page %s: no result", path)
		return res
	}
	res.Page = page
	return res
}
