package segment

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ironsheep/registry-segmenter/internal/config"
	"github.com/ironsheep/registry-segmenter/internal/detection"
	"github.com/ironsheep/registry-segmenter/internal/geometry"
	"github.com/ironsheep/registry-segmenter/internal/imaging"
	"github.com/ironsheep/registry-segmenter/internal/layout"
	"github.com/ironsheep/registry-segmenter/internal/log"
	"github.com/ironsheep/registry-segmenter/internal/ocr"
	"github.com/ironsheep/registry-segmenter/internal/registry"
)

const tracerName = "github.com/ironsheep/registry-segmenter/internal/segment"

// Loader decodes a page into grayscale.
type Loader func(path string) (*image.Gray, error)

// Pipeline segments registry pages. A Pipeline holds no per-page state and
// may process several pages concurrently.
type Pipeline struct {
	cfg        config.Config
	recognizer ocr.Recognizer
	newParser  registry.Factory
	load       Loader
	tracer     trace.Tracer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithParser sets the factory that creates one BlockParser per page. Without
// it Process returns text blocks but no records.
func WithParser(f registry.Factory) Option {
	return func(p *Pipeline) { p.newParser = f }
}

// WithLoader replaces imaging.LoadGray, e.g. with a PageCache.
func WithLoader(l Loader) Option {
	return func(p *Pipeline) { p.load = l }
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// New validates cfg and returns a pipeline that recognizes text with rec.
func New(cfg config.Config, rec ocr.Recognizer, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("a text recognizer is required")
	}
	p := &Pipeline{
		cfg:        cfg,
		recognizer: rec,
		load:       imaging.LoadGray,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the pipeline's settings.
func (p *Pipeline) Config() config.Config { return p.cfg }

// Layout is the segmented geometry of one page. Coordinates refer to the
// working image, i.e. the content crop unless pre-processed input was assumed.
type Layout struct {
	Page   string `json:"page"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Origin is the working image's top-left corner in the scanned page.
	Origin geometry.Point `json:"origin"`

	Source *image.Gray `json:"-"`
	Mask   *image.Gray `json:"-"`

	// Detected counts the contours found before any filtering.
	Detected int             `json:"detected"`
	Columns  []layout.Column `json:"columns"`
	// Rejects are contours too far from their column.
	Rejects []geometry.Contour `json:"rejects"`
	// BorderRejects are contours dropped for touching the page border.
	BorderRejects []geometry.Contour `json:"border_rejects"`
}

// Blocks returns the column contours in reading order.
func (l *Layout) Blocks() []geometry.Contour {
	var out []geometry.Contour
	for _, col := range l.Columns {
		out = append(out, col.Contours...)
	}
	return out
}

// Segment runs a page through loading, preprocessing, edge filtering,
// clustering, assembly and, when enabled, indent splitting. Every failure is
// a FatalPage *PageError.
func (p *Pipeline) Segment(ctx context.Context, path string) (*Layout, error) {
	ctx, span := p.tracer.Start(ctx, SpanSegment, trace.WithAttributes(attribute.String(AttrPage, path)))
	defer span.End()

	lay, err := p.segment(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("page %s: %v", path, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int(AttrContours, lay.Detected),
		attribute.Int(AttrColumns, len(lay.Columns)),
	)
	return lay, nil
}

func (p *Pipeline) segment(ctx context.Context, path string) (*Layout, error) {
	cfg := p.cfg
	lay := &Layout{Page: path}
	var (
		contours   []geometry.Contour
		clustering *layout.Clustering
		debug      = newDebugWriter(cfg, path)
	)

	err := p.stage(ctx, path, StateLoaded, func(context.Context) error {
		src, err := p.load(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
		lay.Source = src
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, path, StatePreprocessed, func(context.Context) error {
		threshold := uint8(cfg.Threshold)
		if cfg.AssumePreProcessed {
			threshold = 0
		}
		lay.Mask = imaging.Binarize(lay.Source, threshold)
		closed := imaging.CloseOpen(lay.Mask, imaging.Kernel{W: cfg.KernelX, H: cfg.KernelY}, cfg.Iterations)
		contours = detection.FindExternalContours(closed)
		lay.Detected = len(contours)
		log.Debugf("page %s: %d ink pixels, %d contours", path, imaging.InkCount(lay.Mask), len(contours))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, path, StateEdgeFiltered, func(context.Context) error {
		b := lay.Source.Bounds()
		lay.Width, lay.Height = b.Dx(), b.Dy()
		if cfg.AssumePreProcessed {
			return nil
		}
		crop, err := layout.CropToContent(lay.Source, lay.Mask, contours, layout.CropOptions{
			Margin:   layout.EdgeMargin,
			Fraction: cfg.Expansion,
			Expand:   cfg.Expander(),
		})
		if err != nil {
			return err
		}
		lay.Source, lay.Mask = crop.Source, crop.Mask
		lay.Width, lay.Height = crop.Width, crop.Height
		lay.Origin = crop.Origin
		contours = crop.Contours
		lay.BorderRejects = crop.Rejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	debug.closed(lay.Width, lay.Height, contours)

	err = p.stage(ctx, path, StateClustered, func(context.Context) error {
		c, err := layout.KMeans(layout.Spans(contours), layout.KMeansOptions{
			K:             cfg.Clusters(),
			Seed:          cfg.Seed,
			Restarts:      cfg.KMeansRestarts,
			MaxIterations: cfg.KMeansMaxIter,
		})
		if err != nil {
			return err
		}
		clustering = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	debug.columnLines(lay.Mask, clustering)

	err = p.stage(ctx, path, StateAssembled, func(context.Context) error {
		asm, err := layout.Assemble(contours, clustering, cfg.StdThresh)
		if err != nil {
			return err
		}
		lay.Columns = asm.Columns
		lay.Rejects = asm.Rejects
		if len(asm.Rejects) > 0 {
			log.Debugf("page %s: %d contours outside any column", path, len(asm.Rejects))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cfg.SplitIndents {
		err = p.stage(ctx, path, StateSplit, func(context.Context) error {
			lay.Columns = layout.SplitIndents(lay.Columns, cfg.IndentWidth)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return lay, nil
}

// stage runs fn as one traced state transition. Errors become FatalPage
// PageErrors for that state.
func (p *Pipeline) stage(ctx context.Context, page string, st State, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fatal(page, st, err)
	}
	ctx, span := p.tracer.Start(ctx, SpanStage+string(st))
	defer span.End()

	start := time.Now()
	if err := fn(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fatal(page, st, err)
	}
	log.Debugf("page %s: %s in %s", page, st, time.Since(start))
	return nil
}

// TextBlock is one recognized block of a page.
type TextBlock struct {
	// Column is the block's column in left-to-right order; Index its
	// position within the column.
	Column int `json:"column"`
	Index  int `json:"index"`
	// Box is the block's contour box; Region the expanded box that was cropped.
	Box    geometry.BoundingBox `json:"box"`
	Region geometry.BoundingBox `json:"region"`
	Text   string               `json:"text"`

	Image image.Image `json:"-"`
}

// PageResult is the outcome of Process for one page.
type PageResult struct {
	Page    string              `json:"page"`
	RunID   string              `json:"run_id"`
	Layout  *Layout             `json:"layout"`
	Blocks  []TextBlock         `json:"blocks"`
	Records []registry.Business `json:"records,omitempty"`
	// BlockErrors are the blocks that were skipped, in page order.
	BlockErrors []*PageError `json:"-"`
	Rejects     int          `json:"rejects"`
}

// Process segments the page at path, recognizes every block and, when a
// parser factory is set, parses the text into records. Block failures are
// collected in PageResult.BlockErrors; only page-level failures are returned
// as errors.
func (p *Pipeline) Process(ctx context.Context, path string) (*PageResult, error) {
	runID := uuid.NewString()
	ctx, span := p.tracer.Start(ctx, SpanPage, trace.WithAttributes(
		attribute.String(AttrPage, path),
		attribute.String(AttrRunID, runID),
	))
	defer span.End()

	res, err := p.process(ctx, path, runID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrState, string(StateFailed)))
		log.Debugf("page %s: %s", path, StateFailed)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int(AttrBlocks, len(res.Blocks)),
		attribute.String(AttrState, string(StateDone)),
	)
	log.Infof("page %s: %d blocks, %d records, %d skipped, %d rejected",
		path, len(res.Blocks), len(res.Records), len(res.BlockErrors), res.Rejects)
	return res, nil
}

func (p *Pipeline) process(ctx context.Context, path, runID string) (*PageResult, error) {
	lay, err := p.Segment(ctx, path)
	if err != nil {
		return nil, err
	}

	res := &PageResult{Page: path, RunID: runID, Layout: lay, Rejects: len(lay.Rejects)}
	var parser registry.BlockParser
	if p.newParser != nil {
		parser = p.newParser()
	}

	var regions []geometry.BoundingBox
	for ci, col := range lay.Columns {
		for bi, contour := range col.Contours {
			if err := ctx.Err(); err != nil {
				return nil, fatal(path, StateExtracted, err)
			}

			block, err := p.extract(ctx, lay, contour)
			regions = append(regions, block.Region)
			if err != nil {
				perr := blockFailure(path, StateExtracted, contour.Box, err)
				log.Warnf("%v", perr)
				res.BlockErrors = append(res.BlockErrors, perr)
				continue
			}
			block.Column, block.Index = ci, bi
			res.Blocks = append(res.Blocks, block)

			if parser == nil {
				continue
			}
			records, err := parser.Parse(block.Text)
			if err != nil {
				perr := blockFailure(path, StateParsed, contour.Box, err)
				log.Warnf("%v", perr)
				res.BlockErrors = append(res.BlockErrors, perr)
				continue
			}
			res.Records = append(res.Records, records...)
		}
	}

	newDebugWriter(p.cfg, path).contoured(lay.Source, regions)
	log.Debugf("page %s: %s", path, StateDone)
	return res, nil
}
