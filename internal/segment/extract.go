package segment

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
	"github.com/ironsheep/registry-segmenter/internal/imaging"
	"github.com/ironsheep/registry-segmenter/internal/ocr"
)

// BlockRegion returns the expanded, clipped crop box for a block of lay.
func (p *Pipeline) BlockRegion(lay *Layout, box geometry.BoundingBox) geometry.BoundingBox {
	expand := p.cfg.Expander()
	fx := p.cfg.Expansion
	return geometry.Clip(expand(box, lay.Width, lay.Height, fx, fx), lay.Width, lay.Height)
}

// extract crops a block out of the mask and recognizes it. The returned
// block always carries its box and region, even on error.
func (p *Pipeline) extract(ctx context.Context, lay *Layout, c geometry.Contour) (TextBlock, error) {
	block := TextBlock{Box: c.Box, Region: p.BlockRegion(lay, c.Box)}

	ctx, span := p.tracer.Start(ctx, SpanBlock)
	span.SetAttributes(attribute.String(AttrBox, c.Box.String()))
	defer span.End()

	img, err := imaging.Region(lay.Mask, block.Region)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return block, err
	}
	block.Image = img

	text, err := p.recognizer.Recognize(ctx, img)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return block, err
	}
	block.Text = ocr.CleanText(text)
	if block.Text == "" {
		span.SetStatus(codes.Error, ErrEmptyText.Error())
		return block, ErrEmptyText
	}
	return block, nil
}
