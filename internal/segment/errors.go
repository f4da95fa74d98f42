package segment

import (
	"errors"
	"fmt"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
	"github.com/ironsheep/registry-segmenter/internal/layout"
)

// Kind classifies a pipeline failure by how much work it discards.
type Kind int

const (
	// FatalPage aborts the page; a batch moves on to the next one.
	FatalPage Kind = iota + 1
	// BlockFailure skips one block; the page carries on.
	BlockFailure
)

func (k Kind) String() string {
	switch k {
	case FatalPage:
		return "fatal page"
	case BlockFailure:
		return "block failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Causes reported through PageError.
var (
	ErrDecode         = errors.New("image could not be decoded")
	ErrEmptyText      = errors.New("no text recognized")
	ErrNoContent      = layout.ErrNoContent
	ErrTooFewContours = layout.ErrTooFewContours
)

// PageError attributes a failure to a page and, for block failures, to the
// block's bounding box in the working image.
type PageError struct {
	Kind  Kind
	Page  string
	Stage State
	// Box is nil for failures that concern the whole page.
	Box   *geometry.BoundingBox
	Cause error
}

func (e *PageError) Error() string {
	if e.Box != nil {
		return fmt.Sprintf("%s: page %s: block %s at %s: %v", e.Kind, e.Page, e.Box, e.Stage, e.Cause)
	}
	return fmt.Sprintf("%s: page %s at %s: %v", e.Kind, e.Page, e.Stage, e.Cause)
}

func (e *PageError) Unwrap() error { return e.Cause }

func fatal(page string, stage State, cause error) *PageError {
	return &PageError{Kind: FatalPage, Page: page, Stage: stage, Cause: cause}
}

func blockFailure(page string, stage State, box geometry.BoundingBox, cause error) *PageError {
	return &PageError{Kind: BlockFailure, Page: page, Stage: stage, Box: &box, Cause: cause}
}

// IsFatal reports whether err carries a FatalPage PageError.
func IsFatal(err error) bool {
	var pe *PageError
	return errors.As(err, &pe) && pe.Kind == FatalPage
}
