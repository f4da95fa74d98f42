package segment

// State is a step of the per-page state machine.
type State string

// States in the order a page passes through them. Split only happens when
// indent splitting is enabled; Extracted and Parsed repeat per block.
const (
	StateLoaded       State = "loaded"
	StatePreprocessed State = "preprocessed"
	StateEdgeFiltered State = "edge_filtered"
	StateClustered    State = "clustered"
	StateAssembled    State = "assembled"
	StateSplit        State = "split"
	StateExtracted    State = "extracted"
	StateParsed       State = "parsed"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Span and attribute names used for tracing.
const (
	SpanPage    = "regseg.page"
	SpanSegment = "regseg.segment"
	SpanStage   = "regseg.stage."
	SpanBlock   = "regseg.block"

	AttrPage     = "regseg.page.path"
	AttrRunID    = "regseg.run_id"
	AttrContours = "regseg.contours"
	AttrColumns  = "regseg.columns"
	AttrBlocks   = "regseg.blocks"
	AttrBox      = "regseg.block.box"
	AttrState    = "regseg.state"
)
