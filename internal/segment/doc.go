// Package segment drives one registry page from a scanned image to ordered
// text blocks.
//
// A page moves through a fixed sequence of states:
//
//	loaded -> preprocessed -> edge_filtered -> clustered -> assembled
//	       -> [split] -> per block: extracted -> parsed -> done
//
// Any failure before the per-block states is a FatalPage: the page is
// abandoned and a *PageError is returned. A block whose crop cannot be
// recognized, or whose text is empty, is a BlockFailure: it is recorded in
// PageResult.BlockErrors and the page continues.
//
// Each state is traced as an OpenTelemetry span and logged at debug level.
// When Config.Debug is set, three diagnostic TIFFs are written per page:
// the closed contours, the column guides over the mask, and the final block
// regions over the source.
package segment
