// Package imaging provides the raster operations of the segmentation pipeline.
//
// Every function here works on *image.Gray values whose bounds start at (0,0).
// Pages are decoded once with LoadGray (or through a PageCache), turned into an
// inverted binary mask with Binarize, and the mask is then merged into line
// blobs with Close and cleaned with Open. Crop helpers cut the source and mask
// identically so the two stay pixel-aligned for the rest of a run.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Regions are expressed as
// geometry.BoundingBox values; the origin is inclusive and Right()/Bottom() are
// exclusive.
//
// # Masks
//
// A mask is an *image.Gray holding only 0 (background) and 255 (ink). The
// morphology functions treat any non-zero value as ink and always produce
// strict 0/255 output.
//
// # Thread Safety
//
// PageCache is safe for concurrent use. All other functions are stateless and
// return freshly allocated images, so distinct pages can be processed in
// parallel. Images returned by PageCache are shared and must not be modified.
//
// # Debug Renders
//
// RenderClosed, RenderColumnLines and RenderBoxes draw the three diagnostic
// views of a run. SaveDebug writes them to disk, picking the encoder from the
// file extension (TIFF by default).
package imaging
