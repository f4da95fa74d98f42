// Package layout recovers the reading order of a registry page from the
// geometry of its ink blobs.
//
// The stages run in a fixed order, each consuming the previous one's output:
//
//  1. FilterEdgeContours drops blobs touching the page border and
//     CropToContent cuts the page down to the remaining content.
//  2. KMeans clusters the (left, right) horizontal extents of the blobs into
//     a configured number of columns.
//  3. Assemble groups blobs by cluster, rejects horizontal outliers and sorts
//     columns left to right and blobs top to bottom.
//  4. SplitIndents optionally breaks merged blobs apart at hanging indents.
//
// None of the functions modify their inputs. Contours are rebased by
// Translate, which returns fresh point buffers, and every stage returns new
// slices.
package layout
