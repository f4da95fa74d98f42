// Package geometry provides the value types shared by every segmentation stage.
//
// All coordinates are integer pixel positions with (0,0) at the top-left corner
// of the working image, X increasing rightward and Y increasing downward.
//
// # Bounding Boxes
//
// A BoundingBox is stored as origin plus extent (X, Y, W, H). Extents derived
// from contour points are inclusive: a contour whose points span x=10..20 has
// W=11, matching the convention used by common contour libraries.
//
// # Contours
//
// A Contour owns its point buffer. Operations that move a contour (Translate)
// return a new Contour with a fresh buffer rather than mutating in place, so two
// stages holding the same contour never observe each other's edits.
//
// # Expansion
//
// Expand grows a box by a fraction of the enclosing image size: the origin moves
// back by half the fraction and the extent grows by the full fraction. Shrink is
// its inverse up to integer rounding (at most 1px per edge).
package geometry
