// Package detection extracts ink blobs from binary page masks.
//
// FindExternalContours is the only entry point. It labels 8-connected ink
// components, discards any component sitting inside a hole of another one,
// and traces the outer border of each survivor with Freeman chain codes. The
// returned polygons keep only the vertices where the border changes
// direction, so a solid rectangle comes back as its four corners.
//
// # Coordinate System
//
// Coordinates follow the geometry package: (0,0) at the top-left, X
// rightward, Y downward. Bounding boxes derived from the traced points are
// inclusive, so a blob spanning x=10..19 has width 10.
//
// # Limitations
//
// Tracing cuts inner corners diagonally, as 8-connected border following
// does, so vertex lists of concave shapes are not axis-aligned at those
// corners. Bounding boxes are unaffected.
package detection
