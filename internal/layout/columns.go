package layout

import (
	"fmt"
	"sort"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
)

// Column is one vertical band of a page in reading order.
type Column struct {
	// Cluster is the k-means cluster the column was built from.
	Cluster int `json:"cluster"`
	// Left and Right are the cluster centre's horizontal bounds.
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	// Contours are the column's blobs, top to bottom.
	Contours []geometry.Contour `json:"contours"`
}

// Assembly is the column layout of one page.
type Assembly struct {
	// Columns are ordered left to right by their Left bound.
	Columns []Column `json:"columns"`
	// Rejects are blobs too far from their cluster centre to belong to it.
	Rejects []geometry.Contour `json:"rejects"`
}

// Blocks returns every column blob in reading order: column by column, top
// to bottom within each.
func (a *Assembly) Blocks() []geometry.Contour {
	var out []geometry.Contour
	for _, col := range a.Columns {
		out = append(out, col.Contours...)
	}
	return out
}

// Assemble groups contours into columns using the labels and centres of c.
//
// Within a cluster a contour is kept when the distance of its (left, right)
// span from the centre is below stdThresh times the population standard
// deviation of all the cluster's span coordinates pooled together. A cluster
// with a single member, or with zero spread, keeps everything. Rejected
// contours are returned in Assembly.Rejects, so columns and rejects together
// always hold every input contour exactly once.
func Assemble(contours []geometry.Contour, c *Clustering, stdThresh float64) (*Assembly, error) {
	if len(c.Labels) != len(contours) {
		return nil, fmt.Errorf("clustering has %d labels for %d contours", len(c.Labels), len(contours))
	}

	members := make([][]geometry.Contour, len(c.Centers))
	for i, label := range c.Labels {
		if label < 0 || label >= len(c.Centers) {
			return nil, fmt.Errorf("contour %d has label %d outside %d clusters", i, label, len(c.Centers))
		}
		members[label] = append(members[label], contours[i])
	}

	asm := &Assembly{Columns: make([]Column, 0, len(c.Centers))}
	for label, group := range members {
		center := c.Centers[label]
		col := Column{Cluster: label, Left: center[0], Right: center[1]}

		spans := Spans(group)
		std := flatStd(spans)
		keepAll := len(group) <= 1 || std == 0

		for i, contour := range group {
			if keepAll || distance(spans[i], center) < stdThresh*std {
				col.Contours = append(col.Contours, contour)
			} else {
				asm.Rejects = append(asm.Rejects, contour)
			}
		}

		sort.SliceStable(col.Contours, func(i, j int) bool {
			return col.Contours[i].Box.Y < col.Contours[j].Box.Y
		})
		asm.Columns = append(asm.Columns, col)
	}

	sort.SliceStable(asm.Columns, func(i, j int) bool {
		return asm.Columns[i].Left < asm.Columns[j].Left
	})
	return asm, nil
}
