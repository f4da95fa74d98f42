package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ironsheep/registry-segmenter/internal/registry"
)

// BlockColumns is the header of WriteBlocks.
var BlockColumns = []string{"page", "column", "index", "x", "y", "width", "height", "text"}

// WriteBlocks writes one row per recognized block of every successful page,
// in input order. Line breaks inside the text are written as a literal \n.
func WriteBlocks(w io.Writer, results []Result, header bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if header {
		if err := cw.Write(BlockColumns); err != nil {
			return err
		}
	}
	for _, r := range results {
		if r.Page == nil {
			continue
		}
		for _, b := range r.Page.Blocks {
			row := []string{
				r.Path,
				strconv.Itoa(b.Column),
				strconv.Itoa(b.Index),
				strconv.Itoa(b.Box.X),
				strconv.Itoa(b.Box.Y),
				strconv.Itoa(b.Box.W),
				strconv.Itoa(b.Box.H),
				strings.ReplaceAll(b.Text, "\n", `\n`),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write block: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecords writes the parsed businesses of every successful page as
// registry TSV, in input order.
func WriteRecords(w io.Writer, results []Result) error {
	var all []registry.Business
	for _, r := range results {
		if r.Page != nil {
			all = append(all, r.Page.Records...)
		}
	}
	return registry.WriteTSV(w, all)
}
