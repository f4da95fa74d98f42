package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// listSep joins multi-valued fields inside one TSV cell.
const listSep = "|"

// Columns is the TSV column order.
var Columns = []string{
	"category", "name", "address", "city", "zip", "employment",
	"sales", "category_desc", "bracket", "lat", "long", "confidence",
}

// WriteTSV writes one row per business, without a header.
func WriteTSV(w io.Writer, businesses []Business) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	for i, b := range businesses {
		row := []string{
			strings.Join(b.Category, listSep),
			b.Name,
			b.Address,
			b.City,
			b.Zip,
			b.Employment,
			b.Sales,
			strings.Join(b.CategoryDesc, listSep),
			b.Bracket,
			b.Lat,
			b.Long,
			strconv.FormatFloat(b.Confidence, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write business %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTSV reads rows written by WriteTSV.
func ReadTSV(r io.Reader) ([]Business, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = len(Columns)

	var out []Business
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read businesses: %w", err)
		}

		conf, err := strconv.ParseFloat(row[11], 64)
		if err != nil {
			line, _ := cr.FieldPos(11)
			return nil, fmt.Errorf("line %d: invalid confidence %q: %w", line, row[11], err)
		}
		out = append(out, Business{
			Category:     splitList(row[0]),
			Name:         row[1],
			Address:      row[2],
			City:         row[3],
			Zip:          row[4],
			Employment:   row[5],
			Sales:        row[6],
			CategoryDesc: splitList(row[7]),
			Bracket:      row[8],
			Lat:          row[9],
			Long:         row[10],
			Confidence:   conf,
		})
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}
