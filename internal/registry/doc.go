// Package registry turns the recognized text of a segmented block into
// business records.
//
// Each registry edition prints its entries differently, so parsing is a
// strategy behind the BlockParser interface. Parsers may keep state between
// blocks of one page (the current city heading, for instance); the pipeline
// therefore creates a fresh parser per page through a Factory and never
// shares one across goroutines.
//
// # Formats
//
//   - "tx2005": Texas 2005 editions. Entries carry "Phone", "SIC-",
//     "NAICS-", "Employs-" and "Sales-" markers; city headings are plain
//     words between entries.
//   - "tx1975": Texas 1975 to 1985 editions with hanging-indent entries and
//     "(NNNN)" SIC codes.
//   - "lines": no pattern matching; the first line becomes the name and the
//     remaining lines the address. Useful for editions without a parser.
//
// # TSV
//
// WriteTSV and ReadTSV use one tab-separated row per business in the
// column order category, name, address, city, zip, employment, sales,
// category description, bracket, lat, long, confidence.
package registry
