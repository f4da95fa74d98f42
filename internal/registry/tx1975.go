package registry

import (
	"regexp"
	"strings"
)

var (
	tx1975Entry   = regexp.MustCompile(`[0-9]+`)
	tx1975City    = regexp.MustCompile(`([^a-z]+)[^0-9]+`)
	tx1975Company = regexp.MustCompile(`^(.*(?:Inc|Co|Corp|Ltd|Mfg)\s*\.\s*),`)
	tx1975Name    = regexp.MustCompile(`^(.*),\s*[0-9]`)
	tx1975Address = regexp.MustCompile(`(\d+\s+[A-Za-z]+.*?),.*\((\d{5})\)`)
	tx1975SIC     = regexp.MustCompile(`([^.]+)\((\d{4})\)`)
	tx1975Bracket = regexp.MustCompile(`\[(.*?)\]`)
)

// TX1975Parser parses the hanging-indent Texas layouts of 1975 to 1985.
//
// Blocks with digits are entries. Other blocks are county headings such as
// "AUSTIN Travis County"; the upper-case run before the county name becomes
// the current city.
type TX1975Parser struct {
	city string
}

// NewTX1975Parser returns a parser with no current city.
func NewTX1975Parser() *TX1975Parser {
	return &TX1975Parser{}
}

// City returns the most recent city heading.
func (p *TX1975Parser) City() string { return p.city }

// Parse implements BlockParser.
func (p *TX1975Parser) Parse(text string) ([]Business, error) {
	if tx1975Entry.MatchString(text) {
		return []Business{p.parseEntry(text)}, nil
	}
	if m := tx1975City.FindStringSubmatch(text); m != nil {
		// The run ends on the capital that starts the county name.
		city := []rune(m[1])
		p.city = strings.TrimSpace(string(city[:len(city)-1]))
	}
	return nil, nil
}

func (p *TX1975Parser) parseEntry(text string) Business {
	lines := strings.Split(text, "\n")
	rest := strings.ReplaceAll(text, "\n", "")
	b := Business{City: p.city}

	m := tx1975Company.FindStringSubmatch(lines[0])
	if m == nil {
		m = tx1975Name.FindStringSubmatch(lines[0])
	}
	if m != nil {
		b.Name = m[1]
		rest = strings.ReplaceAll(rest, b.Name, "")
	} else {
		b.Name = lines[0]
	}

	if m := tx1975Address.FindStringSubmatch(rest); m != nil {
		b.Address = m[1]
		b.Zip = m[2]
		rest = strings.ReplaceAll(rest, m[0], "")
	}

	for _, m := range tx1975SIC.FindAllStringSubmatch(rest, -1) {
		b.Category = append(b.Category, m[2])
		b.CategoryDesc = append(b.CategoryDesc, strings.Trim(m[1], " ,"))
	}

	if m := tx1975Bracket.FindStringSubmatch(rest); m != nil {
		b.Bracket = m[1]
	}
	return b
}
