package registry

import (
	"regexp"
	"strings"
)

var (
	tx2005Entry   = regexp.MustCompile(`Phone`)
	tx2005City    = regexp.MustCompile(`[A-Za-z\s]+`)
	tx2005SIC     = regexp.MustCompile(`SIC-(.*)NAICS`)
	tx2005Employs = regexp.MustCompile(`Employs-(\d+)`)
	tx2005Sales   = regexp.MustCompile(`Sales-(.*)`)
	tx2005Address = regexp.MustCompile(`(.*?)\((.*?)\)`)
	tx2005CatDesc = regexp.MustCompile(`NAICS-[\d:;\s]+(.*)`)
	anyDigit      = regexp.MustCompile(`[0-9]`)
)

// TX2005Parser parses the 2005 Texas registry layout.
//
// A block containing "Phone" is an entry; any other block that contains
// letters is a city heading and sets the city of the entries that follow.
type TX2005Parser struct {
	city string
}

// NewTX2005Parser returns a parser with no current city.
func NewTX2005Parser() *TX2005Parser {
	return &TX2005Parser{}
}

// City returns the most recent city heading.
func (p *TX2005Parser) City() string { return p.city }

// Parse implements BlockParser.
func (p *TX2005Parser) Parse(text string) ([]Business, error) {
	if tx2005Entry.MatchString(text) {
		b := p.parseEntry(text)
		return []Business{b}, nil
	}
	if m := tx2005City.FindString(text); m != "" {
		p.city = strings.TrimSpace(m)
	}
	return nil, nil
}

func (p *TX2005Parser) parseEntry(text string) Business {
	lines := strings.Split(text, "\n")
	b := Business{Name: strings.TrimSpace(lines[0]), City: p.city}

	// Address lines are the lines with digits up to the phone line.
	var address strings.Builder
	for _, line := range lines {
		if !anyDigit.MatchString(line) {
			continue
		}
		if strings.Contains(line, "Phone") {
			break
		}
		address.WriteString(line)
	}

	// The category description ends where the employment line starts.
	var desc strings.Builder
	for _, line := range lines {
		if strings.Contains(line, "Employs") {
			break
		}
		desc.WriteString(line)
	}

	if m := tx2005Address.FindStringSubmatch(address.String()); m != nil {
		b.Address = strings.TrimSpace(m[1])
		b.Zip = strings.TrimSpace(m[2])
	}
	if m := tx2005CatDesc.FindStringSubmatch(desc.String()); m != nil {
		b.CategoryDesc = []string{strings.TrimSpace(m[1])}
	}
	if m := tx2005SIC.FindStringSubmatch(text); m != nil {
		b.Category = []string{strings.TrimSpace(m[1])}
	}
	if m := tx2005Employs.FindStringSubmatch(text); m != nil {
		b.Employment = m[1]
	}
	if m := tx2005Sales.FindStringSubmatch(text); m != nil {
		b.Sales = strings.TrimSpace(m[1])
	}
	return b
}
