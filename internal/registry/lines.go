package registry

import "strings"

// LineParser keeps the block as a single business without interpreting it:
// the first line is the name, the remaining lines form the address.
type LineParser struct{}

// Parse implements BlockParser. Blank text yields no business.
func (LineParser) Parse(text string) ([]Business, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	b := Business{Name: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		parts := make([]string, 0, len(lines)-1)
		for _, l := range lines[1:] {
			if l = strings.TrimSpace(l); l != "" {
				parts = append(parts, l)
			}
		}
		b.Address = strings.Join(parts, " ")
	}
	return []Business{b}, nil
}
