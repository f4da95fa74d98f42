package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Business is one registry entry.
type Business struct {
	// Category holds SIC codes or the category text, depending on the edition.
	Category     []string `json:"category,omitempty"`
	Name         string   `json:"name"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	Zip          string   `json:"zip,omitempty"`
	Employment   string   `json:"employment,omitempty"`
	Sales        string   `json:"sales,omitempty"`
	CategoryDesc []string `json:"category_desc,omitempty"`
	Bracket      string   `json:"bracket,omitempty"`

	// Coordinates are filled by geocoding, which happens outside this module.
	Lat        string  `json:"lat,omitempty"`
	Long       string  `json:"long,omitempty"`
	Confidence float64 `json:"confidence"`
}

// BlockParser extracts zero or more businesses from one block of text.
type BlockParser interface {
	Parse(text string) ([]Business, error)
}

// Factory creates a fresh parser for one page.
type Factory func() BlockParser

var factories = map[string]Factory{
	"tx2005": func() BlockParser { return NewTX2005Parser() },
	"tx1975": func() BlockParser { return NewTX1975Parser() },
	"lines":  func() BlockParser { return LineParser{} },
}

// Formats lists the registered parser names.
func Formats() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FactoryFor returns the parser factory registered under format.
func FactoryFor(format string) (Factory, error) {
	f, ok := factories[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unknown registry format %q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	return f, nil
}
