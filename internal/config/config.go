// Package config holds the settings of a segmentation pipeline.
//
// Settings come from three layers applied in order: built-in defaults, an
// optional KEY=VALUE settings file, and REGSEG_* environment variables. The
// result is validated once, before any page is processed.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
	"github.com/ironsheep/registry-segmenter/internal/log"
)

// EnvPrefix is prepended to the upper-cased setting key to form its
// environment variable, e.g. REGSEG_THRESH_VALUE.
const EnvPrefix = "REGSEG_"

// Expansion styles.
const (
	ExpandFull = "full"
	ExpandHalf = "half"
)

// Config holds every pipeline knob. It is read-only once loaded.
type Config struct {
	// Structuring element used for close/open.
	KernelX int `json:"kernel_shape_x"`
	KernelY int `json:"kernel_shape_y"`
	// Threshold is the inverted binarization threshold; ink is <= Threshold.
	Threshold int `json:"thresh_value"`
	// Iterations of the close; the open runs Iterations/3 times.
	Iterations int `json:"iterations"`

	ColumnsPerPage int `json:"columns_per_page"`
	PagesPerImage  int `json:"pages_per_image"`

	// Expansion is the bounding-box margin as a fraction of the page size.
	Expansion float64 `json:"bb_expansion_percent"`
	// ExpansionStyle selects geometry.Expand ("full") or geometry.ExpandHalf ("half").
	ExpansionStyle string `json:"expansion_style"`

	// IndentWidth is the hanging-indent threshold as a fraction of box width.
	IndentWidth  float64 `json:"indent_width"`
	SplitIndents bool    `json:"split_indents"`
	StdThresh    float64 `json:"std_thresh"`

	Seed           int64 `json:"seed"`
	KMeansRestarts int   `json:"kmeans_restarts"`
	KMeansMaxIter  int   `json:"kmeans_max_iterations"`

	AssumePreProcessed bool `json:"assume_pre_processed"`

	OCRLanguage    string        `json:"ocr_language"`
	OCRPageSegMode int           `json:"ocr_psm"`
	OCRTimeout     time.Duration `json:"ocr_timeout"`

	Workers int `json:"workers"`

	Debug     bool   `json:"debug"`
	DebugDir  string `json:"debug_dir"`
	LineColor string `json:"line_color"`
}

// Default returns the settings used for the 2005 Texas registry scans.
func Default() Config {
	return Config{
		KernelX:        10,
		KernelY:        3,
		Threshold:      60,
		Iterations:     8,
		ColumnsPerPage: 2,
		PagesPerImage:  1,
		Expansion:      0.012,
		ExpansionStyle: ExpandFull,
		IndentWidth:    0.025,
		StdThresh:      1,
		Seed:           0,
		KMeansRestarts: 10,
		KMeansMaxIter:  300,
		OCRLanguage:    "eng",
		OCRPageSegMode: 6,
		OCRTimeout:     30 * time.Second,
		Workers:        4,
		DebugDir:       "debug",
		LineColor:      "#828282",
	}
}

// Clusters is the k-means cluster count: columns per page times pages per image.
func (c Config) Clusters() int {
	return c.ColumnsPerPage * c.PagesPerImage
}

// Expander returns the box expansion function selected by ExpansionStyle.
func (c Config) Expander() geometry.Expander {
	if c.ExpansionStyle == ExpandHalf {
		return geometry.ExpandHalf
	}
	return geometry.Expand
}

// Error reports an invalid or unparsable setting.
type Error struct {
	Key    string
	Value  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("invalid setting %s", e.Key)
	if e.Value != "" {
		msg += fmt.Sprintf("=%q", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func invalid(key, reason string, args ...any) *Error {
	return &Error{Key: key, Reason: fmt.Sprintf(reason, args...)}
}

// Validate checks every setting and returns the first *Error found.
func (c Config) Validate() error {
	switch {
	case c.KernelX < 1:
		return invalid("kernel_shape_x", "must be positive, got %d", c.KernelX)
	case c.KernelY < 1:
		return invalid("kernel_shape_y", "must be positive, got %d", c.KernelY)
	case c.Threshold < 0 || c.Threshold > 255:
		return invalid("thresh_value", "must be between 0 and 255, got %d", c.Threshold)
	case c.Iterations < 1:
		return invalid("iterations", "must be positive, got %d", c.Iterations)
	case c.ColumnsPerPage < 1:
		return invalid("columns_per_page", "must be positive, got %d", c.ColumnsPerPage)
	case c.PagesPerImage < 1:
		return invalid("pages_per_image", "must be positive, got %d", c.PagesPerImage)
	case c.Expansion < 0 || c.Expansion >= 1:
		return invalid("bb_expansion_percent", "must be in [0, 1), got %g", c.Expansion)
	case c.ExpansionStyle != ExpandFull && c.ExpansionStyle != ExpandHalf:
		return invalid("expansion_style", "must be %q or %q, got %q", ExpandFull, ExpandHalf, c.ExpansionStyle)
	case c.IndentWidth < 0 || c.IndentWidth >= 1:
		return invalid("indent_width", "must be in [0, 1), got %g", c.IndentWidth)
	case c.StdThresh < 0:
		return invalid("std_thresh", "must not be negative, got %g", c.StdThresh)
	case c.KMeansRestarts < 1:
		return invalid("kmeans_restarts", "must be positive, got %d", c.KMeansRestarts)
	case c.KMeansMaxIter < 1:
		return invalid("kmeans_max_iterations", "must be positive, got %d", c.KMeansMaxIter)
	case strings.TrimSpace(c.OCRLanguage) == "":
		return invalid("ocr_language", "is required")
	case c.OCRPageSegMode < 0 || c.OCRPageSegMode > 13:
		return invalid("ocr_psm", "must be between 0 and 13, got %d", c.OCRPageSegMode)
	case c.OCRTimeout < 0:
		return invalid("ocr_timeout", "must not be negative, got %s", c.OCRTimeout)
	case c.Workers < 1 || c.Workers > 256:
		return invalid("workers", "must be between 1 and 256, got %d", c.Workers)
	case c.Debug && strings.TrimSpace(c.DebugDir) == "":
		return invalid("debug_dir", "is required when debug is enabled")
	}
	if _, err := colorful.Hex(normalizeHex(c.LineColor)); err != nil {
		return &Error{Key: "line_color", Value: c.LineColor, Reason: "not a hex colour", Err: err}
	}
	return nil
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return s
}

// Load builds a Config from the defaults, the settings file at path (skipped
// when path is empty) and REGSEG_* environment variables, then validates it.
// Unknown keys in the file are logged and ignored.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		values, err := godotenv.Read(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := cfg.apply(values, true); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.apply(environment(), false); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// With returns a copy of c with the given settings applied and validated.
// Keys use the settings file names; unknown keys are an error.
func (c Config) With(values map[string]string) (Config, error) {
	out := c
	if err := out.apply(values, false); err != nil {
		return Config{}, err
	}
	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// Save writes the settings to path in the format Load reads.
func (c Config) Save(path string) error {
	if err := godotenv.Write(c.Values(), path); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Values returns every setting keyed by its settings file name.
func (c Config) Values() map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.key] = f.get(&c)
	}
	return out
}

// Keys lists the settings file names in a stable order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) apply(values map[string]string, lenient bool) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		f, ok := fieldByKey(k)
		if !ok {
			if lenient {
				log.Warnf("ignoring unknown setting %s", k)
				continue
			}
			return &Error{Key: k, Reason: "unknown setting"}
		}
		v := strings.TrimSpace(values[k])
		if err := f.set(c, v); err != nil {
			return &Error{Key: f.key, Value: v, Err: err}
		}
	}
	return nil
}

// environment collects the REGSEG_* variables that name a known setting.
func environment() map[string]string {
	values := make(map[string]string)
	for _, f := range fields {
		if v := os.Getenv(EnvPrefix + strings.ToUpper(f.key)); v != "" {
			values[f.key] = v
		}
	}
	return values
}

func fieldByKey(key string) (field, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

type field struct {
	key string
	get func(*Config) string
	set func(*Config, string) error
}

var errBool = errors.New("expected true or false")

func intField(key string, p func(*Config) *int) field {
	return field{
		key: key,
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*p(c) = n
			return nil
		},
	}
}

func floatField(key string, p func(*Config) *float64) field {
	return field{
		key: key,
		get: func(c *Config) string { return strconv.FormatFloat(*p(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*p(c) = f
			return nil
		},
	}
}

func boolField(key string, p func(*Config) *bool) field {
	return field{
		key: key,
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errBool
			}
			*p(c) = b
			return nil
		},
	}
}

func stringField(key string, p func(*Config) *string) field {
	return field{
		key: key,
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error {
			*p(c) = v
			return nil
		},
	}
}

var fields = []field{
	intField("kernel_shape_x", func(c *Config) *int { return &c.KernelX }),
	intField("kernel_shape_y", func(c *Config) *int { return &c.KernelY }),
	intField("thresh_value", func(c *Config) *int { return &c.Threshold }),
	intField("iterations", func(c *Config) *int { return &c.Iterations }),
	intField("columns_per_page", func(c *Config) *int { return &c.ColumnsPerPage }),
	intField("pages_per_image", func(c *Config) *int { return &c.PagesPerImage }),
	floatField("bb_expansion_percent", func(c *Config) *float64 { return &c.Expansion }),
	stringField("expansion_style", func(c *Config) *string { return &c.ExpansionStyle }),
	floatField("indent_width", func(c *Config) *float64 { return &c.IndentWidth }),
	boolField("split_indents", func(c *Config) *bool { return &c.SplitIndents }),
	floatField("std_thresh", func(c *Config) *float64 { return &c.StdThresh }),
	{
		key: "seed",
		get: func(c *Config) string { return strconv.FormatInt(c.Seed, 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			c.Seed = n
			return nil
		},
	},
	intField("kmeans_restarts", func(c *Config) *int { return &c.KMeansRestarts }),
	intField("kmeans_max_iterations", func(c *Config) *int { return &c.KMeansMaxIter }),
	boolField("assume_pre_processed", func(c *Config) *bool { return &c.AssumePreProcessed }),
	stringField("ocr_language", func(c *Config) *string { return &c.OCRLanguage }),
	intField("ocr_psm", func(c *Config) *int { return &c.OCRPageSegMode }),
	{
		key: "ocr_timeout",
		get: func(c *Config) string { return c.OCRTimeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.OCRTimeout = d
			return nil
		},
	},
	intField("workers", func(c *Config) *int { return &c.Workers }),
	boolField("debug", func(c *Config) *bool { return &c.Debug }),
	stringField("debug_dir", func(c *Config) *string { return &c.DebugDir }),
	stringField("line_color", func(c *Config) *string { return &c.LineColor }),
}
