// Command regseg segments scanned business registry pages and writes the
// recognized blocks, or the records parsed from them, as TSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ironsheep/registry-segmenter/internal/batch"
	"github.com/ironsheep/registry-segmenter/internal/config"
	"github.com/ironsheep/registry-segmenter/internal/log"
	"github.com/ironsheep/registry-segmenter/internal/ocr"
	"github.com/ironsheep/registry-segmenter/internal/registry"
	"github.com/ironsheep/registry-segmenter/internal/segment"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Output formats.
const (
	formatBlocks  = "blocks"
	formatRecords = "records"
)

// settingFlags collects repeated -set key=value flags.
type settingFlags map[string]string

func (s settingFlags) String() string {
	pairs := make([]string, 0, len(s))
	for k, v := range s {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (s settingFlags) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	s[strings.TrimSpace(key)] = value
	return nil
}

type options struct {
	settingsFile string
	out          string
	format       string
	parser       string
	workers      int
	debug        bool
	debugDir     string
	noHeader     bool
	save         string
	version      bool
	set          settingFlags
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	o := &options{set: settingFlags{}}
	fs := flag.NewFlagSet("regseg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.settingsFile, "config", "", "settings file (KEY=VALUE lines)")
	fs.StringVar(&o.out, "out", "", "output TSV file (default stdout)")
	fs.StringVar(&o.format, "format", formatBlocks, "output: blocks or records")
	fs.StringVar(&o.parser, "parser", "tx2005", "record format: "+strings.Join(registry.Formats(), ", "))
	fs.IntVar(&o.workers, "workers", 0, "pages processed in parallel (default from settings)")
	fs.BoolVar(&o.debug, "debug", false, "write debug images")
	fs.StringVar(&o.debugDir, "debug-dir", "", "directory for debug images")
	fs.BoolVar(&o.noHeader, "no-header", false, "omit the TSV header row of block output")
	fs.StringVar(&o.save, "save", "", "write the effective settings to this file and exit")
	fs.BoolVar(&o.version, "version", false, "print version information")
	fs.Var(o.set, "set", "override a setting, e.g. -set thresh_value=80 (repeatable)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "regseg - segment business registry pages into text blocks")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage: regseg [flags] <image or glob>...")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Environment variables:")
		fmt.Fprintln(stderr, "  REGSEG_LOG_LEVEL=debug       Enable debug logging")
		fmt.Fprintln(stderr, "  REGSEG_<SETTING>=<value>     Override a setting, e.g. REGSEG_COLUMNS_PER_PAGE=3")
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	switch o.format {
	case formatBlocks, formatRecords:
	default:
		return nil, nil, fmt.Errorf("unknown output format %q (supported: %s, %s)", o.format, formatBlocks, formatRecords)
	}
	return o, fs.Args(), nil
}

// settings layers the command line over the settings file and environment.
func (o *options) settings() (config.Config, error) {
	cfg, err := config.Load(o.settingsFile)
	if err != nil {
		return config.Config{}, err
	}
	overrides := make(map[string]string, len(o.set)+3)
	for k, v := range o.set {
		overrides[k] = v
	}
	if o.workers > 0 {
		overrides["workers"] = fmt.Sprint(o.workers)
	}
	if o.debug {
		overrides["debug"] = "true"
	}
	if o.debugDir != "" {
		overrides["debug_dir"] = o.debugDir
	}
	return cfg.With(overrides)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	o, patterns, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if o.version {
		fmt.Fprintf(stdout, "regseg %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	}

	log.ApplyEnv()

	cfg, err := o.settings()
	if err != nil {
		log.Errorf("Settings error: %v", err)
		return 1
	}
	if o.save != "" {
		if err := cfg.Save(o.save); err != nil {
			log.Errorf("%v", err)
			return 1
		}
		log.Infof("settings written to %s", o.save)
		return 0
	}

	paths, err := batch.ExpandInputs(patterns)
	if err != nil {
		log.Errorf("%v", err)
		return 2
	}

	var opts []segment.Option
	if o.format == formatRecords {
		factory, err := registry.FactoryFor(o.parser)
		if err != nil {
			log.Errorf("%v", err)
			return 2
		}
		opts = append(opts, segment.WithParser(factory))
	}

	rec := ocr.NewTesseract()
	rec.Language = cfg.OCRLanguage
	rec.PageSegMode = cfg.OCRPageSegMode
	rec.Timeout = cfg.OCRTimeout

	pipeline, err := segment.New(cfg, rec, opts...)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := batch.Run(ctx, pipeline, paths, cfg.Workers)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}

	if err := writeOutput(o, stdout, summary.Results); err != nil {
		log.Errorf("%v", err)
		return 1
	}

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

func writeOutput(o *options, stdout io.Writer, results []batch.Result) (err error) {
	w := stdout
	if o.out != "" {
		f, cerr := os.Create(o.out)
		if cerr != nil {
			return fmt.Errorf("failed to create output file: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = f
	}

	if o.format == formatRecords {
		return batch.WriteRecords(w, results)
	}
	return batch.WriteBlocks(w, results, !o.noHeader)
}
