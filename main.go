// trackscan finds analytics tracking calls in Python source and reports
// each event with its inferred property schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/trackscan/internal/catalog"
	"github.com/phobologic/trackscan/internal/discover"
	"github.com/phobologic/trackscan/internal/lang"
	"github.com/phobologic/trackscan/internal/model"
	"github.com/phobologic/trackscan/internal/parse"
	"github.com/phobologic/trackscan/internal/report"
	"github.com/phobologic/trackscan/internal/toon"
	"github.com/phobologic/trackscan/internal/tracking"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("trackscan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		customFunction string
		sources        string
		format         string
		outputPath     string
		summary        bool
		configFile     string
		maxFileSize    int
		showVersion    bool
	)

	fs.StringVar(&customFunction, "c", "", "name of a project-specific tracking function")
	fs.StringVar(&customFunction, "custom-function", "", "name of a project-specific tracking function")
	fs.StringVar(&sources, "s", "", "comma-separated sources to report")
	fs.StringVar(&sources, "sources", "", "comma-separated sources to report")
	fs.StringVar(&format, "f", formatJSON, "output format: json or toon")
	fs.StringVar(&format, "format", formatJSON, "output format: json or toon")
	fs.StringVar(&outputPath, "o", "", "write output to this file instead of stdout")
	fs.StringVar(&outputPath, "output", "", "write output to this file instead of stdout")
	fs.BoolVar(&summary, "summary", false, "aggregate events into a catalog")
	fs.StringVar(&configFile, "config", "", "config file path (default .trackscan.yaml in the first path)")
	fs.IntVar(&maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes (0 disables)")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "trackscan %s\n", version)
		return nil
	}

	roots := fs.Args()
	if len(roots) == 0 {
		roots = []string{"."}
	}

	cfgPath, required := configPath(configFile, roots[0])
	cfg, err := loadConfig(cfgPath, required)
	if err != nil {
		return err
	}

	// Flags win over the config file, which wins over defaults.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["c"] && !set["custom-function"] && cfg.CustomFunction != "" {
		customFunction = cfg.CustomFunction
	}
	if !set["f"] && !set["format"] && cfg.Format != "" {
		format = cfg.Format
	}
	if !set["max-file-size"] && cfg.MaxFileSize > 0 {
		maxFileSize = cfg.MaxFileSize
	}
	sourceNames := cfg.Sources
	if set["s"] || set["sources"] {
		sourceNames = strings.Split(sources, ",")
	}

	if err := checkFormat(format); err != nil {
		return err
	}
	sourceFilter, err := parseSources(sourceNames)
	if err != nil {
		return err
	}

	files, err := collectFiles(roots, cfg.Exclude)
	if err != nil {
		return err
	}
	files = filterBySize(files, maxFileSize, stderr)

	events := analyzeFiles(context.Background(), files, customFunction, stderr)
	events = catalog.Filter(events, sourceFilter)

	if outputPath == "" {
		return writeResults(stdout, events, format, summary)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := writeResults(f, events, format, summary); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func writeResults(w io.Writer, events []model.Event, format string, summary bool) error {
	switch {
	case format == formatTOON && summary:
		_, err := fmt.Fprintln(w, toon.EncodeCatalog(catalog.Build(events)))
		return err
	case format == formatTOON:
		_, err := fmt.Fprintln(w, toon.EncodeEvents(events))
		return err
	case summary:
		return report.WriteCatalog(w, catalog.Build(events))
	default:
		return report.WriteEvents(w, events)
	}
}

// collectFiles expands each root into the Python files to analyze. A root
// naming a file is analyzed as-is; a directory is searched with discover.
// Reported paths keep the root as given on the command line.
func collectFiles(roots, exclude []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		path = filepath.Clean(path)
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		entries, err := discover.Files(root, exclude)
		if err != nil {
			return nil, fmt.Errorf("discovering files in %s: %w", root, err)
		}
		for _, e := range entries {
			add(filepath.Join(root, filepath.FromSlash(e.Path)))
		}
	}
	return files, nil
}

func filterBySize(files []string, maxSize int, stderr io.Writer) []string {
	if maxSize <= 0 {
		return files
	}
	var kept []string
	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: skipped (>%d bytes)\n", f, maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// analyzeFiles parses and analyzes files concurrently. Events come back
// grouped by file in input order. Files that cannot be read or parsed are
// reported on stderr and contribute nothing.
func analyzeFiles(ctx context.Context, files []string, customFunction string, stderr io.Writer) []model.Event {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	python := lang.Languages[lang.Python]
	results := make([][]model.Event, len(files))
	var stderrMu sync.Mutex
	warn := func(path string, err error) {
		stderrMu.Lock()
		defer stderrMu.Unlock()
		_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", path, err)
	}

	for i, path := range files {
		i, path := i, path // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			source, err := os.ReadFile(path)
			if err != nil {
				warn(path, err)
				return nil
			}

			// Parsers are not safe for concurrent use.
			parser := python.NewParser()
			defer parser.Close()

			tree, err := parse.Python(ctx, parser, source)
			if err != nil {
				warn(path, err)
				return nil
			}
			results[i] = tracking.Analyze(tree, filepath.ToSlash(path), customFunction)
			return nil
		})
	}
	_ = g.Wait()

	events := []model.Event{}
	for _, r := range results {
		events = append(events, r...)
	}
	return events
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-c": true, "--c": true,
	"-custom-function": true, "--custom-function": true,
	"-s": true, "--s": true,
	"-sources": true, "--sources": true,
	"-f": true, "--f": true,
	"-format": true, "--format": true,
	"-o": true, "--o": true,
	"-output": true, "--output": true,
	"-config": true, "--config": true,
	"-max-file-size": true, "--max-file-size": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
