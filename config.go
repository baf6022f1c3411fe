package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/trackscan/internal/model"
)

const configFileName = ".trackscan.yaml"

const (
	formatJSON = "json"
	formatTOON = "toon"
)

var (
	errUnknownSource = errors.New("unknown source")
	errUnknownFormat = errors.New("unknown format")
)

// fileConfig mirrors .trackscan.yaml. Zero values mean "not set".
type fileConfig struct {
	CustomFunction string   `yaml:"custom_function"`
	Sources        []string `yaml:"sources"`
	Format         string   `yaml:"format"`
	MaxFileSize    int      `yaml:"max_file_size"`
	Exclude        []string `yaml:"exclude"`
}

// configPath returns the config file to load and whether it must exist.
// An explicit path is required; otherwise .trackscan.yaml next to the first
// root is used if present.
func configPath(explicit, firstRoot string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	dir := firstRoot
	if info, err := os.Stat(firstRoot); err == nil && !info.IsDir() {
		dir = filepath.Dir(firstRoot)
	}
	return filepath.Join(dir, configFileName), false
}

// loadConfig reads and validates a config file. A missing optional file
// yields an empty config.
func loadConfig(path string, required bool) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.Format != "" {
		if err := checkFormat(cfg.Format); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if _, err := parseSources(cfg.Sources); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.MaxFileSize < 0 {
		return nil, fmt.Errorf("%s: max_file_size must not be negative", path)
	}
	return &cfg, nil
}

// parseSources resolves library tag names, ignoring blanks.
func parseSources(names []string) ([]model.Source, error) {
	var sources []model.Source
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		src, ok := model.ParseSource(strings.ToLower(name))
		if !ok {
			return nil, fmt.Errorf("%w %q (want one of %s)", errUnknownSource, name, sourceNames())
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func sourceNames() string {
	names := make([]string, len(model.Sources))
	for i, s := range model.Sources {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatTOON:
		return nil
	}
	return fmt.Errorf("%w %q (want %s or %s)", errUnknownFormat, format, formatJSON, formatTOON)
}
