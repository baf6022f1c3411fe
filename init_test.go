package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/trackscan/internal/model"
)

// TestStarterConfigLoads verifies that the generated file parses and leaves
// every setting at its default.
func TestStarterConfigLoads(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(starterConfig()), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.CustomFunction != "" || len(cfg.Sources) != 0 || len(cfg.Exclude) != 0 {
		t.Errorf("starter config should not filter anything: %+v", cfg)
	}
	if cfg.Format != formatJSON {
		t.Errorf("format = %q, want %q", cfg.Format, formatJSON)
	}
	if cfg.MaxFileSize != defaultMaxFileSize {
		t.Errorf("max_file_size = %d, want %d", cfg.MaxFileSize, defaultMaxFileSize)
	}
}

// TestStarterConfigListsSources verifies the comment block names every source.
func TestStarterConfigListsSources(t *testing.T) {
	t.Parallel()
	content := starterConfig()
	for _, src := range model.Sources {
		if !strings.Contains(content, string(src)) {
			t.Errorf("starter config does not mention %q", src)
		}
	}
}

// TestInitCreatesFile verifies that runInit creates the config inside a
// directory argument.
func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(data) != starterConfig() {
		t.Errorf("unexpected content:\n%s", data)
	}
	if !strings.Contains(stderr.String(), "wrote "+path) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

// TestInitExplicitFile verifies that a non-directory argument is used as the
// file name.
func TestInitExplicitFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "custom.yaml")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

// TestInitRefusesOverwrite verifies an existing file is kept unless --force
// is given.
func TestInitRefusesOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte("format: toon\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{dir}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for existing file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "format: toon\n" {
		t.Errorf("existing file was modified:\n%s", data)
	}

	if err := runInit([]string{"--force", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit --force: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != starterConfig() {
		t.Errorf("--force did not overwrite:\n%s", data)
	}
}

// TestInitDryRun verifies that --dry-run prints the config and writes
// nothing.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--dry-run", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if stdout.String() != starterConfig() {
		t.Errorf("dry-run output:\n%s", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, configFileName)); !os.IsNotExist(err) {
		t.Error("dry-run should not create the file")
	}
}
