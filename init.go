package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// runInit implements the `trackscan init` subcommand, which writes a
// commented starter .trackscan.yaml.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("trackscan init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun, force bool
	fs.BoolVar(&dryRun, "dry-run", false, "print the config instead of writing it")
	fs.BoolVar(&force, "force", false, "overwrite an existing config file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: trackscan init [flags] [path]

Write a starter %s. path may be a directory (the file is created inside
it) or a file name, and defaults to the current directory. An existing file
is left alone unless --force is given.

Flags:
`, configFileName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	content := starterConfig()

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	path := initTarget(fs.Arg(0))
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote %s\n", path)
	return nil
}

// initTarget resolves the init path argument to a config file path.
func initTarget(arg string) string {
	if arg == "" {
		return configFileName
	}
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return filepath.Join(arg, configFileName)
	}
	return arg
}

// starterConfig returns a config file that loads to the built-in defaults.
func starterConfig() string {
	return fmt.Sprintf(`# trackscan configuration. Command-line flags override these values.

# Name of a project-specific tracking function called as
# name("Event Name", {"key": value}).
custom_function: ""

# Report only these sources. Leave empty to report all of:
# %s
sources: []

# Output format: %s or %s.
format: %s

# Skip files larger than this many bytes.
max_file_size: %d

# Extra gitignore-style patterns to skip, relative to each scanned directory.
exclude: []
`, sourceNames(), formatJSON, formatTOON, formatJSON, defaultMaxFileSize)
}
