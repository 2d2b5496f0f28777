// Package config loads the optional inkdc.hcl file that tunes batch
// verification of a directory.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/roach88/inkdc/internal/ctxlog"
)

// FileName is the config file looked up in a verified directory.
const FileName = "inkdc.hcl"

// Config controls batch verification.
type Config struct {
	// SourceExtension identifies expected-source files.
	SourceExtension string `hcl:"source_extension,optional"`

	// CompiledSuffix is appended to a source file name to find the
	// compiled story verified against it.
	CompiledSuffix string `hcl:"compiled_suffix,optional"`

	// Database is the SQLite run log, relative to the config file.
	// Empty disables recording.
	Database string `hcl:"database,optional"`

	// Skip lists file names excluded from verification.
	Skip []string `hcl:"skip,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{SourceExtension: ".ink", CompiledSuffix: ".json"}
}

// Parse decodes config source. Unset attributes keep their defaults.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}

	cfg := Default()
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config %s: %w", filename, diags)
	}
	if cfg.SourceExtension == "" || cfg.CompiledSuffix == "" {
		return nil, fmt.Errorf("config %s: source_extension and compiled_suffix must not be empty", filename)
	}
	return cfg, nil
}

// Load reads a config file. Relative database paths are resolved against
// the file's directory.
func Load(ctx context.Context, path string) (*Config, error) {
	ctxlog.FromContext(ctx).Debug("loading config", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	if cfg.Database != "" && !filepath.IsAbs(cfg.Database) {
		cfg.Database = filepath.Join(filepath.Dir(path), cfg.Database)
	}
	return cfg, nil
}

// LoadDir loads dir/inkdc.hcl, or the defaults when the directory has none.
func LoadDir(ctx context.Context, dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(ctx, path)
}

// Skipped reports whether a file name is excluded.
func (c *Config) Skipped(name string) bool {
	return slices.Contains(c.Skip, name)
}
