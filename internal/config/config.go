// Package config loads the YAML settings file and merges CLI overrides.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds paths and export settings.
type Config struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`

	// Extensions selects which files batch mode picks up.
	Extensions []string `yaml:"extensions"`

	// Export settings
	Format  string `yaml:"format"` // png, webp, tga or dds
	Tree    string `yaml:"tree"`   // text or yaml
	Mip     int    `yaml:"mip"`
	MaxSize int    `yaml:"max_size"`
	Workers int    `yaml:"workers"`

	LogLevel string `yaml:"log_level"`
}

// Flags holds CLI values that override the file. Zero values mean unset,
// except Mip where -1 does.
type Flags struct {
	InputDir  string
	OutputDir string
	Format    string
	Tree      string
	Mip       int
	MaxSize   int
	Workers   int
	Verbose   bool
}

var DefaultExtensions = []string{".vtex_c", ".vmat_c", ".vmdl_c", ".vpcf_c", ".vsndevts_c"}

// Load reads a YAML config file. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

// Resolve applies flags over the file values and fills defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Tree != "" {
		c.Tree = flags.Tree
	}
	if flags.Mip >= 0 {
		c.Mip = flags.Mip
	}
	if flags.MaxSize > 0 {
		c.MaxSize = flags.MaxSize
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Verbose {
		c.LogLevel = "debug"
	}

	if c.OutputDir == "" && c.InputDir != "" {
		c.OutputDir = filepath.Join(c.InputDir, "export")
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			c.Extensions[i] = "." + ext
		}
	}

	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = "png"
	}
	if c.Tree == "" {
		c.Tree = "text"
	}
	if c.Mip < 0 {
		c.Mip = 0
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks enumerated settings after Resolve.
func (c *Config) Validate() error {
	switch c.Format {
	case "png", "webp", "tga", "dds":
	default:
		return errors.Errorf("config: unknown format %q", c.Format)
	}
	switch c.Tree {
	case "text", "yaml":
	default:
		return errors.Errorf("config: unknown tree format %q", c.Tree)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "config")
	}
	return nil
}

// Level returns the parsed log level, or info when it does not parse.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Matches reports whether path has one of the configured extensions.
func (c *Config) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range c.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
