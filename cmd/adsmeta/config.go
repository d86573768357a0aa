package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gophersatwork/adsmeta"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "adsmeta"
	// ConfigFile is the config file name
	ConfigFile = "config.json"
)

// Config holds the CLI settings.
type Config struct {
	Helper      string `json:"helper" mapstructure:"helper"`
	StreamsPath string `json:"streamsPath" mapstructure:"streamsPath"`
	LADSPath    string `json:"ladsPath" mapstructure:"ladsPath"`
	Encoding    string `json:"encoding" mapstructure:"encoding"` // IANA name of the helpers' output encoding
	Digest      string `json:"digest" mapstructure:"digest"`
	LogLevel    string `json:"logLevel" mapstructure:"logLevel"`
	Watch       bool   `json:"watch" mapstructure:"watch"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Helper:   "lads",
		Digest:   "MD5",
		LogLevel: "warn",
	}
}

// loadConfig reads path, or ~/.config/adsmeta/config.json when path is empty,
// over the defaults. Keys present in the file override defaults even when zero.
// A missing default file is not an error; a missing explicit file is.
func loadConfig(fs afero.Fs, path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil // Use defaults if can't get home dir
		}
		path = filepath.Join(home, ".config", ConfigDir, ConfigFile)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyOverrides decodes "key=value" pairs onto cfg. Keys use the JSON names.
func (c *Config) applyOverrides(pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}

	raw := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("invalid override %q, want key=value", p)
		}
		raw[strings.TrimSpace(k)] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid override: %w", err)
	}
	return nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := adsmeta.ParseKind(c.Helper); err != nil {
		errs = append(errs, err)
	}
	if _, err := adsmeta.ParseAlgorithm(c.Digest); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.encoding(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// encoding returns nil for UTF-8 output.
func (c *Config) encoding() (encoding.Encoding, error) {
	name := strings.TrimSpace(c.Encoding)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("invalid encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// helper builds the configured helper description.
func (c *Config) helper() (*adsmeta.Helper, error) {
	kind, err := adsmeta.ParseKind(c.Helper)
	if err != nil {
		return nil, err
	}
	path := c.LADSPath
	if kind == adsmeta.Streams {
		path = c.StreamsPath
	}
	return adsmeta.NewHelper(kind, path)
}

// options translates the config into Inspector options.
func (c *Config) options(logger *slog.Logger) ([]adsmeta.Option, error) {
	h, err := c.helper()
	if err != nil {
		return nil, err
	}
	enc, err := c.encoding()
	if err != nil {
		return nil, err
	}
	opts := []adsmeta.Option{
		adsmeta.WithHelper(h),
		adsmeta.WithLogger(logger),
	}
	if enc != nil {
		opts = append(opts, adsmeta.WithEncoding(enc))
	}
	if c.Watch {
		opts = append(opts, adsmeta.WithWatcher())
	}
	return opts, nil
}
