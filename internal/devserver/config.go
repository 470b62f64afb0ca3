package devserver

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds dev server configuration.
type Config struct {
	Addr string `koanf:"addr"`
	// Root is the directory holding index.html, the wasm binary and bundles.
	Root string `koanf:"root"`
	// Index is the document served for history fallback, relative to Root.
	Index string `koanf:"index"`
	// Manifest is the route manifest used to pick the fallback status.
	Manifest string `koanf:"manifest"`
	// CORSOrigins, when set, enables CORS for those origins.
	CORSOrigins []string `koanf:"cors_origins"`
	// Immutable lists doublestar globs, relative to Root, served with a
	// far-future Cache-Control.
	Immutable []string `koanf:"immutable"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Addr:      "127.0.0.1:8080",
		Root:      "web",
		Index:     "index.html",
		Manifest:  "cmd/feedtrack/routes.yaml",
		Immutable: []string{"bundles/**/*.js"},
	}
}

// LoadConfig reads configuration from the given YAML file, then overlays
// environment variable overrides (FEEDTRACK_*). A missing file is not an
// error.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// FEEDTRACK_CORS_ORIGINS -> cors_origins, etc. Lists are comma separated.
	if err := k.Load(env.ProviderWithValue("FEEDTRACK_", ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, "FEEDTRACK_"))
		if key == "cors_origins" || key == "immutable" {
			return key, strings.Split(value, ",")
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if c.Index == "" {
		return fmt.Errorf("index is required")
	}
	if c.Manifest == "" {
		return fmt.Errorf("manifest is required")
	}
	return nil
}
