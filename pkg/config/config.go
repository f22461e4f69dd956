// Package config loads bentogrid configuration files.
//
// Configuration is read from TOML (the default, at
// $XDG_CONFIG_HOME/bento/config.toml) or YAML, chosen by file extension.
// Values missing from the file keep their defaults, and unknown keys are
// rejected so that typos do not go unnoticed.
//
// Example config.toml:
//
//	[grid]
//	cell_size = 100
//	margin = 10
//	columns = 4
//
//	[store]
//	backend = "redis"
//	[store.redis]
//	addr = "localhost:6379"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bentogrid/pkg/codec"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/kv"
	"github.com/matzehuels/bentogrid/pkg/layout"
)

// AppName names the configuration and data directories.
const AppName = "bento"

// Config is the complete bentogrid configuration.
type Config struct {
	Grid     Grid     `toml:"grid" yaml:"grid"`
	Store    Store    `toml:"store" yaml:"store"`
	Document Document `toml:"document" yaml:"document"`
	Server   Server   `toml:"server" yaml:"server"`
}

// Grid holds the geometry of the grid.
type Grid struct {
	CellSize int `toml:"cell_size" yaml:"cell_size"`
	Margin   int `toml:"margin" yaml:"margin"`
	Columns  int `toml:"columns" yaml:"columns"`
}

// Store selects the key-value backend.
type Store struct {
	kv.Options `yaml:",inline"`

	// Prefix namespaces every key, e.g. "team" gives "team:bento:grid:<name>".
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// Document controls the persisted document shape.
type Document struct {
	// Versioned writes the {"schemaVersion", "tiles"} envelope.
	// When false the legacy bare array is written.
	Versioned bool `toml:"versioned" yaml:"versioned"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Grid: Grid{
			CellSize: geometry.DefaultCellSize,
			Margin:   geometry.DefaultMargin,
			Columns:  layout.DefaultColumns,
		},
		Store: Store{
			Options: kv.Options{
				Backend: kv.BackendFile,
				Redis:   kv.RedisConfig{Addr: "localhost:6379"},
				Mongo: kv.MongoConfig{
					URI:        "mongodb://localhost:27017",
					Database:   AppName,
					Collection: "grids",
				},
			},
		},
		Document: Document{Versioned: true},
		Server:   Server{Addr: "localhost:8080"},
	}
}

// Load reads the configuration at path on top of the defaults.
//
// An empty path means the default location; a missing file there is not an
// error. An explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := ConfigDir()
		if err != nil {
			return cfg, cfg.Resolve()
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, cfg.Resolve()
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}

	if err := cfg.decode(path, data); err != nil {
		return cfg, err
	}
	if err := cfg.Resolve(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decode(path string, data []byte) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), c)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}
	return nil
}

// Resolve fills values that depend on the environment, such as the file
// store directory. Load calls it; call it again after changing the backend.
func (c *Config) Resolve() error {
	if c.Store.Backend == kv.BackendFile && c.Store.Dir == "" {
		dir, err := DataDir()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate data directory")
		}
		c.Store.Dir = filepath.Join(dir, "grids")
	}
	return nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Converter().Validate(); err != nil {
		return err
	}
	if c.Grid.Columns < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "columns must be at least 1, got %d", c.Grid.Columns)
	}
	switch c.Store.Backend {
	case "", kv.BackendFile, kv.BackendMemory:
	case kv.BackendRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis.addr is required")
		}
	case kv.BackendMongo:
		if c.Store.Mongo.URI == "" || c.Store.Mongo.Database == "" || c.Store.Mongo.Collection == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo needs uri, database and collection")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Prefix != "" {
		if err := errors.ValidateGridName(c.Store.Prefix); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store.prefix")
		}
	}
	return nil
}

// Converter returns the unit to pixel converter.
func (c Config) Converter() geometry.Converter {
	return geometry.Converter{CellSize: c.Grid.CellSize, Margin: c.Grid.Margin}
}

// Codec returns the document codec.
func (c Config) Codec() codec.Codec {
	return codec.Codec{Versioned: c.Document.Versioned}
}

// Keyer returns the key layout for grid documents.
func (c Config) Keyer() kv.Keyer {
	if c.Store.Prefix == "" {
		return kv.NewDefaultKeyer()
	}
	return kv.NewScopedKeyer(kv.NewDefaultKeyer(), c.Store.Prefix+":")
}

// =============================================================================
// Paths
// =============================================================================

// ConfigDir returns the configuration directory (~/.config/bento/).
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the data directory (~/.local/share/bento/).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
