// Package config loads kintree settings from a TOML file, a .env file and
// the environment, in increasing order of precedence.
//
// # File Location
//
// [Load] reads the path it is given, or [DefaultPath] when the path is empty.
// A missing file is not an error; built-in defaults apply.
//
// # Environment
//
// These variables override file values:
//
//	KINTREE_BACKEND      storage.backend
//	KINTREE_DATA         storage.path
//	KINTREE_REDIS_ADDR   storage.redis_addr
//	KINTREE_MONGO_URI    storage.mongo_uri
//	KINTREE_NEO4J_URI    storage.neo4j_uri
//
// A .env file in the working directory is loaded first, without replacing
// variables that are already set.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/kintree/pkg/errors"
)

const appName = "kintree"

// Storage backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNeo4j  = "neo4j"
)

// Config is the full kintree configuration.
type Config struct {
	Storage Storage `toml:"storage"`
	Layout  Layout  `toml:"layout"`
	Render  Render  `toml:"render"`
	Server  Server  `toml:"server"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"` // file and sqlite

	RedisAddr string `toml:"redis_addr"`
	RedisKey  string `toml:"redis_key"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	Neo4jURI      string `toml:"neo4j_uri"`
	Neo4jUser     string `toml:"neo4j_user"`
	Neo4jPassword string `toml:"neo4j_password"`
	Neo4jDatabase string `toml:"neo4j_database"`
}

// Layout holds the generational layout settings.
type Layout struct {
	XGap           float64 `toml:"x_gap"`
	YGap           float64 `toml:"y_gap"`
	PlaceUnreached bool    `toml:"place_unreached"`
}

// Render holds the SVG rendering settings.
type Render struct {
	Cache    bool   `toml:"cache"`
	CacheDir string `toml:"cache_dir"`
}

// Server holds the HTTP API settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend:         BackendFile,
			Path:            "data.json",
			RedisAddr:       "localhost:6379",
			RedisKey:        "kintree:people",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   appName,
			MongoCollection: "people",
			Neo4jURI:        "neo4j://localhost:7687",
			Neo4jUser:       "neo4j",
			Neo4jDatabase:   "neo4j",
		},
		Layout: Layout{XGap: 200, YGap: 200},
		Render: Render{Cache: true},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns the config file location following the XDG standard
// (~/.config/kintree/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns the render cache directory (~/.cache/kintree/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads configuration from path (or [DefaultPath] when empty), then
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "locate config")
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"KINTREE_BACKEND", &c.Storage.Backend},
		{"KINTREE_DATA", &c.Storage.Path},
		{"KINTREE_REDIS_ADDR", &c.Storage.RedisAddr},
		{"KINTREE_MONGO_URI", &c.Storage.MongoURI},
		{"KINTREE_NEO4J_URI", &c.Storage.Neo4jURI},
		{"KINTREE_NEO4J_PASSWORD", &c.Storage.Neo4jPassword},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if err := errs.ValidatePath(c.Storage.Path); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "storage.path")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" || c.Storage.RedisKey == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "storage.redis_addr and storage.redis_key are required")
		}
	case BackendMongo:
		if c.Storage.MongoURI == "" || c.Storage.MongoDatabase == "" || c.Storage.MongoCollection == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "storage.mongo_uri, mongo_database and mongo_collection are required")
		}
	case BackendNeo4j:
		if c.Storage.Neo4jURI == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "storage.neo4j_uri is required")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown storage backend %q", c.Storage.Backend)
	}

	if c.Layout.XGap <= 0 || c.Layout.YGap <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "layout gaps must be positive (x_gap=%g, y_gap=%g)", c.Layout.XGap, c.Layout.YGap)
	}
	return nil
}
