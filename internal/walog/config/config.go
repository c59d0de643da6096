package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/julianstephens/go-utils/helpers"
	"github.com/julianstephens/go-utils/jsonutil"

	"github.com/julianstephens/walog/internal/walog"
	"github.com/julianstephens/walog/internal/walog/compress"
	"github.com/julianstephens/walog/internal/walog/crypto"
)

const FileName = "walog.json"

// Config is the persisted writer configuration. Keys mirror the tablet server
// property names they configure.
type Config struct {
	Version          int      `json:"version"`
	Dirs             []string `json:"tserver.wal.dirs"`
	Replication      int      `json:"tserver.wal.replication"`
	BlockSize        int64    `json:"tserver.wal.blocksize"`
	Preallocate      bool     `json:"tserver.wal.preallocate,omitempty"`
	MaxLogSize       int64    `json:"tserver.walog.max.size"`
	Sync             bool     `json:"tserver.wal.sync"`
	Compression      bool     `json:"tserver.wal.compression"`
	CompressionCodec string   `json:"tserver.wal.compression.codec,omitempty"`
	CryptoModule     string   `json:"crypto.module"`
	CryptoSecret     string   `json:"crypto.secret,omitempty"`
	CatalogDir       string   `json:"catalog.dir,omitempty"`
	LogDir           string   `json:"log.dir,omitempty"`
	LogMaxSize       *int     `json:"log.max.size,omitempty"`
	LogMaxBackups    *int     `json:"log.max.backups,omitempty"`
}

// Default returns a Config with default settings
func Default() *Config {
	return &Config{
		Version:          walog.ConfigVersion,
		Dirs:             []string{walog.DefaultWALDir},
		MaxLogSize:       walog.DefaultMaxLogSize,
		Sync:             true,
		CompressionCodec: compress.Default,
		CryptoModule:     crypto.NullIdentity,
	}
}

// EffectiveBlockSize is BlockSize, or 1.1 times MaxLogSize when unset.
func (c *Config) EffectiveBlockSize() int64 {
	if c.BlockSize > 0 {
		return c.BlockSize
	}
	return int64(float64(c.MaxLogSize) * 1.1)
}

// CatalogPath is CatalogDir, or a catalog directory under the first WAL directory.
func (c *Config) CatalogPath() string {
	if c.CatalogDir != "" || len(c.Dirs) == 0 {
		return c.CatalogDir
	}
	return filepath.Join(c.Dirs[0], walog.DefaultCatalogDir)
}

// Codec returns the frame codec, or nil when compression is off.
func (c *Config) Codec() (compress.Codec, error) {
	if !c.Compression {
		return nil, nil
	}
	name := c.CompressionCodec
	if name == "" {
		name = compress.Default
	}
	return compress.Lookup(name)
}

// Crypto builds the configured module and a registry able to read every
// module this process knows about.
func (c *Config) Crypto() (crypto.Module, *crypto.Registry, error) {
	var modules []crypto.Module
	if c.CryptoSecret != "" {
		chacha, err := crypto.NewChaCha20([]byte(c.CryptoSecret))
		if err != nil {
			return nil, nil, err
		}
		modules = append(modules, chacha)
	}
	reg := crypto.NewRegistry(modules...)

	id := c.CryptoModule
	if id == "" {
		id = crypto.NullIdentity
	}
	m, err := reg.Lookup(id)
	if err != nil {
		return nil, nil, err
	}
	return m, reg, nil
}

// Validate checks the configuration for values the writer cannot use.
func (c *Config) Validate() error {
	switch {
	case c.Version > walog.ConfigVersion:
		return &ConfigError{Kind: ConfigErrorKindUnsupportedVersion, Err: fmt.Errorf("config version %d is not supported", c.Version)}
	case len(c.Dirs) == 0:
		return invalid("tserver.wal.dirs", "at least one directory is required")
	case c.Replication < 0:
		return invalid("tserver.wal.replication", "must not be negative")
	case c.BlockSize < 0:
		return invalid("tserver.wal.blocksize", "must not be negative")
	case c.MaxLogSize <= 0:
		return invalid("tserver.walog.max.size", "must be positive")
	}
	for _, d := range c.Dirs {
		if d == "" {
			return invalid("tserver.wal.dirs", "empty directory")
		}
	}
	if _, err := c.Codec(); err != nil {
		return invalid("tserver.wal.compression.codec", err.Error())
	}
	if _, _, err := c.Crypto(); err != nil {
		return invalid("crypto.module", err.Error())
	}
	return nil
}

func invalid(field, reason string) error {
	return &ConfigError{Kind: ConfigErrorKindInvalid, Field: field, Err: fmt.Errorf("%s: %s", field, reason)}
}

// Create writes a default config to path, refusing to overwrite.
func Create(path string) (*Config, error) {
	if helpers.Exists(path) {
		return nil, &ConfigError{
			Kind: ConfigErrorKindAlreadyExists,
			Err:  fmt.Errorf("config already exists at %s", path),
		}
	}
	c := Default()
	if err := c.Save(path); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	if !helpers.Exists(path) {
		return nil, &ConfigError{Kind: ConfigErrorKindNotFound, Err: fs.ErrNotExist}
	}

	c := &Config{}
	if err := jsonutil.ReadFileStrict(path, c); err != nil {
		return nil, &ConfigError{Kind: ConfigErrorKindDecode, Err: err}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadOrDefault loads path when it is set and exists, else returns Default().
func LoadOrDefault(path string) (*Config, error) {
	if path == "" || !helpers.Exists(path) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the config to path atomically.
func (c *Config) Save(path string) error {
	data, err := jsonutil.Marshal(c)
	if err != nil {
		return &ConfigError{Kind: ConfigErrorKindEncode, Err: err}
	}
	if err := helpers.Ensure(filepath.Dir(path), true); err != nil {
		return &ConfigError{Kind: ConfigErrorKindWrite, Err: err}
	}
	return writeFile(path, data)
}

func writeFile(filePath string, data []byte) error {
	if err := helpers.AtomicFileWrite(filePath, data); err != nil {
		return &ConfigError{Kind: ConfigErrorKindWrite, Err: err}
	}
	f, err := os.Open(filepath.Dir(filePath)) //nolint:gosec
	if err != nil {
		return &ConfigError{Kind: ConfigErrorKindWrite, Err: err}
	}
	defer func() { _ = f.Close() }()

	if err := f.Sync(); err != nil {
		return &ConfigError{Kind: ConfigErrorKindWrite, Err: err}
	}
	return nil
}
