package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/walog/internal/walog"
	"github.com/julianstephens/walog/internal/walog/compress"
	"github.com/julianstephens/walog/internal/walog/config"
	"github.com/julianstephens/walog/internal/walog/crypto"
)

func TestCreateAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", config.FileName)

	created, err := config.Create(path)
	tst.RequireNoError(t, err)

	loaded, err := config.Load(path)
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, loaded, created)
	tst.AssertEqual(t, loaded.Version, walog.ConfigVersion, "version")
	tst.AssertTrue(t, loaded.Sync, "sync defaults on")
	tst.AssertFalse(t, loaded.Preallocate, "preallocation defaults off")

	raw, err := os.ReadFile(path) // nolint:gosec
	tst.RequireNoError(t, err)
	tst.AssertTrue(t, strings.Contains(string(raw), `"tserver.wal.dirs"`), "property-style keys")
}

func TestCreate_AlreadyExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	_, err := config.Create(path)
	tst.RequireNoError(t, err)

	_, err = config.Create(path)
	tst.AssertTrue(t, errors.Is(err, config.ErrConfigAlreadyExists), "expected already exists")
}

func TestLoad_NotFound(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	tst.AssertTrue(t, errors.Is(err, config.ErrConfigNotFound), "expected not found")
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	tst.RequireNoError(t, os.WriteFile(path, []byte(`{"version":1,"tserver.wal.bogus":true}`), 0o600))

	_, err := config.Load(path)
	tst.AssertTrue(t, errors.Is(err, config.ErrConfigDecode), "expected strict decode failure")
}

func TestLoadOrDefault(t *testing.T) {
	c, err := config.LoadOrDefault("")
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, c, config.Default())
}

func TestEffectiveBlockSize(t *testing.T) {
	c := config.Default()
	c.MaxLogSize = 1000
	tst.AssertEqual(t, c.EffectiveBlockSize(), int64(1100), "1.1 x max size when unset")

	c.BlockSize = 4096
	tst.AssertEqual(t, c.EffectiveBlockSize(), int64(4096), "explicit block size")
}

func TestCatalogPath(t *testing.T) {
	c := config.Default()
	c.Dirs = []string{"/data/wal1", "/data/wal2"}
	tst.AssertEqual(t, c.CatalogPath(), filepath.Join("/data/wal1", "catalog"), "defaults under the first wal dir")

	c.CatalogDir = "/data/catalog"
	tst.AssertEqual(t, c.CatalogPath(), "/data/catalog", "explicit catalog dir")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"no_dirs", func(c *config.Config) { c.Dirs = nil }, "tserver.wal.dirs"},
		{"empty_dir", func(c *config.Config) { c.Dirs = []string{""} }, "tserver.wal.dirs"},
		{"negative_replication", func(c *config.Config) { c.Replication = -1 }, "tserver.wal.replication"},
		{"negative_blocksize", func(c *config.Config) { c.BlockSize = -1 }, "tserver.wal.blocksize"},
		{"zero_max_size", func(c *config.Config) { c.MaxLogSize = 0 }, "tserver.walog.max.size"},
		{"unknown_codec", func(c *config.Config) {
			c.Compression = true
			c.CompressionCodec = "brotli"
		}, "tserver.wal.compression.codec"},
		{"chacha_without_secret", func(c *config.Config) { c.CryptoModule = crypto.ChaCha20Identity }, "crypto.module"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := config.Default()
			tc.mutate(c)
			err := c.Validate()
			tst.AssertTrue(t, errors.Is(err, config.ErrConfigInvalid), "expected invalid config")

			var ce *config.ConfigError
			tst.AssertTrue(t, errors.As(err, &ce), "expected *config.ConfigError")
			tst.AssertEqual(t, ce.Field, tc.field, "field")
		})
	}

	tst.RequireNoError(t, config.Default().Validate())
}

func TestCodecAndCrypto(t *testing.T) {
	c := config.Default()
	codec, err := c.Codec()
	tst.RequireNoError(t, err)
	tst.AssertTrue(t, codec == nil, "no codec when compression is off")

	c.Compression = true
	codec, err = c.Codec()
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, codec.Name(), compress.Snappy, "default codec")

	c.CryptoModule = crypto.ChaCha20Identity
	c.CryptoSecret = "s3cret"
	m, reg, err := c.Crypto()
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, m.Identity(), crypto.ChaCha20Identity, "configured module")
	_, err = reg.Lookup(crypto.NullIdentity)
	tst.RequireNoError(t, err)
}
