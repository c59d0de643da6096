package cli

import (
	"fmt"

	"github.com/julianstephens/go-utils/cliutil"

	"github.com/julianstephens/walog/internal/walog/config"
)

// InitConfigCmd writes a default configuration file.
type InitConfigCmd struct {
	Path string `arg:"" optional:"" help:"Where to write the config" default:"walog.json" type:"path"`
}

func (c *InitConfigCmd) Run(g *Globals) error {
	cfg, err := config.Create(c.Path)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("Could not create config: %v", err))
		return err
	}
	g.Logger.Info("config created", "path", c.Path)
	fmt.Printf("Wrote %s (wal dirs: %v, codec: %s, crypto: %s)\n", c.Path, cfg.Dirs, cfg.CompressionCodec, cfg.CryptoModule)
	return nil
}
