package cli

import (
	"github.com/julianstephens/walog/internal/logger"
	"github.com/julianstephens/walog/internal/walog/config"
	"github.com/julianstephens/walog/internal/walog/storage"
)

// Globals is bound into every command's Run method.
type Globals struct {
	ConfigPath string
	Logger     logger.Logger
}

// Config loads the configured file, or the defaults when none exists.
func (g *Globals) Config() (*config.Config, error) {
	return config.LoadOrDefault(g.ConfigPath)
}

// Volumes is the local-disk volume manager every command works against.
func (g *Globals) Volumes() *storage.FSVolumeManager {
	return storage.NewDisk(g.Logger)
}
