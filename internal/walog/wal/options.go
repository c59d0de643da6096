package wal

import (
	"time"

	"github.com/julianstephens/walog/internal/logger"
	"github.com/julianstephens/walog/internal/walog/catalog"
	"github.com/julianstephens/walog/internal/walog/config"
	"github.com/julianstephens/walog/internal/walog/crypto"
	"github.com/julianstephens/walog/internal/walog/metrics"
	"github.com/julianstephens/walog/internal/walog/storage"
)

// Tracker is told when logs are created and closed. *catalog.Catalog satisfies it.
type Tracker interface {
	Register(e catalog.Entry) error
	MarkClosed(name string, at time.Time) error
}

var _ Tracker = (*catalog.Catalog)(nil)

type Options struct {
	// Config supplies directories, placement hints, sync, compression and crypto settings.
	Config *config.Config

	Volumes storage.VolumeManager

	// Crypto overrides the module built from Config. Useful in tests.
	Crypto crypto.Module

	// Tracker, when set, records the log in a catalog.
	Tracker Tracker

	Metrics *metrics.Metrics
	Logger  logger.Logger
}

func (o Options) validate() error {
	if o.Config == nil {
		return wrapLogErr("options", ErrInvalidOptions, "", errNilConfig)
	}
	if o.Volumes == nil {
		return wrapLogErr("options", ErrInvalidOptions, "", errNilVolumes)
	}
	if err := o.Config.Validate(); err != nil {
		return wrapLogErr("options", ErrInvalidOptions, "", err)
	}
	return nil
}
