package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/go-utils/cliutil"

	"github.com/julianstephens/walog/internal/walog/catalog"
)

// LogsCmd lists the logs recorded in the catalog.
type LogsCmd struct {
	Open bool `help:"Only show logs that were never closed"`
}

func (c *LogsCmd) Run(g *Globals) error {
	cfg, err := g.Config()
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("Could not load config: %v", err))
		return err
	}

	cat, err := catalog.Open(cfg.CatalogPath(), nil, g.Logger)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("Could not open catalog at %s: %v", cfg.CatalogPath(), err))
		return err
	}
	defer func() { _ = cat.Close() }()

	var entries []catalog.Entry
	if c.Open {
		entries, err = cat.OpenLogs()
	} else {
		entries, err = cat.List()
	}
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("Could not list catalog: %v", err))
		return err
	}

	cliutil.PrintTable(LogRows(entries))
	return nil
}

// LogRows renders catalog entries as a table, header row first.
func LogRows(entries []catalog.Entry) [][]string {
	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, []string{"NAME", "ADDRESS", "STATE", "OPENED", "CLOSED", "CRYPTO", "COMPRESSION", "SYNC"})
	for _, e := range entries {
		closed := "-"
		if e.ClosedAt != nil {
			closed = e.ClosedAt.Format(time.RFC3339)
		}
		compression := e.Compression
		if compression == "" {
			compression = "none"
		}
		rows = append(rows, []string{
			e.Name, e.Address, string(e.State), e.OpenedAt.Format(time.RFC3339), closed, e.Crypto, compression, e.Sync,
		})
	}
	return rows
}
