package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/go-utils/cliutil"
	"github.com/julianstephens/go-utils/jsonutil"

	"github.com/julianstephens/walog/internal/walog/crypto"
	"github.com/julianstephens/walog/internal/walog/record"
	"github.com/julianstephens/walog/internal/walog/wal"
)

// DumpCmd prints every record of a log file.
type DumpCmd struct {
	File  string `arg:"" help:"Log file to read" type:"existingfile"`
	JSON  bool   `help:"Print one JSON document per record"`
	Limit int    `help:"Stop after this many records (0 = all)" default:"0"`
}

func (c *DumpCmd) Run(g *Globals) error {
	r, err := openReader(g, c.File)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	n := 0
	for c.Limit == 0 || n < c.Limit {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if record.IsTruncation(err) {
				cliutil.PrintError(fmt.Sprintf("Log ends inside a record after %d complete records: %v", n, err))
			} else {
				cliutil.PrintError(fmt.Sprintf("Read failed after %d records: %v", n, err))
			}
			return err
		}
		n++

		if c.JSON {
			data, err := jsonutil.Marshal(struct {
				Offset int64        `json:"offset"`
				Type   string       `json:"type"`
				Event  record.Event `json:"event"`
			}{e.Offset, e.Type.String(), e.Event})
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			continue
		}
		fmt.Printf("%10d  %-17s  %s\n", e.Offset, e.Type, describe(e.Event))
	}

	g.Logger.Debug("dump finished", "file", c.File, "records", n)
	return nil
}

// HeaderCmd prints the negotiated header of a log file.
type HeaderCmd struct {
	File string `arg:"" help:"Log file to inspect" type:"existingfile"`
}

func (c *HeaderCmd) Run(g *Globals) error {
	r, err := openReader(g, c.File)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	info := r.Header()
	fmt.Printf("version:     %s\n", info.Version)
	fmt.Printf("crypto:      %s\n", info.CryptoIdentity)
	if info.Compressed() {
		fmt.Printf("compression: %s\n", info.Codec.Name())
	} else {
		fmt.Printf("compression: none\n")
	}
	for k, v := range info.LegacyParams {
		fmt.Printf("param:       %s=%s\n", k, v)
	}
	return nil
}

func openReader(g *Globals, path string) (*wal.LogReader, error) {
	cfg, err := g.Config()
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("Could not load config: %v", err))
		return nil, err
	}
	_, reg, err := cfg.Crypto()
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("Could not set up crypto: %v", err))
		return nil, err
	}

	r, err := wal.OpenReader(g.Volumes(), path, reg)
	if err != nil {
		if errors.Is(err, crypto.ErrUnknownModule) {
			cliutil.PrintError("Log was written with a crypto module this config does not provide")
		} else {
			cliutil.PrintError(fmt.Sprintf("Could not open log: %v", err))
		}
		return nil, err
	}
	return r, nil
}

func describe(ev record.Event) string {
	switch e := ev.(type) {
	case *record.OpenEvent:
		return "session=" + e.SessionID
	case *record.DefineTabletEvent:
		return fmt.Sprintf("seq=%d tid=%d extent=%s;%s;%s", e.Seq, e.TabletID, e.Extent.TableID, row(e.Extent.EndRow), row(e.Extent.PrevEndRow))
	case *record.ManyMutationsEvent:
		rows := make([]string, 0, len(e.Mutations))
		for _, m := range e.Mutations {
			rows = append(rows, string(m.Row))
		}
		if len(rows) > 3 {
			rows = append(rows[:3], "...")
		}
		return fmt.Sprintf("seq=%d tid=%d mutations=%d rows=[%s]", e.Seq, e.TabletID, len(e.Mutations), strings.Join(rows, " "))
	case *record.CompactionStartEvent:
		return fmt.Sprintf("seq=%d tid=%d file=%s", e.Seq, e.TabletID, e.FileName)
	case *record.CompactionFinishEvent:
		return fmt.Sprintf("seq=%d tid=%d", e.Seq, e.TabletID)
	default:
		return ""
	}
}

func row(b []byte) string {
	if b == nil {
		return "<"
	}
	return string(b)
}
