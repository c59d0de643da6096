package cli_test

import (
	"testing"
	"time"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/walog/internal/cli"
	"github.com/julianstephens/walog/internal/walog/catalog"
)

func TestLogRows(t *testing.T) {
	opened := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	closed := opened.Add(time.Hour)
	rows := cli.LogRows([]catalog.Entry{
		{Name: "a", Address: "h:1", State: catalog.StateOpen, OpenedAt: opened, Crypto: "NullCryptoModule", Sync: "hsync"},
		{
			Name: "b", Address: "h:1", State: catalog.StateClosed, OpenedAt: opened, ClosedAt: &closed,
			Compression: "snappy", Crypto: "NullCryptoModule", Sync: "hflush",
		},
	})

	tst.AssertEqual(t, len(rows), 3, "header plus one row per entry")
	tst.AssertEqual(t, rows[0][0], "NAME", "header first")
	tst.AssertEqual(t, len(rows[0]), len(rows[1]), "rows match header width")
	tst.AssertDeepEqual(t, rows[1], []string{
		"a", "h:1", "open", "2024-01-02T03:04:05Z", "-", "NullCryptoModule", "none", "hsync",
	})
	tst.AssertEqual(t, rows[2][4], "2024-01-02T04:04:05Z", "close time rendered")
	tst.AssertEqual(t, rows[2][6], "snappy", "compression rendered")
}

func TestLogRows_Empty(t *testing.T) {
	rows := cli.LogRows(nil)
	tst.AssertEqual(t, len(rows), 1, "header only")
}
