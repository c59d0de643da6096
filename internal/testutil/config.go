package testutil

import "github.com/julianstephens/walog/internal/walog/config"

// WALConfig returns a default config rooted at dir with a small block size.
func WALConfig(dir string) *config.Config {
	c := config.Default()
	c.Dirs = []string{dir}
	c.BlockSize = 64 << 10
	return c
}
