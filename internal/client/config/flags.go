package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/eventdrop/internal/flagx"
)

// GlobalFlags are the flags owned by this package. The CLI strips them
// before reading the command.
var GlobalFlags = []string{"-s", "-p", "-m", "-t"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   server base URL
//	-p string   admin password
//	-m string   max size per uploaded file (e.g. "50MiB")
//	-t int      request timeout (in seconds)
//
// Only these flags are picked out of os.Args (flagx.FilterArgs), so the
// command and its own flags do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], GlobalFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.AdminPassword, "p", cfg.AdminPassword, "admin password")
	fs.StringVar(&cfg.MaxFileSize, "m", cfg.MaxFileSize, "max size per uploaded file")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Timeout = time.Duration(*timeout) * time.Second
}
