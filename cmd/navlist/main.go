// navlist - navigation list engine for file browser sidebars
package main

import (
	"os"

	"github.com/rescale/navlist/internal/cli"
	"github.com/rescale/navlist/internal/version"
)

// Version information, overridden with -ldflags at build time.
var (
	Version   = "v0.3.0-dev"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
