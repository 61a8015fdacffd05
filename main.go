package main

import (
	"os"

	"github.com/propscore/leadscore/backend/cli"
)

// Version is set by the build script
var Version = "dev"

func main() {
	cli.SetVersion(Version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
