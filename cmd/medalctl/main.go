// Command medalctl queries the Games results feed from the terminal.
package main

import (
	"os"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
