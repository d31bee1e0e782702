// SPDX-License-Identifier: MIT

// glaze is the command-line front end for the glaze chemistry packages.
package main

import (
	"os"

	"github.com/katalvlaran/glaze/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
