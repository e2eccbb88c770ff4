package main

import (
	"os"

	"github.com/custodia-labs/finlex-cli/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
