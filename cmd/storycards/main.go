// Command storycards is the terminal client for the story-cards server.
package main

import (
	"os"

	"github.com/sakif/story-cards/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
