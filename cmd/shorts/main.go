package main

import (
	"os"

	"news-shorts/cmd/shorts/commands"
)

func main() {
	os.Exit(commands.Execute())
}
