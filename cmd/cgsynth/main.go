package main

import (
	"os"

	"github.com/stoutes/chapel/cmd/cgsynth/commands"
)

func main() {
	os.Exit(commands.Execute(os.Args[1:]))
}
