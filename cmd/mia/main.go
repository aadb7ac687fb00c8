package main

import (
	"os"

	"github.com/mialabs/mia-session/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
