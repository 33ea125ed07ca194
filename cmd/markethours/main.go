package main

import (
	"os"

	"github.com/wonny/market-hours/cmd/markethours/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
