package main

import (
	"os"

	"github.com/sameane/physexam/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
