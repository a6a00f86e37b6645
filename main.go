package main

import (
	"os"

	"github.com/joeaphiboon/BiteSizedLearning/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
