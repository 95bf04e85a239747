package main

import (
	"os"

	"github.com/groundswell/listcutter/cmd/listcutter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
