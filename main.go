package main

import (
	"os"

	"github.com/zz6zz666/filerag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
