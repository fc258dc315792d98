package main

import (
	"os"

	"github.com/danielholmes839/pagi-login/internal/cli"
)

func main() {
	err := cli.Execute()
	if err != nil {
		os.Exit(1)
	}
}
