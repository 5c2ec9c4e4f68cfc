package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/mgpai22/momentnav/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
