package main

import (
	"os"

	"github.com/Taichi-iskw/yt-trend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
