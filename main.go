package main

import (
	"os"

	"github.com/notevault/notevault/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
