package main

import (
	"os"

	"toyc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
