package main

import (
	"os"

	"rdbsnap/internal/cli"
)

func main() {
	code := cli.Execute(os.Args[1:])
	os.Exit(code)
}
