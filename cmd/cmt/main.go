package main

import "github.com/LeJamon/gocmt/internal/cli"

func main() {
	cli.Execute()
}
