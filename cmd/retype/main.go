package main

import "github.com/dynkit/retype/internal/cli"

func main() {
	cli.Execute()
}
