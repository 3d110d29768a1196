package main

import "github.com/samirrijal/vertexgen/internal/cli"

func main() {
	cli.Execute()
}
