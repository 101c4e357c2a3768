package main

import "github.com/park285/chess-mcp/internal/cli"

func main() {
	cli.Execute()
}
