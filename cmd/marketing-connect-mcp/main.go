package main

import "github.com/marketing-connect/mcp-services/pkg/cli"

func main() {
	cli.Execute()
}
