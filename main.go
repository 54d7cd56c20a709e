package main

import "github.com/agentic-research/nomadkit/cmd"

func main() {
	cmd.Execute()
}
