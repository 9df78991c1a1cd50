package main

import "github.com/agentic-research/essence/cmd"

func main() {
	cmd.Execute()
}
