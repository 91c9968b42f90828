package main

import "github.com/matteuccimarco/slim-pyramid-protocol/cmd"

func main() {
	cmd.Execute()
}
