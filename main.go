// Package main is the entry point for the jsgooze CLI.
package main

import "gooze.dev/pkg/jsgooze/cmd"

func main() {
	cmd.Execute()
}
