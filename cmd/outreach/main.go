package main

import (
	"fmt"
	"os"
)

const usageText = `outreach drives the social automation daemon from the terminal.

Usage:
  outreach <command> [flags]

Commands:
  ui        run the profile, briefcase and task manager
  panel     follow the running automation
  profiles  list or add profiles
  tasks     list, add, remove or start queued tasks
  config    print configuration (effective or defaults)
  help      show help

Flags:
  -h, --help   show help

Examples:
  outreach ui
  outreach panel --once
  outreach profiles add "Main"
  outreach tasks add --comment "1. Nice post" https://www.youtube.com/watch?v=abc
  outreach config --default
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
