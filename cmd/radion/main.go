package main

import (
	"flag"
	"fmt"
	"os"
)

type command interface {
	Name() string
	Help() string
	Register(*flag.FlagSet)
	Run() error
}

var (
	successExitCode = 0
	errorExitCode   = 1
	commands        []command
)

func run(args []string) int {
	cmdName, cmdArgs := parseArgs(args)
	if cmdName == "" {
		printUsage()
		return errorExitCode
	}

	for _, cmd := range commands {
		if cmd.Name() == cmdName {
			flags := flag.NewFlagSet(cmdName, flag.ExitOnError)
			cmd.Register(flags)
			if err := flags.Parse(cmdArgs); err != nil {
				flags.PrintDefaults()
				return errorExitCode
			}
			if err := cmd.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
				return errorExitCode
			}
			return successExitCode
		}
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmdName)
	printUsage()
	return errorExitCode
}

func main() {
	os.Exit(run(os.Args))
}

func init() {
	commands = []command{&captureCommand{}, &infoCommand{}}
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func printUsage() {
	fmt.Println("Radion is a CLI for streaming I/Q samples from rtl_tcp servers")
	fmt.Println()
	fmt.Println("Usage: radion <command>")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}
