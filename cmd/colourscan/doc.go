// Package colourscan provides the command-line interface for colourscan.
// It configures subcommands (scan, baseline, view, etc.), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/colourscan/colourscan/cmd/colourscan"
//	func main() { colourscan.Execute() }
package colourscan
