// Command hiera answers configuration lookups from the command line or over HTTP.
//
// Usage:
//
//	hiera [-c hiera.yaml] [-a|-h] [-d default] [-o override] key [var=value ...]
//	hiera serve [-c hiera.yaml] [-addr 127.0.0.1:8140]
//	hiera version
package main

import (
	"fmt"
	"io"
	"os"

	hiera "github.com/0xalexb/hjarta-hiera"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "serve":
			return runServe(args[1:], stderr)
		case "version":
			printVersion(stdout)

			return 0
		case "help", "--help":
			printUsage(stderr)

			return 0
		}
	}

	return runLookup(args, stdout, stderr)
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "hiera %s (commit %s, built %s)\n", hiera.Version, hiera.Commit, hiera.CompiledAt)
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `Usage:
  hiera [flags] key [var=value ...]   look up key with the given scope
  hiera serve [flags]                 serve the lookup API
  hiera version                       print version information

Run "hiera -help" or "hiera serve -help" for flags.
`)
}
