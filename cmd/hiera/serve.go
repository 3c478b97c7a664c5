package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	hiera "github.com/0xalexb/hjarta-hiera"
	"github.com/0xalexb/hjarta-hiera/listener"
)

var errUnexpectedArgs = errors.New("serve takes no arguments")

func serveOptions(args []string, stderr io.Writer) ([]hiera.Option, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("c", hiera.DefaultConfigPath, "hiera configuration file")
	section := fs.String("path", "", "colon separated path to the hiera document inside the file")
	addr := fs.String("addr", "", "listen address, overrides server.address")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFormat := fs.String("log-format", "", "json or text")

	err := fs.Parse(args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: %q", errUnexpectedArgs, fs.Args())
	}

	opts := []hiera.Option{
		hiera.WithConfigFile(*configPath),
		hiera.WithConfigSection(*section),
		hiera.WithLogLevel(*logLevel),
		hiera.WithLogFormat(*logFormat),
	}

	if *addr != "" {
		opts = append(opts, hiera.WithListener(listener.WithAddress(*addr)))
	}

	return opts, nil
}

func runServe(args []string, stderr io.Writer) int {
	opts, err := serveOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		_, _ = fmt.Fprintf(stderr, "hiera: %v\n", err)

		return 2
	}

	app := hiera.NewApp(opts...)

	err = app.Err()
	if err != nil {
		slog.Error("failed to build app", "error", err)

		return 1
	}

	slog.Info("starting hiera", "version", hiera.Version, "commit", hiera.Commit)
	app.Run()

	return 0
}
