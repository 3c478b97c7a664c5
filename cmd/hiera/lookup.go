package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	hiera "github.com/0xalexb/hjarta-hiera"
	"github.com/0xalexb/hjarta-hiera/backend"
	"github.com/0xalexb/hjarta-hiera/logging"
	"github.com/0xalexb/hjarta-hiera/scope"
)

var (
	errNoKey         = errors.New("no key given")
	errBadAssignment = errors.New("scope arguments must look like var=value")
	errResolution    = errors.New("-a and -h are mutually exclusive")
)

type lookupFlags struct {
	configPath string
	section    string
	scopeFile  string
	def        string
	override   string
	array      bool
	hash       bool
	debug      bool
}

func runLookup(args []string, stdout, stderr io.Writer) int {
	var opts lookupFlags

	fs := flag.NewFlagSet("hiera", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "c", hiera.DefaultConfigPath, "hiera configuration file")
	fs.StringVar(&opts.section, "path", "", "colon separated path to the hiera document inside the file")
	fs.StringVar(&opts.scopeFile, "s", "", "YAML or JSON file with scope variables")
	fs.StringVar(&opts.def, "d", "", "default answer, interpolated against the scope")
	fs.StringVar(&opts.override, "o", "", "data source consulted before the hierarchy")
	fs.BoolVar(&opts.array, "a", false, "array resolution")
	fs.BoolVar(&opts.hash, "h", false, "hash resolution")
	fs.BoolVar(&opts.debug, "debug", false, "log backend activity to stderr")

	err := fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	err = lookup(context.Background(), opts, fs.Args(), stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "hiera: %v\n", err)

		return 1
	}

	return 0
}

func lookup(ctx context.Context, opts lookupFlags, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errNoKey
	}

	if opts.array && opts.hash {
		return errResolution
	}

	key := args[0]

	sc, err := buildScope(opts.scopeFile, args[1:])
	if err != nil {
		return err
	}

	cfg, err := hiera.LoadConfig(opts.configPath, opts.section)
	if err != nil {
		return err //nolint:wrapcheck
	}

	loggerConfig := logging.LoggerConfig{Level: "warn", Format: logging.FormatText}
	if opts.debug {
		loggerConfig.Level = "debug"
	}

	cache := backend.NewCache()
	defer func() { _ = cache.Close() }()

	dispatcher, err := hiera.NewDispatcher(cfg, cache, logging.NewLogger(loggerConfig, stderr))
	if err != nil {
		return err //nolint:wrapcheck
	}

	resolution := backend.Priority

	switch {
	case opts.array:
		resolution = backend.Array
	case opts.hash:
		resolution = backend.Hash
	}

	var def any
	if opts.def != "" {
		def = opts.def
	}

	value, err := dispatcher.Lookup(ctx, key, def, sc, opts.override, resolution)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return printValue(stdout, value)
}

// buildScope merges the scope file with var=value arguments; arguments win.
func buildScope(scopeFile string, assignments []string) (scope.Map, error) {
	sc := scope.Map{}

	if scopeFile != "" {
		raw, err := os.ReadFile(scopeFile) //nolint:gosec // path is supplied by the operator
		if err != nil {
			return nil, fmt.Errorf("reading scope file: %w", err)
		}

		var vars map[string]any

		err = yaml.Unmarshal(raw, &vars)
		if err != nil {
			return nil, fmt.Errorf("parsing scope file: %w", err)
		}

		for name, value := range vars {
			if value == nil {
				continue
			}

			sc[name] = fmt.Sprint(value)
		}
	}

	for _, assignment := range assignments {
		name, value, ok := strings.Cut(assignment, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", errBadAssignment, assignment)
		}

		sc[name] = value
	}

	return sc, nil
}

func printValue(w io.Writer, value any) error {
	switch typed := value.(type) {
	case nil:
		_, err := fmt.Fprintln(w, "nil")

		return err //nolint:wrapcheck
	case string:
		_, err := fmt.Fprintln(w, typed)

		return err //nolint:wrapcheck
	case []any, []string, map[string]any:
		out, err := yaml.Marshal(typed)
		if err != nil {
			return fmt.Errorf("encoding answer: %w", err)
		}

		_, err = w.Write(out)

		return err //nolint:wrapcheck
	default:
		_, err := fmt.Fprintln(w, typed)

		return err //nolint:wrapcheck
	}
}
