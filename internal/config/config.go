package config

import (
	"errors"
	"flag"
	"io"
)

// DefaultOutputPath is where the DevizElite app reads its FR/BE catalog from,
// relative to the working directory of the emitter.
const DefaultOutputPath = "../../DevizElite/products_fr_be.json"

// StdoutPath as the output path writes the catalog to standard output.
const StdoutPath = "-"

// Config holds instance-level configuration for the emitter.
type Config struct {
	OutputPath string
}

// RegisterFlags registers CLI flags and returns a reader that captures them after parsing.
func RegisterFlags() func() Config {
	output := flag.String("output", DefaultOutputPath, "Path of the products JSON file to write, or - for stdout")

	return func() Config {
		return Config{
			OutputPath: *output,
		}
	}
}

// ParseLenient parses args into fs without failing: unknown or malformed flags
// and positional arguments are skipped. It returns what was skipped.
func ParseLenient(fs *flag.FlagSet, args []string) []error {
	fs.Init(fs.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var skipped []error
	for {
		err := fs.Parse(args)
		if err == nil {
			break
		}
		if !errors.Is(err, flag.ErrHelp) {
			skipped = append(skipped, err)
		}
		rest := fs.Args()
		if len(rest) == len(args) {
			// Bad flag syntax is reported without consuming the argument.
			rest = rest[1:]
		}
		args = rest
	}

	for _, a := range fs.Args() {
		skipped = append(skipped, errors.New("unexpected argument "+a))
	}

	return skipped
}
