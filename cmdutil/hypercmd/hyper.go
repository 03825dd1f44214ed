// Package hypercmd provides utilities for creating "hyper commands", where
// multiple commands are bundled into a single executable to get faster builds
// and smaller binaries.
package hypercmd

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	cli "github.com/urfave/cli"
)

// New configures a cli.Command running fn. Before fn runs, variables from
// a JSON file named .env.<name> in the working directory, if present, are
// set in the environment so envdecode picks them up.
func New(name, usage string, fn func(*cli.Context) error) cli.Command {
	return cli.Command{
		Name:   name,
		Usage:  usage,
		Before: serviceEnvLoader(name),
		Action: fn,
	}
}

// serviceEnvLoader will load JSON-format environment files before executing
// the service function.
func serviceEnvLoader(name string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		return loadEnvFile(".env." + name)
	}
}

func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "load env")
	}

	var env map[string]string
	if err := json.Unmarshal(data, &env); err != nil {
		return errors.Wrap(err, "parse env")
	}

	for k, v := range env {
		if err := os.Setenv(k, v); err != nil {
			return errors.Wrap(err, "set env")
		}
	}
	return nil
}
