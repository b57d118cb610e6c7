package main

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// environment holds settings read straight from the process environment.
type environment struct {
	Configs []string `env:"FIRECROWN_CONFIG" envSeparator:","`
}

func parseEnv() (environment, error) {
	var e environment
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// configPaths returns the command's file arguments, falling back to the
// comma separated FIRECROWN_CONFIG list.
func configPaths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	e, err := parseEnv()
	if err != nil {
		return nil, err
	}
	if len(e.Configs) == 0 {
		return nil, errors.New("no configuration given: pass a file or set FIRECROWN_CONFIG")
	}
	return e.Configs, nil
}
