package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jakubtomsu/raven/internal/config"
)

// cmdConfig writes the effective configuration (defaults, config file and
// flags merged) so it can be edited and reused.
func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	path, err := writeConfig(cfg, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Config written to %s\n", path)
}

// writeConfig saves cfg to path, or to the user config directory when path
// is empty, and returns where it was written.
func writeConfig(cfg *config.Config, path string) (string, error) {
	if path == "" {
		if err := cfg.Save(); err != nil {
			return "", fmt.Errorf("saving config: %w", err)
		}
		return config.DefaultPath(), nil
	}
	if err := cfg.SaveTo(path); err != nil {
		return "", fmt.Errorf("saving config: %w", err)
	}
	return path, nil
}
