package main

import "fmt"

// buildConfig collects and validates the "build" subcommand's flags
// before any I/O happens, the same validate-before-run shape the
// daemon's top-level config follows.
type buildConfig struct {
	outputPath string
	blockSize  int
	compress   bool
}

func (c buildConfig) Validate() error {
	if c.outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if c.blockSize <= 0 {
		return fmt.Errorf("block-size must be positive, got %d", c.blockSize)
	}
	return nil
}
