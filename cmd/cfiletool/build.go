package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/kuducore/tabletstore/cfile"
)

var buildCommand = &cli.Command{
	Name:      "build",
	Usage:     "build a CFile from tab-separated key/value lines on stdin",
	ArgsUsage: "<output-file>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "block-size", Value: 32 * 1024, Usage: "target index block size in bytes"},
		&cli.BoolFlag{Name: "compress", Usage: "snappy-compress data and index blocks"},
	},
	Action: runBuild,
}

func runBuild(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("build requires exactly one argument: <output-file>")
	}
	cfg := buildConfig{
		outputPath: c.Args().Get(0),
		blockSize:  c.Int("block-size"),
		compress:   c.Bool("compress"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	f, err := os.Create(cfg.outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := cfile.NewWriter(f, cfile.WriterOptions{Compress: cfg.compress})
	builder := cfile.NewIndexTreeBuilder(w, cfile.BuilderOptions{TargetBlockSize: cfg.blockSize})

	scanner := bufio.NewScanner(os.Stdin)
	var n int
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return fmt.Errorf("line %d: expected \"key\\tvalue\", got %q", n+1, line)
		}
		key, value := []byte(parts[0]), []byte(parts[1])

		dataPtr, err := w.WriteBlock(value)
		if err != nil {
			return fmt.Errorf("write data block for key %q: %w", key, err)
		}
		if err := builder.Append(key, cfile.EncodeBlockPointer(dataPtr)); err != nil {
			return fmt.Errorf("append index entry for key %q: %w", key, err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	info, err := builder.Finish()
	if err != nil {
		return fmt.Errorf("finish index tree: %w", err)
	}
	if err := w.Sync(); err != nil {
		return fmt.Errorf("sync output file: %w", err)
	}
	if err := writeFooter(f, info); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	log.Info("built cfile", "path", cfg.outputPath, "entries", n, "depth", info.Depth, "root_offset", info.Root.Offset, "root_size", info.Root.Size)
	return nil
}
