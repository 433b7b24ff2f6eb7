package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kuducore/tabletstore/cfile"
)

var dumpCommand = &cli.Command{
	Name:      "dump",
	Usage:     "print every key/value pair in a CFile in key order",
	ArgsUsage: "<input-file>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "cache-bytes", Value: 8 * 1024 * 1024, Usage: "block cache capacity in bytes"},
	},
	Action: runDump,
}

func runDump(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("dump requires exactly one argument: <input-file>")
	}

	f, err := os.Open(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	info, keyType, err := readFooter(f)
	if err != nil {
		return fmt.Errorf("read footer: %w", err)
	}

	r := cfile.OpenReader(f)
	cache := cfile.NewBlockCache(c.Int("cache-bytes"))
	it := cfile.NewIterator(cfile.NewCachingBlockReader(r, cache, 0), keyType, info.Root)
	defer it.Close()
	if err := it.SeekToFirst(); err != nil {
		if err == cfile.ErrNotFound {
			return nil
		}
		return fmt.Errorf("seek to first key: %w", err)
	}

	for {
		key := it.GetCurrentKey()
		ptr, err := it.GetCurrentBlockPointer()
		if err != nil {
			return fmt.Errorf("decode block pointer for key %q: %w", key, err)
		}
		value, err := r.ReadBlock(ptr)
		if err != nil {
			return fmt.Errorf("read value block for key %q: %w", key, err)
		}
		fmt.Printf("%s\t%s\n", key, value)

		if !it.HasNext() {
			break
		}
		if err := it.Next(); err != nil {
			return fmt.Errorf("advance iterator: %w", err)
		}
	}
	return nil
}
