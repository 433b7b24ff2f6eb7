package cfile

import "errors"

// ErrNotFound is returned when a seek or advance has no valid target:
// SeekAtOrBefore preceding the first key, or Next past the last entry.
var ErrNotFound = errors.New("cfile: not found")

// ErrCorruption wraps codec failures decoding a block that was read
// from the underlying CFile or block cache.
var ErrCorruption = errors.New("cfile: corrupted block")
