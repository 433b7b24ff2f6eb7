package cfile

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// EncodeBlockPointer exposes encodeBlockPointer to callers outside
// this package (e.g. cmd/cfiletool) that need to embed a pointer as
// an index entry's value without going through IndexTreeBuilder.
func EncodeBlockPointer(p BlockPointer) []byte {
	return encodeBlockPointer(p)
}

// DecodeBlockPointer exposes decodeBlockPointer to external callers.
func DecodeBlockPointer(b []byte) (BlockPointer, error) {
	return decodeBlockPointer(b)
}

// footerWire is the RLP shape of a CFile's trailing footer record.
type footerWire struct {
	RootOffset uint64
	RootSize   uint32
	Depth      uint32
	KeyType    uint8
}

// EncodeFooter serializes a BTreeInfo plus the key type used to build
// it into the trailing footer record written at the end of a CFile.
func EncodeFooter(info BTreeInfo, keyType KeyType) ([]byte, error) {
	wire := footerWire{
		RootOffset: info.Root.Offset,
		RootSize:   info.Root.Size,
		Depth:      uint32(info.Depth),
		KeyType:    uint8(keyType),
	}
	data, err := rlp.EncodeToBytes(&wire)
	if err != nil {
		return nil, fmt.Errorf("cfile: encode footer: %w", err)
	}
	return data, nil
}

// DecodeFooter parses a footer record written by EncodeFooter.
func DecodeFooter(data []byte) (BTreeInfo, KeyType, error) {
	var wire footerWire
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return BTreeInfo{}, 0, fmt.Errorf("%w: footer: %v", ErrCorruption, err)
	}
	info := BTreeInfo{
		Root:  BlockPointer{Offset: wire.RootOffset, Size: wire.RootSize},
		Depth: int(wire.Depth),
	}
	return info, KeyType(wire.KeyType), nil
}
