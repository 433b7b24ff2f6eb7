package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/kuducore/tabletstore/cfile"
)

// Footer layout: <footer bytes><uint32 footer length>, so a reader
// can seek to end-of-file, read the trailing length, then seek back
// to read the footer itself without needing a fixed-size header.
const footerLengthSize = 4

func writeFooter(f *os.File, info cfile.BTreeInfo) error {
	data, err := cfile.EncodeFooter(info, cfile.ByteArrayKeyType)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	lenBuf := make([]byte, footerLengthSize)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(data)))
	_, err = f.Write(lenBuf)
	return err
}

func readFooter(f *os.File) (cfile.BTreeInfo, cfile.KeyType, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return cfile.BTreeInfo{}, 0, err
	}
	if size < footerLengthSize {
		return cfile.BTreeInfo{}, 0, fmt.Errorf("file too small to contain a footer")
	}

	lenBuf := make([]byte, footerLengthSize)
	if _, err := f.ReadAt(lenBuf, size-footerLengthSize); err != nil {
		return cfile.BTreeInfo{}, 0, fmt.Errorf("read footer length: %w", err)
	}
	footerLen := int64(binary.BigEndian.Uint32(lenBuf))
	if footerLen <= 0 || footerLen > size-footerLengthSize {
		return cfile.BTreeInfo{}, 0, fmt.Errorf("corrupt footer length %d", footerLen)
	}

	footerData := make([]byte, footerLen)
	if _, err := f.ReadAt(footerData, size-footerLengthSize-footerLen); err != nil {
		return cfile.BTreeInfo{}, 0, fmt.Errorf("read footer: %w", err)
	}
	return cfile.DecodeFooter(footerData)
}
