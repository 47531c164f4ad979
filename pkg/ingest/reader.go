package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// lz4FrameMagic is the little-endian LZ4 frame magic number 0x184D2204.
var lz4FrameMagic = []byte{0x04, 0x22, 0x4D, 0x18}

// StdinPath selects standard input in [Load].
const StdinPath = "-"

// Decode reads a document from r, decompressing LZ4 frames when present.
func Decode(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br

	head, err := br.Peek(len(lz4FrameMagic))
	if err == nil && bytes.Equal(head, lz4FrameMagic) {
		src = lz4.NewReader(br)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read ensemble document: %w", err)
	}

	return Parse(data)
}

// Load reads a document from path, or from stdin when path is [StdinPath].
// Files ending in .lz4 must hold an LZ4 frame.
func Load(path string, stdin io.Reader) (*Document, error) {
	if path == StdinPath {
		return Decode(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ensemble document: %w", err)
	}
	defer f.Close()

	var doc *Document

	if strings.HasSuffix(path, ".lz4") {
		data, readErr := io.ReadAll(lz4.NewReader(f))
		if readErr != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, readErr)
		}

		doc, err = Parse(data)
	} else {
		doc, err = Decode(f)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// Compress writes data to w as a single LZ4 frame.
func Compress(w io.Writer, data []byte) error {
	zw := lz4.NewWriter(w)

	_, err := zw.Write(data)
	if err != nil {
		return fmt.Errorf("lz4 write: %w", err)
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}

	return nil
}
