// Package savefile reads compressed save files from disk and decodes them
// into the byte stream that the escape scanner consumes.
package savefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

var (
	// ErrRead is wrapped by every failure to read a save file from storage.
	ErrRead = errors.New("read save file")
	// ErrDecompress is wrapped by every failure to decode a save file.
	ErrDecompress = errors.New("decompress save file")
)

// Limits bounds how a save file is decoded.
type Limits struct {
	// MaxDecompressedBytes aborts decoding once the output grows past this
	// many bytes. Zero means unbounded.
	MaxDecompressedBytes int64
	// Raw skips decompression and scans the file contents as they are.
	Raw bool
}

// Save is a fully materialized save file.
type Save struct {
	Path string
	Size int64  // raw bytes on disk
	Data []byte // decompressed stream
}

// ReadFile returns the raw bytes of the file at path.
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return b, nil
}

// Load reads path and decodes it according to limits.
func Load(path string, limits Limits) (Save, error) {
	raw, err := ReadFile(path)
	if err != nil {
		return Save{}, err
	}
	s := Save{Path: path, Size: int64(len(raw))}
	if limits.Raw {
		s.Data = raw
		return s, nil
	}
	s.Data, err = Decompress(raw, limits)
	if err != nil {
		return Save{}, err
	}
	return s, nil
}

// Decompress decodes the first gzip member in raw. Trailing members are
// ignored.
func Decompress(raw []byte, limits Limits) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	defer zr.Close()
	zr.Multistream(false)

	out, err := readAllBounded(zr, limits.MaxDecompressedBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	return out, nil
}

// Compress gzips data. It is the inverse of Decompress and is mostly useful
// for building fixtures.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsGzip reports whether b starts with the gzip magic number.
func IsGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

func readAllBounded(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	var buf bytes.Buffer
	chunk := int64(32 * 1024)
	for {
		remain := limit - int64(buf.Len())
		sz := chunk
		if sz > remain {
			// read one byte past the budget to tell "exactly max" from "more"
			sz = remain + 1
		}
		n, err := io.CopyN(&buf, r, sz)
		if int64(buf.Len()) > limit {
			return nil, fmt.Errorf("decompressed size exceeds %d bytes", limit)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf.Bytes(), nil
			}
			return nil, err
		}
		if n == 0 {
			return buf.Bytes(), nil
		}
	}
}
