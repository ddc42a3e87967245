// Package codec selects the stream compression applied to triplet files and
// blobs.
//
// The codec is chosen from the file or blob name: ".zst" and ".zstd" use
// Zstandard, ".lz4" uses LZ4 frames, and every other name is stored as plain
// text. Changing a name's suffix therefore changes how its bytes are read.
package codec

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec wraps readers and writers with a compression format.
// Implementations must be safe for concurrent use.
type Codec interface {
	// NewReader returns a reader that decompresses r.
	NewReader(r io.Reader) (io.ReadCloser, error)
	// NewWriter returns a writer that compresses into w. Closing the returned
	// writer flushes the stream but does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// Name returns the stable codec name.
	Name() string
}

var (
	// None stores bytes unchanged.
	None Codec = plain{}
	// Zstd compresses with Zstandard at the default level.
	Zstd Codec = zstdCodec{level: zstd.SpeedDefault}
	// LZ4 compresses with LZ4 frames.
	LZ4 Codec = lz4Codec{}
)

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch strings.ToLower(name) {
	case "", "none", "plain":
		return None, true
	case "zstd":
		return Zstd, true
	case "lz4":
		return LZ4, true
	default:
		return nil, false
	}
}

// ForPath returns the codec implied by the suffix of a file or blob name.
func ForPath(name string) Codec {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

type plain struct{}

func (plain) NewReader(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil }

func (plain) NewWriter(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }

func (plain) Name() string { return "none" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type zstdCodec struct {
	level zstd.EncoderLevel
}

func (zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd reader: %w", err)
	}
	return dec.IOReadCloser(), nil
}

func (c zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return nil, fmt.Errorf("codec: zstd writer: %w", err)
	}
	return enc, nil
}

func (zstdCodec) Name() string { return "zstd" }

type lz4Codec struct{}

func (lz4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (lz4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (lz4Codec) Name() string { return "lz4" }
