// Package envelope sniffs the outer framing a snapshot file may be wrapped
// in before the actual magic header starts, and returns a reader that
// transparently peels it off. Whole-file gzip/zstd/lz4 wrapping is common
// when snapshots are shipped over the wire or archived, distinct from the
// in-body compressed-string encodings the rdb package itself decodes.
package envelope

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Kind identifies the detected outer framing.
type Kind string

const (
	KindNone Kind = "none"
	KindGzip Kind = "gzip"
	KindZstd Kind = "zstd"
	KindLZ4  Kind = "lz4"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Open peeks at the leading bytes of src and, if they match a known
// compressed-container magic, wraps src in the matching decompressor. The
// returned Kind records what was detected so callers can surface it as a
// diagnostic; the returned reader always yields the unwrapped byte stream,
// one layer, since these formats aren't nested in practice.
func Open(src io.Reader) (io.Reader, Kind, error) {
	br := bufio.NewReaderSize(src, 64*1024)

	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, KindNone, fmt.Errorf("envelope: peek leading bytes: %w", err)
	}

	switch {
	case len(head) >= 2 && head[0] == gzipMagic[0] && head[1] == gzipMagic[1]:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, KindNone, fmt.Errorf("envelope: open gzip stream: %w", err)
		}
		return gr, KindGzip, nil

	case len(head) == 4 && bytesEqual(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, KindNone, fmt.Errorf("envelope: open zstd stream: %w", err)
		}
		return zr, KindZstd, nil

	case len(head) == 4 && bytesEqual(head, lz4Magic):
		return lz4.NewReader(br), KindLZ4, nil

	default:
		return br, KindNone, nil
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
