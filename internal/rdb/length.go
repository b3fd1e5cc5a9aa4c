package rdb

import (
	"fmt"
	"strconv"

	lzf "github.com/zhuyie/golzf"
)

// Length-prefix special encodings (top two bits == 11, or the 0x80/0x81
// sentinels under the 10xxxxxx pattern). See spec.md §4.2.
const (
	encInt8  = 0
	encInt16 = 1
	encInt32 = 2
	encLZF   = 3
)

// readLength parses one self-describing length prefix. The returned bool
// is true when the first byte denoted a special encoding (integer or LZF)
// rather than a plain byte count; in that case length carries the 6-bit
// selector, not a length.
func (d *Decoder) readLength() (uint64, bool, error) {
	first, err := d.r.ReadU8()
	if err != nil {
		return 0, false, err
	}

	switch first >> 6 {
	case 0:
		// 00|XXXXXX - 6-bit length
		return uint64(first & 0x3F), false, nil

	case 1:
		// 01|XXXXXX XXXXXXXX - 14-bit length, big-endian
		next, err := d.r.ReadU8()
		if err != nil {
			return 0, false, err
		}
		return (uint64(first&0x3F) << 8) | uint64(next), false, nil

	case 2:
		switch first {
		case 0x80:
			v, err := d.r.ReadBEU32()
			return uint64(v), false, err
		case 0x81:
			v, err := d.r.ReadBEU64()
			return v, false, err
		default:
			return 0, false, newDecodeError(ErrBadLengthPrefix, d.r.Position(), fmt.Errorf("invalid 10xxxxxx length marker 0x%02x", first))
		}

	default: // 3: 11|XXXXXX - special encoding
		return uint64(first & 0x3F), true, nil
	}
}

// readStringValue decodes one RDB string per §4.2: dispatches on the
// length-prefix byte to either a literal byte run, one of the three
// integer-as-decimal-ASCII encodings, or an LZF-compressed run.
func (d *Decoder) readStringValue() ([]byte, error) {
	length, special, err := d.readLength()
	if err != nil {
		return nil, err
	}

	if special {
		return d.readSpecialString(length)
	}

	if length == 0 {
		return []byte{}, nil
	}

	if length > d.opts.maxStringBytes() {
		d.warnf(WarnSizeCeilingExceeded, "string of %d bytes exceeds safety ceiling of %d bytes; skipped", length, d.opts.maxStringBytes())
		if err := d.r.Skip(int(length)); err != nil {
			return nil, newDecodeError(ErrSizeCeilingExceeded, d.r.Position(), err)
		}
		return []byte(fmt.Sprintf("<skipped %d bytes, exceeds safety ceiling>", length)), nil
	}

	buf, err := d.r.ReadExact(int(length))
	if err != nil {
		return nil, newDecodeError(ErrUnexpectedEOF, d.r.Position(), err)
	}
	return buf, nil
}

func (d *Decoder) readSpecialString(encoding uint64) ([]byte, error) {
	switch encoding {
	case encInt8:
		b, err := d.r.ReadU8()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(int(int8(b)))), nil

	case encInt16:
		v, err := d.r.ReadLEU16()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(int(int16(v)))), nil

	case encInt32:
		v, err := d.r.ReadLEU32()
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(int(int32(v)))), nil

	case encLZF:
		return d.readLZFString()

	default:
		return nil, newDecodeError(ErrBadEncoding, d.r.Position(), fmt.Errorf("unsupported length-prefix special encoding %d", encoding))
	}
}

// readLZFString reads [compressed_len][original_len][payload] and expands
// it with the classical LZF back-reference scheme (see spec.md §4.2).
func (d *Decoder) readLZFString() ([]byte, error) {
	compressedLen, _, err := d.readLength()
	if err != nil {
		return nil, err
	}
	originalLen, _, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if originalLen > d.opts.maxStringBytes() {
		d.warnf(WarnSizeCeilingExceeded, "LZF string of %d decompressed bytes exceeds safety ceiling; skipped", originalLen)
		if err := d.r.Skip(int(compressedLen)); err != nil {
			return nil, newDecodeError(ErrSizeCeilingExceeded, d.r.Position(), err)
		}
		return []byte(fmt.Sprintf("<skipped %d bytes, exceeds safety ceiling>", originalLen)), nil
	}

	compressed, err := d.r.ReadExact(int(compressedLen))
	if err != nil {
		return nil, newDecodeError(ErrUnexpectedEOF, d.r.Position(), err)
	}

	dst := make([]byte, originalLen)
	n, err := lzf.Decompress(compressed, dst)
	if err != nil {
		return nil, newDecodeError(ErrBadLzf, d.r.Position(), err)
	}
	if uint64(n) != originalLen {
		return nil, newDecodeError(ErrBadLzf, d.r.Position(), fmt.Errorf("lzf decompressed length mismatch: expected %d, got %d", originalLen, n))
	}
	return dst, nil
}
