package rdb

import (
	"fmt"
	"hash"
	"hash/crc64"
	"io"

	"rdbsnap/internal/reader"
)

// Opcodes, per spec.md §4.5. Every byte in 0xF8–0xFF is a reserved
// opcode; anything else is a type tag (§4.4).
const (
	opFreq      = 0xF8
	opIdle      = 0xF9
	opAux       = 0xFA
	opResizeDB  = 0xFB
	opExpireMs  = 0xFC
	opExpireSec = 0xFD
	opSelectDB  = 0xFE
	opEOF       = 0xFF
)

const magicPrefix = "REDIS"

// pending holds metadata opcodes seen since the last key/value record;
// it attaches to the very next type-tag record and never persists past
// it (spec.md §3's invariant on expiry/idle/freq).
type pending struct {
	expiryMs    *int64
	idleSeconds *int64
	freq        *int
	set         bool
}

// Decoder drives one forward pass over a snapshot byte stream. It owns the
// reader and its accumulators for the duration of the pass; nothing is
// shared across Decoder instances and there are no suspension points other
// than the underlying reads (spec.md §5).
type Decoder struct {
	r     *reader.Reader
	opts  Options
	db    int
	pend  pending
	warn  []Warning
	stats *decodeStats
	crc   hash.Hash64
}

// NewDecoder wraps src for a single decode pass.
func NewDecoder(src io.Reader, opts Options) *Decoder {
	d := &Decoder{opts: opts, stats: newDecodeStats()}
	if opts.VerifyChecksum {
		d.crc = crc64.New(jonesTable)
		src = io.TeeReader(src, d.crc)
	}
	d.r = reader.New(src)
	return d
}

// Decode runs the full pass: magic check, then the opcode/type-tag loop
// until EOF, returning the accumulated SnapshotResult.
func (d *Decoder) Decode() (*SnapshotResult, error) {
	version, err := d.readMagic()
	if err != nil {
		return nil, err
	}

	result := &SnapshotResult{MagicVersion: version}
	if version > 12 {
		d.warnf(WarnUnsupportedVersion, "magic version %d is newer than the targeted version 12; decoding will proceed best-effort", version)
	}

	for {
		opcode, err := d.r.ReadU8()
		if err != nil {
			if err == io.EOF {
				return nil, newDecodeError(ErrUnexpectedEOF, d.r.Position(), fmt.Errorf("stream ended without an EOF opcode"))
			}
			return nil, newDecodeError(ErrIo, d.r.Position(), err)
		}

		switch opcode {
		case opAux:
			if d.dropDanglingMetadata("AUX") {
				continue
			}
			key, value, err := d.readAux()
			if err != nil {
				return nil, newDecodeError(ErrIo, d.r.Position(), err)
			}
			result.Aux = upsertAux(result.Aux, key, value)

		case opResizeDB:
			if d.dropDanglingMetadata("RESIZEDB") {
				continue
			}
			if _, _, err := d.readLength(); err != nil {
				return nil, newDecodeError(ErrIo, d.r.Position(), err)
			}
			if _, _, err := d.readLength(); err != nil {
				return nil, newDecodeError(ErrIo, d.r.Position(), err)
			}

		case opExpireMs:
			if d.dropDanglingMetadata("EXPIRETIME_MS") {
				continue
			}
			ms, err := d.r.ReadLEU64()
			if err != nil {
				return nil, newDecodeError(ErrIo, d.r.Position(), err)
			}
			v := int64(ms)
			d.pend.expiryMs, d.pend.set = &v, true

		case opExpireSec:
			if d.dropDanglingMetadata("EXPIRETIME") {
				continue
			}
			sec, err := d.r.ReadLEU32()
			if err != nil {
				return nil, newDecodeError(ErrIo, d.r.Position(), err)
			}
			v := int64(sec) * 1000
			d.pend.expiryMs, d.pend.set = &v, true

		case opFreq:
			if d.dropDanglingMetadata("FREQ") {
				continue
			}
			b, err := d.r.ReadU8()
			if err != nil {
				return nil, newDecodeError(ErrIo, d.r.Position(), err)
			}
			v := int(b)
			d.pend.freq, d.pend.set = &v, true

		case opIdle:
			if d.dropDanglingMetadata("IDLE") {
				continue
			}
			secs, _, err := d.readLength()
			if err != nil {
				return nil, newDecodeError(ErrIo, d.r.Position(), err)
			}
			v := int64(secs)
			d.pend.idleSeconds, d.pend.set = &v, true

		case opSelectDB:
			if d.dropDanglingMetadata("SELECTDB") {
				continue
			}
			idx, _, err := d.readLength()
			if err != nil {
				return nil, newDecodeError(ErrIo, d.r.Position(), err)
			}
			d.db = int(idx)

		case opEOF:
			if d.dropDanglingMetadata("EOF") {
				// fall through to still consume and check the trailer
			}
			if err := d.finishEOF(result); err != nil {
				return nil, err
			}
			result.Stats = d.stats.snapshot(d.r.Position())
			result.Warnings = d.warn
			return result, nil

		default:
			entry, err := d.decodeKeyValue(opcode)
			if err != nil {
				if isFatal(err) {
					return nil, err
				}
				// Non-fatal: entry is a placeholder (or intentionally
				// skipped), keep going at the next opcode boundary.
				if entry != nil {
					result.Keys = append(result.Keys, *entry)
				}
				continue
			}
			if entry != nil {
				result.Keys = append(result.Keys, *entry)
			}
		}
	}
}

// dropDanglingMetadata warns and clears pending metadata if the opcode
// about to be handled is itself another opcode rather than a type tag —
// per spec.md §4.5, metadata must be immediately followed by a key/value
// record. It always returns false, whether or not metadata was cleared,
// so callers still process the current opcode normally afterwards.
func (d *Decoder) dropDanglingMetadata(nextOpcodeName string) bool {
	if !d.pend.set {
		return false
	}
	d.warnf(WarnDanglingMetadata, "metadata opcode not followed by a key/value record (next was %s); dropped", nextOpcodeName)
	d.pend = pending{}
	return false
}

func (d *Decoder) readMagic() (int, error) {
	buf, err := d.r.ReadExact(9)
	if err != nil {
		return 0, newDecodeError(ErrMagicMismatch, d.r.Position(), fmt.Errorf("truncated magic: %w", err))
	}
	if string(buf[:5]) != magicPrefix {
		return 0, newDecodeError(ErrMagicMismatch, d.r.Position(), fmt.Errorf("expected %q prefix, got %q", magicPrefix, buf[:5]))
	}
	version := 0
	for _, c := range buf[5:9] {
		if c < '0' || c > '9' {
			return 0, newDecodeError(ErrMagicMismatch, d.r.Position(), fmt.Errorf("non-digit version byte 0x%02x", c))
		}
		version = version*10 + int(c-'0')
	}
	return version, nil
}

func (d *Decoder) readAux() ([]byte, []byte, error) {
	key, err := d.readStringValue()
	if err != nil {
		return nil, nil, err
	}
	value, err := d.readStringValue()
	if err != nil {
		return nil, nil, err
	}
	return key, value, nil
}

func upsertAux(aux []AuxField, key, value []byte) []AuxField {
	for i := range aux {
		if string(aux[i].Key) == string(key) {
			aux[i].Value = value
			return aux
		}
	}
	return append(aux, AuxField{Key: key, Value: value})
}

// finishEOF reads the 8-byte trailer and, if requested, verifies it.
func (d *Decoder) finishEOF(result *SnapshotResult) error {
	var sum uint64
	if d.crc != nil {
		sum = d.crc.Sum64()
	}
	trailer, err := d.r.ReadExact(8)
	if err != nil {
		return newDecodeError(ErrUnexpectedEOF, d.r.Position(), fmt.Errorf("truncated checksum trailer: %w", err))
	}
	if !d.opts.VerifyChecksum {
		return nil
	}
	stored := leU64(trailer)
	ok := stored == 0 || stored == sum
	result.ChecksumOK = &ok
	if !ok {
		d.warnf(WarnChecksumMismatch, "checksum mismatch: stored 0x%x, computed 0x%x", stored, sum)
	}
	return nil
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// decodeKeyValue reads one key followed by its value, folding in any
// pending metadata. Returns (nil, errSkipEntry-wrapping) style results are
// collapsed: on success or on a non-fatal error, entry is either a
// populated KeyRecord or a placeholder (or nil, for an intentionally
// skipped module value).
func (d *Decoder) decodeKeyValue(typeByte byte) (*KeyRecord, error) {
	key, err := d.readStringValue()
	if err != nil {
		return nil, newDecodeError(ErrIo, d.r.Position(), err)
	}

	scratch := getKeyRecord()
	defer putKeyRecord(scratch)

	scratch.Key = key
	scratch.DBIndex = d.db
	scratch.ExpiryMs = d.pend.expiryMs
	scratch.IdleSeconds = d.pend.idleSeconds
	scratch.Freq = d.pend.freq
	d.pend = pending{}

	value, err := d.decodeValue(typeByte)
	if err != nil {
		if err == errSkipEntry {
			return nil, nil
		}
		if de, ok := err.(*DecodeError); ok && isRecoverableContainerError(de) {
			scratch.DecodeErr = de.Error()
			d.stats.recordWarning()
			d.warn = append(d.warn, Warning{Kind: warningKindFor(de.Kind), Message: de.Error(), Offset: de.Offset})
			out := *scratch
			return &out, nil
		}
		return nil, err
	}

	scratch.Value = value
	d.stats.recordKey(typeByte)
	out := *scratch
	return &out, nil
}

// isFatal reports whether err should abort the whole pass (spec.md §7):
// Io, MagicMismatch and UnexpectedEof are always fatal; BadLzf is fatal
// only when it isn't wrapped as a recoverable per-container error (it
// never is, in this decoder — LZF failures abort the pass since the
// string length itself can't be trusted afterwards).
func isFatal(err error) bool {
	de, ok := err.(*DecodeError)
	if !ok {
		return true
	}
	switch de.Kind {
	case ErrIo, ErrMagicMismatch, ErrUnexpectedEOF, ErrBadLzf:
		return true
	default:
		return false
	}
}

// isRecoverableContainerError reports whether a value-decode failure can
// be downgraded to a placeholder-and-continue per spec.md §7: malformed
// length prefixes and unknown encoding bytes inside a container.
func isRecoverableContainerError(de *DecodeError) bool {
	switch de.Kind {
	case ErrBadLengthPrefix, ErrBadEncoding, ErrSizeCeilingExceeded:
		return true
	default:
		return false
	}
}

func warningKindFor(k ErrorKind) WarningKind {
	switch k {
	case ErrBadLengthPrefix:
		return WarnBadLengthPrefix
	case ErrBadEncoding:
		return WarnBadEncoding
	case ErrSizeCeilingExceeded:
		return WarnSizeCeilingExceeded
	default:
		return WarnContainerTruncated
	}
}

// warnf records a structured, non-fatal warning.
func (d *Decoder) warnf(kind WarningKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.warn = append(d.warn, Warning{Kind: kind, Message: msg, Offset: d.r.Position()})
	d.stats.recordWarning()
}
