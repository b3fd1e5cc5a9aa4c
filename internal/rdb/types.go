// Package rdb decodes the on-disk snapshot format (version 12) produced by
// an in-memory key/value datastore into a logical value tree. It is the
// core of this module: a byte-level parser over a union of several
// micro-formats layered on top of one another.
package rdb

import "fmt"

// Kind tags the variant held by a LogicalValue.
type Kind int

const (
	KindString Kind = iota
	KindList
	KindSet
	KindSortedSet
	KindHash
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindSortedSet:
		return "zset"
	case KindHash:
		return "hash"
	case KindStream:
		return "stream"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ScoredMember is one (member, score) pair of a sorted set, in stored order.
type ScoredMember struct {
	Member []byte
	Score  float64
}

// HashField is one (field, value) pair of a hash, in insertion order.
type HashField struct {
	Field []byte
	Value []byte
}

// StreamSummary is the opaque, non-reconstructed view of a stream value.
// Full stream reconstruction (consumer groups, PEL, module types) is an
// explicit non-goal; this keeps just enough to report something useful.
type StreamSummary struct {
	Length uint64
	LastID string
}

func (s StreamSummary) String() string {
	return fmt.Sprintf("<stream with %d elements>", s.Length)
}

// LogicalValue is the tagged union over the decoded value kinds. Exactly
// one of the typed fields is meaningful, selected by Kind; callers should
// switch exhaustively on Kind rather than guess from which field is
// non-nil, since a zero-length list and an absent list look the same in
// Go's zero value.
type LogicalValue struct {
	Kind Kind

	Str    []byte
	List   [][]byte
	Set    [][]byte
	ZSet   []ScoredMember
	Hash   []HashField
	Stream StreamSummary
}

// KeyRecord is one decoded top-level key, with whatever metadata opcodes
// preceded it. ExpiryMs, IdleSeconds and Freq are pointers because
// "absent" (no opcode seen) is a distinct state from "present with value
// zero" and the spec requires that distinction to be preserved.
type KeyRecord struct {
	Key          []byte
	Value        LogicalValue
	ExpiryMs     *int64
	IdleSeconds  *int64
	Freq         *int
	DBIndex      int
	DecodeErr    string // non-empty if this entry is a placeholder after a structural error
}

// WarningKind classifies a non-fatal event surfaced to the caller.
type WarningKind string

const (
	WarnSizeCeilingExceeded WarningKind = "SizeCeilingExceeded"
	WarnModuleSkipped       WarningKind = "ModuleSkipped"
	WarnStreamSummarised    WarningKind = "StreamSummarised"
	WarnDanglingMetadata    WarningKind = "DanglingMetadata"
	WarnContainerTruncated  WarningKind = "ContainerTruncated"
	WarnBadLengthPrefix     WarningKind = "BadLengthPrefix"
	WarnBadEncoding         WarningKind = "BadEncoding"
	WarnUnsupportedVersion  WarningKind = "UnsupportedVersion"
	WarnChecksumMismatch    WarningKind = "ChecksumMismatch"
)

// Warning is one structured, non-fatal record.
type Warning struct {
	Kind    WarningKind
	Message string
	Offset  int64
}

// DecodeStats are atomic, observational counters kept alongside the
// structured Warnings slice; see stats.go.
type DecodeStats struct {
	KeysByType map[byte]int64
	Warnings   int64
	BytesRead  int64
}

// SnapshotResult is the full decoded output of one pass over a snapshot.
type SnapshotResult struct {
	MagicVersion int
	Aux          []AuxField
	Keys         []KeyRecord
	ChecksumOK   *bool
	Warnings     []Warning
	Stats        DecodeStats
}

// AuxField is one (metadata-key, metadata-value) pair from an 0xFA opcode.
// Kept as an ordered slice rather than a map because later duplicate keys
// must overwrite earlier ones while insertion order of the *first*
// occurrence is otherwise meaningful to callers inspecting the raw aux
// list.
type AuxField struct {
	Key   []byte
	Value []byte
}
