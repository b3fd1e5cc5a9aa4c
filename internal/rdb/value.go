package rdb

import (
	"fmt"
	"math"
	"strconv"
)

// Type tags, exactly as spec.md §4.4 enumerates them. These intentionally
// do not match any particular fork's constant table (forks have shuffled
// a few of these numbers over the years); they match the wire format this
// decoder targets.
const (
	typeString         = 0
	typeList           = 1
	typeSet            = 2
	typeZSet           = 3
	typeHash           = 4
	typeZSet2          = 5
	typeModule         = 6
	typeModule2        = 7
	typeHashZipmap     = 9
	typeListZiplist    = 10
	typeSetIntset      = 11
	typeZSetZiplist    = 12
	typeHashZiplistOld = 13
	typeListQuicklist  = 14
	typeStreamV1       = 15
	typeHashListpack   = 16
	typeZSetListpack   = 17
	typeListQuicklist2 = 18
	typeStreamV2       = 19
	typeSetListpack    = 20
	typeStreamV3       = 21
)

// decodeValue dispatches on the type tag and produces the logical value.
// Per spec.md §3, this must consume exactly the bytes the type encoding
// declares, leaving the reader positioned at the next opcode.
func (d *Decoder) decodeValue(typeByte byte) (LogicalValue, error) {
	switch typeByte {
	case typeString:
		s, err := d.readStringValue()
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindString, Str: s}, nil

	case typeList:
		elems, err := d.readCountedStrings()
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindList, List: elems}, nil

	case typeSet:
		members, err := d.readCountedStrings()
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindSet, Set: members}, nil

	case typeSetIntset:
		blob, err := d.readStringValue()
		if err != nil {
			return LogicalValue{}, err
		}
		members, err := parseIntset(blob)
		if err != nil {
			return LogicalValue{}, newDecodeError(ErrBadEncoding, d.r.Position(), err)
		}
		return LogicalValue{Kind: KindSet, Set: members}, nil

	case typeSetListpack:
		members, err := d.readPackedContainer(parseListpack)
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindSet, Set: members}, nil

	case typeHash:
		fields, err := d.readHashStandard()
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindHash, Hash: fields}, nil

	case typeHashZipmap, typeHashZiplistOld:
		fields, err := d.readPackedHashPairs(parseZiplist)
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindHash, Hash: fields}, nil

	case typeHashListpack:
		fields, err := d.readPackedHashPairs(parseListpack)
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindHash, Hash: fields}, nil

	case typeListZiplist:
		elems, err := d.readPackedContainer(parseZiplist)
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindList, List: elems}, nil

	case typeListQuicklist:
		elems, err := d.readQuicklistV1()
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindList, List: elems}, nil

	case typeListQuicklist2:
		elems, err := d.readQuicklistV2()
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindList, List: elems}, nil

	case typeZSet:
		members, err := d.readZSetV1()
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindSortedSet, ZSet: members}, nil

	case typeZSet2:
		members, err := d.readZSetV2()
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindSortedSet, ZSet: members}, nil

	case typeZSetZiplist:
		members, err := d.readPackedZSetPairs(parseZiplist)
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindSortedSet, ZSet: members}, nil

	case typeZSetListpack:
		members, err := d.readPackedZSetPairs(parseListpack)
		if err != nil {
			return LogicalValue{}, err
		}
		return LogicalValue{Kind: KindSortedSet, ZSet: members}, nil

	case typeModule, typeModule2:
		if err := d.skipModule(typeByte); err != nil && err != errSkipEntry {
			return LogicalValue{}, err
		}
		d.warnf(WarnModuleSkipped, "module-typed value (tag %d) skipped: reconstruction is a non-goal", typeByte)
		return LogicalValue{}, errSkipEntry

	case typeStreamV1, typeStreamV2, typeStreamV3:
		summary, err := d.skipStream(typeByte)
		if err != nil {
			return LogicalValue{}, err
		}
		d.warnf(WarnStreamSummarised, "stream value summarised (%d elements), full reconstruction is a non-goal", summary.Length)
		return LogicalValue{Kind: KindStream, Stream: summary}, nil

	default:
		return LogicalValue{}, newDecodeError(ErrBadEncoding, d.r.Position(), fmt.Errorf("unknown type tag %d", typeByte))
	}
}

// readCountedStrings reads a length L followed by L raw RDB strings; used
// for the classic (non-packed) list and set encodings.
func (d *Decoder) readCountedStrings() ([][]byte, error) {
	n, _, err := d.readLength()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		s, err := d.readStringValue()
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

// readHashStandard reads a length L followed by L (field, value) string
// pairs in storage order.
func (d *Decoder) readHashStandard() ([]HashField, error) {
	n, _, err := d.readLength()
	if err != nil {
		return nil, err
	}
	out := make([]HashField, 0, n)
	for i := uint64(0); i < n; i++ {
		field, err := d.readStringValue()
		if err != nil {
			return out, err
		}
		value, err := d.readStringValue()
		if err != nil {
			return out, err
		}
		out = append(out, HashField{Field: field, Value: value})
	}
	return out, nil
}

// readPackedContainer reads one RDB string and decodes it with the given
// packed-container parser (ziplist or listpack), yielding a flat entry
// list for list/set values.
func (d *Decoder) readPackedContainer(parse func([]byte) ([][]byte, error)) ([][]byte, error) {
	blob, err := d.readStringValue()
	if err != nil {
		return nil, err
	}
	entries, err := parse(blob)
	if err != nil {
		d.warnf(WarnContainerTruncated, "packed container truncated: %v", err)
	}
	return entries, nil
}

// readPackedHashPairs reads one RDB string containing a packed container
// of alternating field/value entries.
func (d *Decoder) readPackedHashPairs(parse func([]byte) ([][]byte, error)) ([]HashField, error) {
	entries, err := d.readPackedContainer(parse)
	if err != nil {
		return nil, err
	}
	fields := make([]HashField, 0, len(entries)/2)
	for i := 0; i+1 < len(entries); i += 2 {
		fields = append(fields, HashField{Field: entries[i], Value: entries[i+1]})
	}
	return fields, nil
}

// readPackedZSetPairs reads one RDB string containing a packed container
// of alternating member/score entries; scores are stored as text in both
// ziplist and listpack zset encodings and are parsed to float64 here.
func (d *Decoder) readPackedZSetPairs(parse func([]byte) ([][]byte, error)) ([]ScoredMember, error) {
	entries, err := d.readPackedContainer(parse)
	if err != nil {
		return nil, err
	}
	members := make([]ScoredMember, 0, len(entries)/2)
	for i := 0; i+1 < len(entries); i += 2 {
		score, _ := strconv.ParseFloat(string(entries[i+1]), 64)
		members = append(members, ScoredMember{Member: entries[i], Score: score})
	}
	return members, nil
}

// readZSetV1 reads a length L followed by L (member, binary-double) pairs,
// where the score is a 1-byte length prefix plus ASCII digits, with
// sentinel lengths 253=NaN, 254=+Inf, 255=-Inf.
func (d *Decoder) readZSetV1() ([]ScoredMember, error) {
	n, _, err := d.readLength()
	if err != nil {
		return nil, err
	}
	out := make([]ScoredMember, 0, n)
	for i := uint64(0); i < n; i++ {
		member, err := d.readStringValue()
		if err != nil {
			return out, err
		}
		score, err := d.readLegacyDouble()
		if err != nil {
			return out, err
		}
		out = append(out, ScoredMember{Member: member, Score: score})
	}
	return out, nil
}

// readLegacyDouble reads the old-style textual double: a length byte
// followed by that many ASCII digits, with three sentinel lengths for
// non-finite values.
func (d *Decoder) readLegacyDouble() (float64, error) {
	lengthByte, err := d.r.ReadU8()
	if err != nil {
		return 0, err
	}
	switch lengthByte {
	case 253:
		return math.NaN(), nil
	case 254:
		return math.Inf(1), nil
	case 255:
		return math.Inf(-1), nil
	}
	buf, err := d.r.ReadExact(int(lengthByte))
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		return 0, newDecodeError(ErrBadEncoding, d.r.Position(), fmt.Errorf("bad legacy double %q: %w", buf, err))
	}
	return v, nil
}

// readZSetV2 reads a length L followed by L (member, 8-byte LE IEEE-754
// double) pairs.
func (d *Decoder) readZSetV2() ([]ScoredMember, error) {
	n, _, err := d.readLength()
	if err != nil {
		return nil, err
	}
	out := make([]ScoredMember, 0, n)
	for i := uint64(0); i < n; i++ {
		member, err := d.readStringValue()
		if err != nil {
			return out, err
		}
		bits, err := d.r.ReadLEU64()
		if err != nil {
			return out, err
		}
		out = append(out, ScoredMember{Member: member, Score: math.Float64frombits(bits)})
	}
	return out, nil
}
