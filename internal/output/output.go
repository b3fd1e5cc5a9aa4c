// Package output renders a decoded snapshot as JSON for the CLI, in either
// a full tree form (one object per key, nested value) or a simplified flat
// form aimed at quick greppable inspection.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"rdbsnap/internal/rdb"
)

// Options controls how a SnapshotResult is rendered.
type Options struct {
	Pretty bool
	Simple bool
}

// document is the full-form JSON shape.
type document struct {
	MagicVersion int        `json:"magic_version"`
	Aux          []auxJSON  `json:"aux,omitempty"`
	Keys         []keyJSON  `json:"keys"`
	ChecksumOK   *bool      `json:"checksum_ok,omitempty"`
	Warnings     []warnJSON `json:"warnings,omitempty"`
	Stats        statsJSON  `json:"stats"`
}

type auxJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type warnJSON struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Offset  int64  `json:"offset"`
}

type statsJSON struct {
	KeysByType map[string]int64 `json:"keys_by_type"`
	Warnings   int64            `json:"warnings"`
	BytesRead  int64            `json:"bytes_read"`
}

type keyJSON struct {
	Key         string `json:"key"`
	Kind        string `json:"kind"`
	DBIndex     int    `json:"db_index"`
	ExpiryMs    *int64 `json:"expiry_ms,omitempty"`
	IdleSeconds *int64 `json:"idle_seconds,omitempty"`
	Freq        *int   `json:"freq,omitempty"`
	DecodeErr   string `json:"decode_error,omitempty"`

	Value any `json:"value,omitempty"`
}

type scoredMemberJSON struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

type hashFieldJSON struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type streamJSON struct {
	Length uint64 `json:"length"`
	LastID string `json:"last_id"`
}

// Write renders result to w per opts.
func Write(w io.Writer, result *rdb.SnapshotResult, opts Options) error {
	doc := toDocument(result, opts.Simple)
	enc := json.NewEncoder(w)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("output: encode result: %w", err)
	}
	return nil
}

func toDocument(result *rdb.SnapshotResult, simple bool) document {
	doc := document{
		MagicVersion: result.MagicVersion,
		ChecksumOK:   result.ChecksumOK,
		Stats: statsJSON{
			KeysByType: keysByTypeStrings(result.Stats.KeysByType),
			Warnings:   result.Stats.Warnings,
			BytesRead:  result.Stats.BytesRead,
		},
	}
	for _, a := range result.Aux {
		doc.Aux = append(doc.Aux, auxJSON{Key: renderBytes(a.Key), Value: renderBytes(a.Value)})
	}
	for _, w := range result.Warnings {
		doc.Warnings = append(doc.Warnings, warnJSON{Kind: string(w.Kind), Message: w.Message, Offset: w.Offset})
	}
	for _, k := range result.Keys {
		doc.Keys = append(doc.Keys, toKeyJSON(k, simple))
	}
	return doc
}

func keysByTypeStrings(m map[byte]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[fmt.Sprintf("%d", k)] = v
	}
	return out
}

func toKeyJSON(k rdb.KeyRecord, simple bool) keyJSON {
	kj := keyJSON{
		Key:         renderBytes(k.Key),
		Kind:        k.Value.Kind.String(),
		DBIndex:     k.DBIndex,
		ExpiryMs:    k.ExpiryMs,
		IdleSeconds: k.IdleSeconds,
		Freq:        k.Freq,
		DecodeErr:   k.DecodeErr,
	}
	if k.DecodeErr != "" {
		return kj
	}
	kj.Value = renderValue(k.Value, simple)
	return kj
}

func renderValue(v rdb.LogicalValue, simple bool) any {
	switch v.Kind {
	case rdb.KindString:
		return renderBytes(v.Str)

	case rdb.KindList, rdb.KindSet:
		elems := v.List
		if v.Kind == rdb.KindSet {
			elems = v.Set
		}
		out := make([]string, len(elems))
		for i, e := range elems {
			out[i] = renderBytes(e)
		}
		return out

	case rdb.KindHash:
		if simple {
			flat := make(map[string]string, len(v.Hash))
			for _, f := range v.Hash {
				flat[renderBytes(f.Field)] = renderBytes(f.Value)
			}
			return flat
		}
		out := make([]hashFieldJSON, len(v.Hash))
		for i, f := range v.Hash {
			out[i] = hashFieldJSON{Field: renderBytes(f.Field), Value: renderBytes(f.Value)}
		}
		return out

	case rdb.KindSortedSet:
		if simple {
			flat := make(map[string]float64, len(v.ZSet))
			for _, m := range v.ZSet {
				flat[renderBytes(m.Member)] = m.Score
			}
			return flat
		}
		out := make([]scoredMemberJSON, len(v.ZSet))
		for i, m := range v.ZSet {
			out[i] = scoredMemberJSON{Member: renderBytes(m.Member), Score: m.Score}
		}
		return out

	case rdb.KindStream:
		return streamJSON{Length: v.Stream.Length, LastID: v.Stream.LastID}

	default:
		return nil
	}
}

// renderBytes renders a decoded byte string as JSON-safe text: valid UTF-8
// passes through unchanged, anything else is hex-escaped so the document
// never contains invalid UTF-8 for encoding/json to choke on.
func renderBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	hex := make([]byte, 0, len(b)*2+2)
	hex = append(hex, '\\', 'x')
	const digits = "0123456789abcdef"
	for _, c := range b {
		hex = append(hex, digits[c>>4], digits[c&0x0f])
	}
	return string(hex)
}
