package rdb

import "fmt"

// skipStream consumes a stream value's bytes and returns just enough of a
// summary to be useful (spec.md §3's StreamV: an opaque summary plus
// optional count). Full reconstruction — messages, consumer groups, PELs —
// is an explicit non-goal; this still has to walk every byte correctly so
// the reader ends up positioned at the next opcode.
func (d *Decoder) skipStream(typeByte byte) (StreamSummary, error) {
	numListpacks, _, err := d.readLength()
	if err != nil {
		return StreamSummary{}, err
	}

	for i := uint64(0); i < numListpacks; i++ {
		// Master entry ID: 16 raw bytes used as the radix-tree key.
		if err := d.r.Skip(16); err != nil {
			return StreamSummary{}, fmt.Errorf("stream node %d master id: %w", i, err)
		}
		if _, err := d.readStringValue(); err != nil {
			return StreamSummary{}, fmt.Errorf("stream node %d listpack: %w", i, err)
		}
	}

	length, _, err := d.readLength()
	if err != nil {
		return StreamSummary{}, err
	}
	lastMs, _, err := d.readLength()
	if err != nil {
		return StreamSummary{}, err
	}
	lastSeq, _, err := d.readLength()
	if err != nil {
		return StreamSummary{}, err
	}

	if typeByte >= typeStreamV2 {
		for _, field := range []string{"first id ms", "first id seq", "max deleted ms", "max deleted seq", "entries added"} {
			if _, _, err := d.readLength(); err != nil {
				return StreamSummary{}, fmt.Errorf("stream %s: %w", field, err)
			}
		}
	}

	numGroups, _, err := d.readLength()
	if err != nil {
		return StreamSummary{}, err
	}
	for g := uint64(0); g < numGroups; g++ {
		if err := d.skipStreamGroup(typeByte); err != nil {
			return StreamSummary{}, fmt.Errorf("consumer group %d: %w", g, err)
		}
	}

	return StreamSummary{Length: length, LastID: fmt.Sprintf("%d-%d", lastMs, lastSeq)}, nil
}

// skipStreamGroup consumes one consumer group: name, last-delivered ID,
// optional entries-read counter, the global PEL, and every consumer with
// its own PEL.
func (d *Decoder) skipStreamGroup(typeByte byte) error {
	if _, err := d.readStringValue(); err != nil {
		return fmt.Errorf("group name: %w", err)
	}
	if _, _, err := d.readLength(); err != nil { // last delivered ms
		return err
	}
	if _, _, err := d.readLength(); err != nil { // last delivered seq
		return err
	}
	if typeByte >= typeStreamV2 {
		if _, _, err := d.readLength(); err != nil { // entries read
			return err
		}
	}

	pelSize, _, err := d.readLength()
	if err != nil {
		return err
	}
	for i := uint64(0); i < pelSize; i++ {
		if err := d.r.Skip(16); err != nil { // stream ID
			return err
		}
		if _, err := d.r.ReadLEU64(); err != nil { // delivery time
			return err
		}
		if _, _, err := d.readLength(); err != nil { // delivery count
			return err
		}
	}

	numConsumers, _, err := d.readLength()
	if err != nil {
		return err
	}
	for i := uint64(0); i < numConsumers; i++ {
		if _, err := d.readStringValue(); err != nil { // consumer name
			return err
		}
		if _, err := d.r.ReadLEU64(); err != nil { // seen time
			return err
		}
		if typeByte >= typeStreamV3 {
			if _, err := d.r.ReadLEU64(); err != nil { // active time
				return err
			}
		}
		consumerPEL, _, err := d.readLength()
		if err != nil {
			return err
		}
		for j := uint64(0); j < consumerPEL; j++ {
			if err := d.r.Skip(16); err != nil { // stream ID only, no delivery metadata
				return err
			}
		}
	}
	return nil
}
