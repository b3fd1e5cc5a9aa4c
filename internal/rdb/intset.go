package rdb

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// parseIntset decodes [encoding:LE32][length:LE32][entries...], an array of
// equally-wide little-endian signed integers, and renders each as decimal
// ASCII so callers can treat a set's members uniformly as byte strings.
func parseIntset(data []byte) ([][]byte, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("intset payload too short: %d bytes", len(data))
	}

	width := binary.LittleEndian.Uint32(data[0:4])
	count := binary.LittleEndian.Uint32(data[4:8])

	switch width {
	case 2, 4, 8:
	default:
		return nil, fmt.Errorf("intset encoding width %d not in {2,4,8}", width)
	}

	offset := 8
	members := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+int(width) > len(data) {
			return members, fmt.Errorf("intset entry %d needs %d bytes, have %d remaining", i, width, len(data)-offset)
		}

		var v int64
		switch width {
		case 2:
			v = int64(int16(binary.LittleEndian.Uint16(data[offset : offset+2])))
		case 4:
			v = int64(int32(binary.LittleEndian.Uint32(data[offset : offset+4])))
		case 8:
			v = int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
		}
		offset += int(width)
		members = append(members, []byte(strconv.FormatInt(v, 10)))
	}

	return members, nil
}
