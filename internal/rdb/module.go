package rdb

import (
	"errors"
	"fmt"
)

// errSkipEntry signals that a value was recognised and its bytes fully
// consumed, but deliberately not reconstructed (module-typed values, per
// spec.md §1's non-goals). The driver treats this as "no KeyRecord for
// this key", distinct from a structural error.
var errSkipEntry = errors.New("entry intentionally not reconstructed")

// Generic module-opcode stream, as emitted by the reference moduleSaveValue
// generic-skip path: a module ID, then a sequence of (opcode, payload)
// pairs terminated by moduleOpcodeEOF. This lets the decoder skip a
// module's bytes without understanding what the module actually stored.
const (
	moduleOpcodeEOF    = 0
	moduleOpcodeSInt   = 1
	moduleOpcodeUInt   = 2
	moduleOpcodeFloat  = 3
	moduleOpcodeDouble = 4
	moduleOpcodeString = 5
)

// skipModule consumes a module-typed value's bytes generically and
// returns errSkipEntry so the driver drops the key without emitting a
// KeyRecord for it.
func (d *Decoder) skipModule(typeByte byte) error {
	// Module ID: opaque 64-bit value encoding the module's name and
	// version; we don't need to interpret it, only consume it.
	if _, _, err := d.readLength(); err != nil {
		return err
	}

	for {
		opcode, _, err := d.readLength()
		if err != nil {
			return err
		}
		switch opcode {
		case moduleOpcodeEOF:
			return errSkipEntry
		case moduleOpcodeSInt, moduleOpcodeUInt:
			if _, _, err := d.readLength(); err != nil {
				return err
			}
		case moduleOpcodeFloat:
			if err := d.r.Skip(4); err != nil {
				return err
			}
		case moduleOpcodeDouble:
			if err := d.r.Skip(8); err != nil {
				return err
			}
		case moduleOpcodeString:
			if _, err := d.readStringValue(); err != nil {
				return err
			}
		default:
			return newDecodeError(ErrBadEncoding, d.r.Position(), fmt.Errorf("unknown module opcode %d while skipping type tag %d", opcode, typeByte))
		}
	}
}
