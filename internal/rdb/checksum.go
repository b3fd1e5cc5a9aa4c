package rdb

import "hash/crc64"

// jonesPoly is the CRC-64/Jones polynomial the reference snapshot format's
// trailing checksum uses. The reference itself never validates it (see
// spec.md §9's open question); this decoder computes it only when the
// caller opts in via Options.VerifyChecksum, and a mismatch is always a
// warning, never a fatal error.
const jonesPoly = 0xad93d23594c935a9

var jonesTable = crc64.MakeTable(jonesPoly)
