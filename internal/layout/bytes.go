package layout

import "encoding/binary"

func readU32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off : off+4]) }
func readU64(b []byte, off int) uint64 { return binary.LittleEndian.Uint64(b[off : off+8]) }
func readI32(b []byte, off int) int32  { return int32(readU32(b, off)) }
func readI64(b []byte, off int) int64  { return int64(readU64(b, off)) }

func writeU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:off+4], v) }
func writeU64(b []byte, off int, v uint64) { binary.LittleEndian.PutUint64(b[off:off+8], v) }
func writeI32(b []byte, off int, v int32)  { writeU32(b, off, uint32(v)) }
func writeI64(b []byte, off int, v int64)  { writeU64(b, off, uint64(v)) }

func readKey(b []byte, off int) AccountKey {
	var k AccountKey
	copy(k[:], b[off:off+KeyBytes])
	return k
}

func writeKey(b []byte, off int, k AccountKey) {
	copy(b[off:off+KeyBytes], k[:])
}
