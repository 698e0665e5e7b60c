package newlib

import (
	"encoding/binary"
	"syscall"
)

// TimevalSize is the byte size of the newlib_timeval struct: two
// 32-bit fields, seconds then microseconds.
const TimevalSize = 8

// EncodeTimeval writes tv into buf in newlib_timeval layout. buf must
// be at least TimevalSize bytes.
func EncodeTimeval(buf []byte, tv *syscall.Timeval) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(tv.Sec))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(tv.Usec))
}
