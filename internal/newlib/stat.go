package newlib

import (
	"encoding/binary"
	"syscall"
)

// StatSize is the byte size of the newlib_stat struct laid out by
// EncodeStat: the subset of struct stat newlib's crt0 actually
// inspects, packed little-endian with no host-specific padding.
const StatSize = 104

// EncodeStat writes the fields of st into buf in newlib_stat layout.
// buf must be at least StatSize bytes.
func EncodeStat(buf []byte, st *syscall.Stat_t) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(st.Dev))
	binary.LittleEndian.PutUint64(buf[8:16], st.Ino)
	binary.LittleEndian.PutUint32(buf[16:20], uint32(st.Mode))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(st.Nlink))
	binary.LittleEndian.PutUint32(buf[24:28], st.Uid)
	binary.LittleEndian.PutUint32(buf[28:32], st.Gid)
	binary.LittleEndian.PutUint64(buf[32:40], uint64(st.Rdev))
	// bytes [40:48) reserved/padding, left zero
	binary.LittleEndian.PutUint64(buf[48:56], uint64(st.Size))
	binary.LittleEndian.PutUint32(buf[56:60], uint32(st.Blksize))
	// bytes [60:64) reserved/padding, left zero
	binary.LittleEndian.PutUint64(buf[64:72], uint64(st.Blocks))
	binary.LittleEndian.PutUint32(buf[72:76], uint32(st.Atim.Sec))
	binary.LittleEndian.PutUint32(buf[76:80], uint32(st.Atim.Nsec))
	binary.LittleEndian.PutUint32(buf[80:84], uint32(st.Mtim.Sec))
	binary.LittleEndian.PutUint32(buf[84:88], uint32(st.Mtim.Nsec))
	binary.LittleEndian.PutUint32(buf[88:92], uint32(st.Ctim.Sec))
	binary.LittleEndian.PutUint32(buf[92:96], uint32(st.Ctim.Nsec))
	// bytes [96:104) reserved, left zero
}
