// Package newlib translates between the guest's newlib-style ABI
// (open flag bits, stat/timeval struct layouts) and the host's own
// representations of the same concepts.
package newlib

import "syscall"

// Guest-side open(2) flag bits. The access-mode group is NOT a
// bitmask the way POSIX's O_RDONLY/O_WRONLY/O_RDWR can appear to be:
// newlib encodes it as a plain 0/1/2 value compared by equality, so
// it is masked out and switched on separately from the rest.
const (
	accessModeMask = 0x3
	oRdonly        = 0x0
	oWronly        = 0x1
	oRdwr          = 0x2

	oAppend   = 0x008
	oCreat    = 0x200
	oTrunc    = 0x400
	oExcl     = 0x800
	oSync     = 0x2000
	oNonblock = 0x4000
	oNoctty   = 0x8000
)

// TranslateOpenFlags converts a guest newlib open() flags word into
// the host's syscall.O_* bits.
func TranslateOpenFlags(guestFlags uint32) int {
	var flags int
	switch guestFlags & accessModeMask {
	case oWronly:
		flags |= syscall.O_WRONLY
	case oRdwr:
		flags |= syscall.O_RDWR
	default:
		flags |= syscall.O_RDONLY
	}
	if guestFlags&oAppend != 0 {
		flags |= syscall.O_APPEND
	}
	if guestFlags&oCreat != 0 {
		flags |= syscall.O_CREAT
	}
	if guestFlags&oTrunc != 0 {
		flags |= syscall.O_TRUNC
	}
	if guestFlags&oExcl != 0 {
		flags |= syscall.O_EXCL
	}
	if guestFlags&oSync != 0 {
		flags |= syscall.O_SYNC
	}
	if guestFlags&oNonblock != 0 {
		flags |= syscall.O_NONBLOCK
	}
	if guestFlags&oNoctty != 0 {
		flags |= syscall.O_NOCTTY
	}
	return flags
}
