package dispatch

// Syscall numbers match the standard RISC-V newlib/Linux ABI
// numbering that newlib's libgloss syscall stubs issue via ecall with
// a7 set to one of these values. The guest's newlib_syscalls.h is
// assumed to use the same numbering.
const (
	SysOpenat        = 56
	SysClose         = 57
	SysLseek         = 62
	SysRead          = 63
	SysWrite         = 64
	SysFstat         = 80
	SysExit          = 93
	SysBrk           = 214
	SysGettimeofday  = 169
	SysStat          = 1038
	SysOpen          = 1024
)

// The audio/video syscall family lives in its own numbering block,
// well clear of any newlib number, so a well-formed SYS_* request and
// an av_* request can never collide.
const AVBase = 2048
