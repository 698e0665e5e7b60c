// Package av implements the SYS_av_* syscall family: a small,
// numbered interface a guest (notably a ported SDL game) uses to get
// a framebuffer on screen, set a palette, and poll input events,
// without the interpreter or syscall dispatcher knowing anything
// about SDL itself. Backend is the seam between that contract and
// whatever actually presents pixels; Headless is the only
// implementation this module ships, and is what every test and
// non-interactive run uses.
package av

import (
	"syscall"

	"git.rv32.dev/rv32ima/internal/memory"
)

// Syscall numbers within the av_* block, in the order the guest's
// av syscall header enumerates them.
const (
	SysInit           = 2048
	SysUpdate         = 2049
	SysSetPalette     = 2050
	SysDelay          = 2051
	SysPollEvent      = 2052
	SysGetTicks       = 2053
	SysShutdown       = 2054
	SysSetFramebuffer = 2055
)

// Event type tags written into the event struct's first word.
const (
	EventNone       = 0
	EventKeyDown    = 1
	EventKeyUp      = 2
	EventMouseDown  = 3
	EventMouseUp    = 4
	EventMouseMove  = 5
	EventQuit       = 6
)

// Backend is the opaque presentation layer behind the av_* syscalls.
// Every method receives the guest memory it needs to read from or
// write into directly, so a backend never has to go through the
// syscall dispatcher to touch guest state.
type Backend interface {
	Init(width, height uint32) uint32
	SetFramebuffer(mem *memory.Memory, addr uint32) uint32
	SetPalette(mem *memory.Memory, addr, count uint32) uint32
	Update() uint32
	PollEvent(mem *memory.Memory, addr uint32) uint32
	Delay(ms uint32) uint32
	GetTicks() uint32
	Shutdown() uint32
}

// Dispatch routes one av_* syscall to backend, returning the value
// that belongs in a0. no is assumed to already be >= SysInit; the
// caller (the syscall dispatcher) is responsible for that routing
// decision.
func Dispatch(backend Backend, mem *memory.Memory, no uint32, args [6]uint32) uint32 {
	switch no {
	case SysInit:
		return backend.Init(args[0], args[1])
	case SysUpdate:
		return backend.Update()
	case SysSetPalette:
		return backend.SetPalette(mem, args[0], args[1])
	case SysDelay:
		return backend.Delay(args[0])
	case SysPollEvent:
		return backend.PollEvent(mem, args[0])
	case SysGetTicks:
		return backend.GetTicks()
	case SysShutdown:
		return backend.Shutdown()
	case SysSetFramebuffer:
		return backend.SetFramebuffer(mem, args[0])
	default:
		enosys := -int32(syscall.ENOSYS)
		return uint32(enosys)
	}
}
