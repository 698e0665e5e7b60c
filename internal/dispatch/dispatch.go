// Package dispatch translates a guest ecall into a host operation: it
// is the only place the emulator ever touches the real filesystem,
// clock, or display backend on the guest's behalf.
package dispatch

import (
	"log/slog"
	"syscall"

	"git.rv32.dev/rv32ima/internal/av"
	"git.rv32.dev/rv32ima/internal/memory"
	"git.rv32.dev/rv32ima/internal/newlib"
)

const pathMax = 4096

// atFdcwd is Linux's AT_FDCWD, which the syscall package does not
// export on Linux.
const atFdcwd = -100

// Dispatcher owns the host resources a guest's ecalls operate on: the
// guest's own memory (to marshal buffers and structs) and the av
// backend standing in for SDL.
type Dispatcher struct {
	mem     *memory.Memory
	backend av.Backend
	logger  *slog.Logger
}

// New builds a Dispatcher. backend may be nil, in which case any
// av_* syscall fails with -ENOSYS rather than panicking -- a guest
// that never touches the display subsystem should never need one.
func New(mem *memory.Memory, backend av.Backend, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{mem: mem, backend: backend, logger: logger}
}

// Dispatch services one ecall. It matches cpu.SyscallFunc's shape so
// it can be wired directly onto a Hart's OnEcall field.
func (d *Dispatcher) Dispatch(no uint32, args [6]uint32) (result uint32, exit bool, exitStatus int32) {
	if no >= av.SysInit {
		if d.backend == nil {
			return negErrnoVal(syscall.ENOSYS), false, 0
		}
		return av.Dispatch(d.backend, d.mem, no, args), false, 0
	}

	switch no {
	case SysFstat:
		return d.sysFstat(args[0], args[1]), false, 0
	case SysStat:
		return d.sysStat(args[0], args[1]), false, 0
	case SysBrk:
		return d.sysBrk(args[0]), false, 0
	case SysOpen:
		return d.sysOpen(args[0], args[1], args[2]), false, 0
	case SysOpenat:
		return d.sysOpenat(args[0], args[1], args[2], args[3]), false, 0
	case SysRead:
		return d.sysRead(args[0], args[1], args[2]), false, 0
	case SysWrite:
		return d.sysWrite(args[0], args[1], args[2]), false, 0
	case SysLseek:
		return d.sysLseek(args[0], args[1], args[2]), false, 0
	case SysClose:
		return d.sysClose(args[0]), false, 0
	case SysGettimeofday:
		return d.sysGettimeofday(args[0]), false, 0
	case SysExit:
		status := int32(args[0])
		d.logExit(status)
		return 0, true, status
	default:
		return negErrnoVal(syscall.ENOSYS), false, 0
	}
}

func (d *Dispatcher) logExit(status int32) {
	if d.logger == nil {
		return
	}
	d.logger.Info("guest exited", "status", status)
}

func negErrno(err error) uint32 {
	if errno, ok := err.(syscall.Errno); ok {
		return negErrnoVal(errno)
	}
	return negErrnoVal(syscall.EIO)
}

func negErrnoVal(e syscall.Errno) uint32 {
	return uint32(-int32(e))
}

func (d *Dispatcher) sysFstat(fd, statbuf uint32) uint32 {
	var st syscall.Stat_t
	if err := syscall.Fstat(int(fd), &st); err != nil {
		return negErrno(err)
	}
	return d.writeStat(statbuf, &st)
}

func (d *Dispatcher) sysStat(pathAddr, statbuf uint32) uint32 {
	path, ok := d.mem.ReadCString(pathAddr, pathMax)
	if !ok {
		return negErrnoVal(syscall.EFAULT)
	}
	var st syscall.Stat_t
	if err := syscall.Stat(path, &st); err != nil {
		return negErrno(err)
	}
	return d.writeStat(statbuf, &st)
}

func (d *Dispatcher) writeStat(statbuf uint32, st *syscall.Stat_t) uint32 {
	if statbuf == 0 {
		return 0
	}
	buf := make([]byte, newlib.StatSize)
	newlib.EncodeStat(buf, st)
	if !d.mem.WriteBytes(statbuf, buf) {
		return negErrnoVal(syscall.EFAULT)
	}
	return 0
}

func (d *Dispatcher) sysBrk(addr uint32) uint32 {
	if addr == 0 {
		return d.mem.Brk()
	}
	if !d.mem.SetBrk(addr) {
		return negErrnoVal(syscall.ENOMEM)
	}
	return d.mem.Brk()
}

func (d *Dispatcher) sysOpen(pathAddr, flags, mode uint32) uint32 {
	return d.openat(atFdcwd, pathAddr, flags, mode)
}

func (d *Dispatcher) sysOpenat(dirfd, pathAddr, flags, mode uint32) uint32 {
	return d.openat(int(int32(dirfd)), pathAddr, flags, mode)
}

func (d *Dispatcher) openat(dirfd int, pathAddr, flags, mode uint32) uint32 {
	path, ok := d.mem.ReadCString(pathAddr, pathMax)
	if !ok {
		return negErrnoVal(syscall.EFAULT)
	}
	hostFlags := newlib.TranslateOpenFlags(flags)
	fd, err := syscall.Openat(dirfd, path, hostFlags, mode)
	if err != nil {
		return negErrno(err)
	}
	return uint32(fd)
}

func (d *Dispatcher) sysRead(fd, bufAddr, count uint32) uint32 {
	buf, ok := d.mem.Slice(bufAddr, count)
	if !ok {
		return negErrnoVal(syscall.EFAULT)
	}
	n, err := syscall.Read(int(fd), buf)
	if err != nil {
		return negErrno(err)
	}
	return uint32(n)
}

func (d *Dispatcher) sysWrite(fd, bufAddr, count uint32) uint32 {
	buf, ok := d.mem.Slice(bufAddr, count)
	if !ok {
		return negErrnoVal(syscall.EFAULT)
	}
	n, err := syscall.Write(int(fd), buf)
	if err != nil {
		return negErrno(err)
	}
	return uint32(n)
}

func (d *Dispatcher) sysLseek(fd, offset, whence uint32) uint32 {
	off, err := syscall.Seek(int(fd), int64(int32(offset)), int(whence))
	if err != nil {
		return negErrno(err)
	}
	return uint32(off)
}

func (d *Dispatcher) sysClose(fd uint32) uint32 {
	if fd <= 2 {
		// Guests routinely "close" stdin/stdout/stderr during
		// teardown; newlib doesn't expect that to actually sever the
		// descriptor the emulator itself still needs.
		return 0
	}
	if err := syscall.Close(int(fd)); err != nil {
		return negErrno(err)
	}
	return 0
}

func (d *Dispatcher) sysGettimeofday(tvAddr uint32) uint32 {
	var tv syscall.Timeval
	if err := syscall.Gettimeofday(&tv); err != nil {
		return negErrno(err)
	}
	if tvAddr == 0 {
		return 0
	}
	buf := make([]byte, newlib.TimevalSize)
	newlib.EncodeTimeval(buf, &tv)
	if !d.mem.WriteBytes(tvAddr, buf) {
		return negErrnoVal(syscall.EFAULT)
	}
	return 0
}
