// Package bootstrap lays out a freshly loaded guest image: it copies
// ELF segments into RAM with the right page protections, reserves a
// guard page and a stack below a program break, and writes the
// argc/argv layout the guest's _start expects to find at the initial
// stack pointer.
package bootstrap

import (
	"debug/elf"
	"errors"
	"fmt"

	"git.rv32.dev/rv32ima/internal/elfloader"
	"git.rv32.dev/rv32ima/internal/memory"
)

const (
	// GuardSize separates the image from the stack, and the stack
	// from the heap, with a page no access rights are ever granted
	// on -- a guest overrunning either region faults immediately
	// instead of silently corrupting its neighbor.
	GuardSize = memory.PageSize

	// StackSize is the fixed size of the guest's single stack.
	StackSize = 4 * 1024 * 1024

	// argStringBase is where argv string bytes are written, inside
	// the low guard page (kept readable/writable purely as scratch
	// for this one purpose).
	argStringBase = 0x100

	// maxArgLen truncates any single argv entry to 31 characters plus
	// the terminating NUL.
	maxArgLen = 31
)

// Result carries what the interpreter needs to start running:
// where to set the program counter and the stack pointer.
type Result struct {
	Entry uint32
	SP    uint32
}

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}

func segmentProt(flags uint32) uint8 {
	var prot uint8
	if flags&uint32(elf.PF_R) != 0 {
		prot |= memory.ProtR
	}
	if flags&uint32(elf.PF_W) != 0 {
		prot |= memory.ProtW
	}
	if flags&uint32(elf.PF_X) != 0 {
		prot |= memory.ProtX
	}
	return prot
}

// Load lays img and args out in mem and returns the entry point and
// initial stack pointer. The address map, low to high, is:
//
//	[0, 0x1000)                     guard; argv strings live at 0x100
//	[image start, image end)        ELF PT_LOAD segments, as protected
//	                                 by their own p_flags
//	[image end, +guard)             guard page
//	[stack start, stack start+size) stack, RW
//	[stack end, +guard)             guard page
//	[heap start, ram end)           heap, RW; brk starts at heap start
func Load(mem *memory.Memory, img *elfloader.Image, args []string) (*Result, error) {
	mem.ProtectRegion(0, GuardSize, memory.ProtR|memory.ProtW)

	var imageEnd uint32
	for _, seg := range img.Segments {
		if uint64(seg.VAddr)+uint64(len(seg.Data)) > uint64(mem.Size()) {
			return nil, fmt.Errorf("bootstrap: segment at %#x exceeds guest ram", seg.VAddr)
		}
		mem.SetRegion(seg.VAddr, seg.Data)
		mem.ProtectRegion(seg.VAddr, seg.MemSize, segmentProt(seg.Flags))

		if end := seg.VAddr + seg.MemSize; end > imageEnd {
			imageEnd = end
		}
	}
	if imageEnd == 0 {
		return nil, errors.New("bootstrap: image has no loadable segments")
	}

	stackStart := alignUp(imageEnd, memory.PageSize) + GuardSize
	stackEnd := stackStart + StackSize
	if uint64(stackEnd)+GuardSize >= uint64(mem.Size()) {
		return nil, errors.New("bootstrap: guest ram too small for image and stack")
	}
	mem.ProtectRegion(stackStart, StackSize, memory.ProtR|memory.ProtW)
	mem.SetStackBegin(stackEnd)

	sp, err := writeArgv(mem, stackStart, stackEnd, args)
	if err != nil {
		return nil, err
	}

	heapStart := alignUp(stackEnd+GuardSize, memory.PageSize)
	mem.ProtectRegion(heapStart, mem.Size()-heapStart, memory.ProtR|memory.ProtW)
	if !mem.SetBrk(heapStart) {
		return nil, errors.New("bootstrap: failed to establish initial program break")
	}

	return &Result{Entry: img.Entry, SP: sp}, nil
}

// writeArgv packs argc, an argv pointer array, and a NULL terminator
// at the top of [stackStart, stackEnd), and the argv strings
// themselves into the low guard page starting at 0x100.
func writeArgv(mem *memory.Memory, stackStart, stackEnd uint32, args []string) (uint32, error) {
	stringPtr := uint32(argStringBase)
	argPtrs := make([]uint32, len(args))
	for i, a := range args {
		if len(a) > maxArgLen {
			a = a[:maxArgLen]
		}
		data := append([]byte(a), 0)
		if uint64(stringPtr)+uint64(len(data)) > GuardSize {
			return 0, errors.New("bootstrap: argv strings overflow the guard page")
		}
		mem.SetRegion(stringPtr, data)
		argPtrs[i] = stringPtr
		stringPtr += uint32(len(data))
	}

	numWords := uint32(1 + len(args) + 1) // argc, argv[n], NULL
	sp := stackEnd - numWords*4
	if sp < stackStart {
		return 0, errors.New("bootstrap: too many arguments for the stack")
	}

	var argcBuf [4]byte
	putLE32(argcBuf[:], uint32(len(args)))
	mem.SetRegion(sp, argcBuf[:])

	cursor := sp + 4
	for _, p := range argPtrs {
		var b [4]byte
		putLE32(b[:], p)
		mem.SetRegion(cursor, b[:])
		cursor += 4
	}
	var nul [4]byte
	mem.SetRegion(cursor, nul[:])

	return sp, nil
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
