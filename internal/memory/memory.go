// Package memory implements guest RAM and the page-granular memory
// protection unit (MPU) that the interpreter and syscall dispatcher
// read and write through. Every accessor is little-endian and bounds
// checked; callers learn about an out-of-range or unpermitted access
// through a (value, ok) / ok return convention, the same shape the
// teacher's own word-at-a-time memory package uses for GetWord/PutWord.
package memory

import (
	"encoding/binary"

	"git.rv32.dev/rv32ima/internal/trap"
)

// PageSize is the MPU's protection granularity.
const PageSize = 4096

// Protection bits, ORed together per page.
const (
	ProtR uint8 = 1 << 0
	ProtW uint8 = 1 << 1
	ProtX uint8 = 1 << 2
)

// Memory owns a guest's flat address space plus one protection byte
// per page. It is not a package-level singleton: each emulated hart
// constructs its own, so nothing here prevents running more than one
// guest image in a process.
type Memory struct {
	ram []byte
	mpu []uint8

	brk        uint32
	stackBegin uint32

	faultAddress  uint32
	lastException trap.Kind
}

// New allocates size bytes of guest RAM. size must be a whole number
// of pages; the caller (the CLI's -m flag parsing) is expected to
// have already validated and rounded it.
func New(size uint32) *Memory {
	if size == 0 || size%PageSize != 0 {
		panic("memory: size must be a nonzero multiple of the page size")
	}
	return &Memory{
		ram: make([]byte, size),
		mpu: make([]uint8, size/PageSize),
	}
}

// Size returns the total number of addressable bytes.
func (m *Memory) Size() uint32 { return uint32(len(m.ram)) }

// FaultAddress returns the address that produced the most recent
// failed accessor call.
func (m *Memory) FaultAddress() uint32 { return m.faultAddress }

// LastException returns the exception kind recorded by the most
// recent failed accessor call.
func (m *Memory) LastException() trap.Kind { return m.lastException }

func (m *Memory) fault(addr uint32, kind trap.Kind) {
	m.faultAddress = addr
	m.lastException = kind
}

// SetRegion copies src into ram at addr without consulting the MPU.
// It is used by bootstrap code (ELF segment loading, argv string and
// stack layout) before the guest is allowed to run; it panics on an
// out-of-bounds request since that indicates a loader bug, not a
// guest fault.
func (m *Memory) SetRegion(addr uint32, src []byte) {
	end := uint64(addr) + uint64(len(src))
	if end > uint64(len(m.ram)) {
		panic("memory: set_region out of bounds")
	}
	copy(m.ram[addr:], src)
}

// ProtectRegion marks every page overlapping [addr, addr+length) with
// prot, replacing whatever protection those pages previously held.
func (m *Memory) ProtectRegion(addr, length uint32, prot uint8) {
	if length == 0 {
		return
	}
	end := uint64(addr) + uint64(length)
	startPage := addr / PageSize
	endPage := (end + PageSize - 1) / PageSize
	for p := uint64(startPage); p < endPage && int(p) < len(m.mpu); p++ {
		m.mpu[p] = prot
	}
}

func (m *Memory) pageProt(addr uint32) uint8 {
	page := addr / PageSize
	if int(page) >= len(m.mpu) {
		return 0
	}
	return m.mpu[page]
}

func (m *Memory) inBounds(addr uint32, size uint32) bool {
	return uint64(addr)+uint64(size) <= uint64(len(m.ram))
}

// Fetch32 reads an instruction word. It requires both read and
// execute permission on the containing page.
func (m *Memory) Fetch32(addr uint32) (uint32, bool) {
	if addr%4 != 0 {
		m.fault(addr, trap.InstructionAddressMisaligned)
		return 0, false
	}
	if !m.inBounds(addr, 4) || m.pageProt(addr)&(ProtR|ProtX) != (ProtR|ProtX) {
		m.fault(addr, trap.InstructionAccessFault)
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.ram[addr:]), true
}

// Read8 reads one byte, requiring read permission.
func (m *Memory) Read8(addr uint32) (uint8, bool) {
	if !m.inBounds(addr, 1) || m.pageProt(addr)&ProtR == 0 {
		m.fault(addr, trap.LoadAccessFault)
		return 0, false
	}
	return m.ram[addr], true
}

// Read16 reads a little-endian halfword, requiring read permission.
func (m *Memory) Read16(addr uint32) (uint16, bool) {
	if !m.inBounds(addr, 2) || m.pageProt(addr)&ProtR == 0 {
		m.fault(addr, trap.LoadAccessFault)
		return 0, false
	}
	return binary.LittleEndian.Uint16(m.ram[addr:]), true
}

// Read32 reads a little-endian word, requiring read permission.
func (m *Memory) Read32(addr uint32) (uint32, bool) {
	if !m.inBounds(addr, 4) || m.pageProt(addr)&ProtR == 0 {
		m.fault(addr, trap.LoadAccessFault)
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.ram[addr:]), true
}

// Write8 stores one byte, requiring write permission.
func (m *Memory) Write8(addr uint32, v uint8) bool {
	if !m.inBounds(addr, 1) || m.pageProt(addr)&ProtW == 0 {
		m.fault(addr, trap.StoreAccessFault)
		return false
	}
	m.ram[addr] = v
	return true
}

// Write16 stores a little-endian halfword, requiring write permission.
func (m *Memory) Write16(addr uint32, v uint16) bool {
	if !m.inBounds(addr, 2) || m.pageProt(addr)&ProtW == 0 {
		m.fault(addr, trap.StoreAccessFault)
		return false
	}
	binary.LittleEndian.PutUint16(m.ram[addr:], v)
	return true
}

// Write32 stores a little-endian word, requiring write permission.
func (m *Memory) Write32(addr uint32, v uint32) bool {
	if !m.inBounds(addr, 4) || m.pageProt(addr)&ProtW == 0 {
		m.fault(addr, trap.StoreAccessFault)
		return false
	}
	binary.LittleEndian.PutUint32(m.ram[addr:], v)
	return true
}

// Slice returns a bounds-checked window directly into guest RAM, for
// the syscall dispatcher to hand to host read/write/stat calls without
// an intermediate copy. It does not consult the MPU: host syscalls act
// on behalf of the guest's own libc, which is free to target any
// address within its RAM, not just pages it marked readable/writable
// for its own instruction stream.
func (m *Memory) Slice(addr, length uint32) ([]byte, bool) {
	if !m.inBounds(addr, length) {
		return nil, false
	}
	return m.ram[addr : addr+length], true
}

// WriteBytes copies data into ram at addr, bounds checked like Slice.
func (m *Memory) WriteBytes(addr uint32, data []byte) bool {
	dst, ok := m.Slice(addr, uint32(len(data)))
	if !ok {
		return false
	}
	copy(dst, data)
	return true
}

// ReadCString reads a NUL-terminated string starting at addr, giving
// up once maxLen bytes have been scanned without finding the
// terminator (a guest passing a non-terminated path is treated as a
// fault, not an unbounded host-side scan).
func (m *Memory) ReadCString(addr uint32, maxLen uint32) (string, bool) {
	limit := addr + maxLen
	if limit < addr || limit > m.Size() {
		limit = m.Size()
	}
	for end := addr; end < limit; end++ {
		if m.pageProt(end)&ProtR == 0 {
			return "", false
		}
		if m.ram[end] == 0 {
			return string(m.ram[addr:end]), true
		}
	}
	return "", false
}

// SetStackBegin records the top of the stack region; it is the floor
// used by SetBrk (the heap always lives above the stack in the
// address map this emulator lays out).
func (m *Memory) SetStackBegin(addr uint32) { m.stackBegin = addr }

// StackBegin returns the value set by SetStackBegin.
func (m *Memory) StackBegin() uint32 { return m.stackBegin }

// Brk returns the current program break.
func (m *Memory) Brk() uint32 { return m.brk }

// SetBrk moves the program break to newBrk, succeeding iff newBrk is
// within [stack_begin, ram_end].
func (m *Memory) SetBrk(newBrk uint32) bool {
	if newBrk < m.stackBegin || uint64(newBrk) > uint64(len(m.ram)) {
		return false
	}
	m.brk = newBrk
	return true
}
