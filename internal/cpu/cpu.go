// Package cpu implements the RV32IMA fetch/decode/dispatch loop: the
// 32 general purpose registers, the program counter, the base
// integer, multiply/divide and atomic instruction families, and the
// trap state machine that hands control to a syscall handler on
// ecall and otherwise terminates the run.
package cpu

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"git.rv32.dev/rv32ima/internal/memory"
	"git.rv32.dev/rv32ima/internal/trap"
	"git.rv32.dev/rv32ima/util/hex"
)

// SyscallFunc services an ecall. no is the syscall number taken from
// a7 (x17); args holds a0..a5 (x10..x15) in order. The return value
// is written back into a0. When exit is true the hart stops after
// this call with exitStatus as its process exit code.
type SyscallFunc func(no uint32, args [6]uint32) (result uint32, exit bool, exitStatus int32)

// Hart is one RV32IMA core plus the memory it executes against.
// It carries no package-level state: every field a guest program can
// observe or mutate lives on the struct, so nothing prevents running
// several independent harts in one process.
type Hart struct {
	Regs [32]uint32
	PC   uint32

	lrValid bool
	lrAddr  uint32

	mem *memory.Memory

	trapped  bool
	trapKind trap.Kind

	emulationExit bool
	exitStatus    int32

	cycleCount atomic.Uint64

	OnEcall SyscallFunc
	Logger  *slog.Logger
}

// New builds a hart bound to mem, with the program counter at entry.
func New(mem *memory.Memory, entry uint32, logger *slog.Logger) *Hart {
	return &Hart{mem: mem, PC: entry, Logger: logger}
}

// SP returns the stack pointer register (x2).
func (h *Hart) SP() uint32 { return h.Regs[2] }

// SetSP sets the stack pointer register (x2).
func (h *Hart) SetSP(v uint32) { h.setReg(2, v) }

// Exited reports whether the hart has stopped and the status it
// stopped with.
func (h *Hart) Exited() (bool, int32) { return h.emulationExit, h.exitStatus }

// CycleCount returns the number of instructions retired so far. It is
// safe to call concurrently with Run: both sides use an atomic
// counter, which is the only synchronization an optional profiler
// goroutine sampling this value needs.
func (h *Hart) CycleCount() uint64 { return h.cycleCount.Load() }

func (h *Hart) setReg(i uint32, v uint32) {
	if i != 0 {
		h.Regs[i] = v
	}
}

func (h *Hart) trap(kind trap.Kind) {
	h.trapped = true
	h.trapKind = kind
}

// Run executes up to budget instructions, or fewer if the guest exits
// or hits a fatal trap first. It returns the number of instructions
// actually retired.
func (h *Hart) Run(budget uint64) uint64 {
	var executed uint64
	for executed < budget && !h.emulationExit {
		insn, ok := h.mem.Fetch32(h.PC)
		if !ok {
			h.trap(h.mem.LastException())
		} else {
			h.execute(insn)
		}
		executed++

		if h.trapped {
			h.handleTrap()
		}
	}
	h.cycleCount.Add(executed)
	return executed
}

func (h *Hart) execute(insn uint32) {
	if insn&0x3 != 0x3 {
		// Compressed instructions (the C extension) are out of scope;
		// the low two bits being anything but 11 means this is not a
		// 32-bit instruction we can decode.
		h.trap(trap.IllegalInstruction)
		return
	}

	switch decodeOpcode(insn) {
	case opLoad:
		h.execLoad(insn)
	case opMiscMem:
		h.PC += 4 // FENCE / FENCE.I: no-op, single hart
	case opImm:
		h.execOpImm(insn)
	case opAuipc:
		h.execAuipc(insn)
	case opStore:
		h.execStore(insn)
	case opAmo:
		h.execAmo(insn)
	case opOp:
		h.execOp(insn)
	case opLui:
		h.execLui(insn)
	case opBranch:
		h.execBranch(insn)
	case opJalr:
		h.execJalr(insn)
	case opJal:
		h.execJal(insn)
	case opSystem:
		h.execSystem(insn)
	default:
		h.trap(trap.IllegalInstruction)
	}
}

// handleTrap dispatches the pending trap. ecall is serviced and the
// hart resumes; every other trap kind is fatal and logs a register
// dump before marking the hart exited with status 255. The program
// counter always advances by 4 once the trap has been handled,
// mirroring the environment-call return convention even on the fatal
// path, where it no longer has any observable effect.
func (h *Hart) handleTrap() {
	switch h.trapKind {
	case trap.EcallFromUMode:
		args := [6]uint32{h.Regs[10], h.Regs[11], h.Regs[12], h.Regs[13], h.Regs[14], h.Regs[15]}
		no := h.Regs[17]
		if h.OnEcall != nil {
			result, exit, status := h.OnEcall(no, args)
			h.Regs[10] = result
			if exit {
				h.emulationExit = true
				h.exitStatus = status
			}
		}
	default:
		h.logFatalTrap()
		h.emulationExit = true
		h.exitStatus = 255
	}
	h.trapped = false
	h.PC += 4
}

func (h *Hart) logFatalTrap() {
	if h.Logger == nil {
		return
	}
	var b strings.Builder
	hex.FormatWord(&b, h.Regs[:])
	h.Logger.Error("unhandled trap",
		"kind", h.trapKind.String(),
		"pc", fmt.Sprintf("%#010x", h.PC),
		"fault_address", fmt.Sprintf("%#010x", h.mem.FaultAddress()),
		"regs", b.String(),
	)
}
