package cpu

import "git.rv32.dev/rv32ima/internal/trap"

// The only CSRs this hart recognizes: the four read-only identity
// registers every RISC-V implementation exposes, all of which this
// emulator reports as 0 (no vendor, no architecture, no
// implementation, hart 0). Every other CSR number is unimplemented.
const (
	csrMvendorID = 0xF11
	csrMarchID   = 0xF12
	csrMimpID    = 0xF13
	csrMhartID   = 0xF14
)

func isReadOnlyCSR(csr uint32) bool { return csr&0xC00 == 0xC00 }

func isKnownCSR(csr uint32) bool {
	switch csr {
	case csrMvendorID, csrMarchID, csrMimpID, csrMhartID:
		return true
	default:
		return false
	}
}

// csrRead reads csr. writeBack reports whether the instruction that
// triggered this read will also write csr (CSRRW always does;
// CSRRS/CSRRC only when new_value != 0). A read-only CSR rejects the
// read with illegal_instruction when writeBack is true, matching the
// Zicsr rule that CSRRW/S/C raise an exception if they would write a
// CSR whose top two bits mark it read-only.
func (h *Hart) csrRead(csr uint32, writeBack bool) (uint32, bool) {
	if isReadOnlyCSR(csr) && writeBack {
		h.trap(trap.IllegalInstruction)
		return 0, false
	}
	if !isKnownCSR(csr) {
		h.trap(trap.IllegalInstruction)
		return 0, false
	}
	return 0, true
}

// csrWrite always fails: none of the CSRs this hart knows about are
// writable.
func (h *Hart) csrWrite(csr uint32, _ uint32) bool {
	h.trap(trap.IllegalInstruction)
	return false
}

// csrOp implements CSRRW (op 1) and CSRRS/CSRRC (op 2/3). rd == 0 and
// newValue == 0 together mean "no side effect at all": CSRRS/C with a
// zero mask and no destination register performs neither the read nor
// the write, so reading an unimplemented or CSR-illegal register this
// way never traps. It returns false if a trap was raised, in which
// case the caller must not advance pc.
func (h *Hart) csrOp(csr uint32, rd uint32, newValue uint32, op uint32) bool {
	switch op {
	case 1: // csrrw / csrrwi
		old, ok := h.csrRead(csr, true)
		if !ok {
			return false
		}
		if !h.csrWrite(csr, newValue) {
			return false
		}
		h.setReg(rd, old)
		return true

	case 2, 3: // csrrs/csrrsi, csrrc/csrrci
		if rd == 0 && newValue == 0 {
			return true
		}
		old, ok := h.csrRead(csr, newValue != 0)
		if !ok {
			return false
		}
		if newValue != 0 {
			var result uint32
			if op == 2 {
				result = old | newValue
			} else {
				result = old &^ newValue
			}
			if !h.csrWrite(csr, result) {
				return false
			}
		}
		h.setReg(rd, old)
		return true
	}
	return false
}

func (h *Hart) execSystem(insn uint32) {
	rd := decodeRd(insn)
	rs1 := decodeRs1(insn)
	funct3 := decodeFunct3(insn)
	imm12 := insn >> 20

	switch funct3 {
	case 0b000:
		// ECALL/EBREAK require every other field to be zero.
		if insn&0x000FFF80 != 0 {
			h.trap(trap.IllegalInstruction)
			return
		}
		switch imm12 {
		case 0:
			h.trap(trap.EcallFromUMode)
		case 1:
			h.trap(trap.Breakpoint)
		default:
			h.trap(trap.IllegalInstruction)
		}
		return

	case 0b001, 0b010, 0b011: // csrrw, csrrs, csrrc
		if !h.csrOp(imm12&0xFFF, rd, h.Regs[rs1], funct3) {
			return
		}
	case 0b101, 0b110, 0b111: // csrrwi, csrrsi, csrrci
		if !h.csrOp(imm12&0xFFF, rd, rs1, funct3-4) {
			return
		}
	default:
		h.trap(trap.IllegalInstruction)
		return
	}

	h.PC += 4
}
