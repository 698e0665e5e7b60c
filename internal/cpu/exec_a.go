package cpu

import "git.rv32.dev/rv32ima/internal/trap"

// AMO funct5 values (bits [31:27] of the instruction).
const (
	amoLR      = 0b00010
	amoSC      = 0b00011
	amoSwap    = 0b00001
	amoAdd     = 0b00000
	amoXor     = 0b00100
	amoAnd     = 0b01100
	amoOr      = 0b01000
	amoMin     = 0b10000
	amoMax     = 0b10100
	amoMinu    = 0b11000
	amoMaxu    = 0b11100
)

// execAmo implements the A extension's word-sized operations: the
// LR.W/SC.W reservation pair plus the AMO read-modify-write family.
// This is a single-hart emulator, so the reservation only needs to
// track the most recent LR.W address; there is no other hart that
// could invalidate it behind our back.
func (h *Hart) execAmo(insn uint32) {
	rd := decodeRd(insn)
	rs1 := decodeRs1(insn)
	rs2 := decodeRs2(insn)
	funct5 := decodeFunct5(insn)
	addr := h.Regs[rs1]

	switch funct5 {
	case amoLR:
		if rs2 != 0 {
			h.trap(trap.IllegalInstruction)
			return
		}
		v, ok := h.mem.Read32(addr)
		if !ok {
			h.trap(h.mem.LastException())
			return
		}
		h.lrAddr = addr
		h.lrValid = true
		h.setReg(rd, v)

	case amoSC:
		var result uint32 = 1
		if h.lrValid && h.lrAddr == addr {
			if !h.mem.Write32(addr, h.Regs[rs2]) {
				h.trap(h.mem.LastException())
				return
			}
			result = 0
		}
		h.lrValid = false
		h.setReg(rd, result)

	default:
		old, ok := h.mem.Read32(addr)
		if !ok {
			h.trap(h.mem.LastException())
			return
		}
		rsv := h.Regs[rs2]
		var newVal uint32
		switch funct5 {
		case amoSwap:
			newVal = rsv
		case amoAdd:
			newVal = old + rsv
		case amoXor:
			newVal = old ^ rsv
		case amoAnd:
			newVal = old & rsv
		case amoOr:
			newVal = old | rsv
		case amoMin:
			if int32(old) < int32(rsv) {
				newVal = old
			} else {
				newVal = rsv
			}
		case amoMax:
			if int32(old) > int32(rsv) {
				newVal = old
			} else {
				newVal = rsv
			}
		case amoMinu:
			if old < rsv {
				newVal = old
			} else {
				newVal = rsv
			}
		case amoMaxu:
			if old > rsv {
				newVal = old
			} else {
				newVal = rsv
			}
		default:
			h.trap(trap.IllegalInstruction)
			return
		}
		if !h.mem.Write32(addr, newVal) {
			h.trap(h.mem.LastException())
			return
		}
		h.setReg(rd, old)
	}

	h.PC += 4
}
