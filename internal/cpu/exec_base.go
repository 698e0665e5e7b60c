package cpu

import "git.rv32.dev/rv32ima/internal/trap"

func (h *Hart) execLui(insn uint32) {
	h.setReg(decodeRd(insn), decodeImmU(insn))
	h.PC += 4
}

func (h *Hart) execAuipc(insn uint32) {
	h.setReg(decodeRd(insn), h.PC+decodeImmU(insn))
	h.PC += 4
}

func (h *Hart) execJal(insn uint32) {
	rd := decodeRd(insn)
	imm := decodeImmJ(insn)
	target := h.PC + uint32(imm)
	h.setReg(rd, h.PC+4)
	h.PC = target
}

func (h *Hart) execJalr(insn uint32) {
	rd := decodeRd(insn)
	rs1 := decodeRs1(insn)
	imm := decodeImmI(insn)
	target := (h.Regs[rs1] + uint32(imm)) &^ 1
	link := h.PC + 4
	h.setReg(rd, link)
	h.PC = target
}

func (h *Hart) execBranch(insn uint32) {
	rs1 := decodeRs1(insn)
	rs2 := decodeRs2(insn)
	funct3 := decodeFunct3(insn)
	v1 := h.Regs[rs1]
	v2 := h.Regs[rs2]

	var taken bool
	switch funct3 {
	case 0b000: // beq
		taken = v1 == v2
	case 0b001: // bne
		taken = v1 != v2
	case 0b100: // blt
		taken = int32(v1) < int32(v2)
	case 0b101: // bge
		taken = int32(v1) >= int32(v2)
	case 0b110: // bltu
		taken = v1 < v2
	case 0b111: // bgeu
		taken = v1 >= v2
	default:
		h.trap(trap.IllegalInstruction)
		return
	}

	if taken {
		h.PC += uint32(decodeImmB(insn))
	} else {
		h.PC += 4
	}
}

func (h *Hart) execLoad(insn uint32) {
	rd := decodeRd(insn)
	rs1 := decodeRs1(insn)
	funct3 := decodeFunct3(insn)
	addr := h.Regs[rs1] + uint32(decodeImmI(insn))

	var value uint32
	switch funct3 {
	case 0b000: // lb
		v, ok := h.mem.Read8(addr)
		if !ok {
			h.trap(h.mem.LastException())
			return
		}
		value = uint32(int32(int8(v)))
	case 0b001: // lh
		v, ok := h.mem.Read16(addr)
		if !ok {
			h.trap(h.mem.LastException())
			return
		}
		value = uint32(int32(int16(v)))
	case 0b010: // lw
		v, ok := h.mem.Read32(addr)
		if !ok {
			h.trap(h.mem.LastException())
			return
		}
		value = v
	case 0b100: // lbu
		v, ok := h.mem.Read8(addr)
		if !ok {
			h.trap(h.mem.LastException())
			return
		}
		value = uint32(v)
	case 0b101: // lhu
		v, ok := h.mem.Read16(addr)
		if !ok {
			h.trap(h.mem.LastException())
			return
		}
		value = uint32(v)
	default:
		h.trap(trap.IllegalInstruction)
		return
	}

	h.setReg(rd, value)
	h.PC += 4
}

func (h *Hart) execStore(insn uint32) {
	rs1 := decodeRs1(insn)
	rs2 := decodeRs2(insn)
	funct3 := decodeFunct3(insn)
	addr := h.Regs[rs1] + uint32(decodeImmS(insn))
	val := h.Regs[rs2]

	var ok bool
	switch funct3 {
	case 0b000: // sb
		ok = h.mem.Write8(addr, uint8(val))
	case 0b001: // sh
		ok = h.mem.Write16(addr, uint16(val))
	case 0b010: // sw
		ok = h.mem.Write32(addr, val)
	default:
		h.trap(trap.IllegalInstruction)
		return
	}
	if !ok {
		h.trap(h.mem.LastException())
		return
	}
	h.PC += 4
}

func (h *Hart) execOpImm(insn uint32) {
	rd := decodeRd(insn)
	rs1 := decodeRs1(insn)
	funct3 := decodeFunct3(insn)
	imm := decodeImmI(insn)
	val := h.Regs[rs1]

	var res uint32
	switch funct3 {
	case 0b000: // addi
		res = val + uint32(imm)
	case 0b001: // slli
		rawImm := (insn >> 20) & 0xFFF
		if rawImm&^uint32(0x1F) != 0 {
			h.trap(trap.IllegalInstruction)
			return
		}
		res = val << rawImm
	case 0b010: // slti
		res = b2u(int32(val) < imm)
	case 0b011: // sltiu
		res = b2u(val < uint32(imm))
	case 0b100: // xori
		res = val ^ uint32(imm)
	case 0b101: // srli/srai
		rawImm := (insn >> 20) & 0xFFF
		if rawImm&^(uint32(0x1F)|0x400) != 0 {
			h.trap(trap.IllegalInstruction)
			return
		}
		shamt := rawImm & 0x1F
		if rawImm&0x400 != 0 {
			res = uint32(int32(val) >> shamt)
		} else {
			res = val >> shamt
		}
	case 0b110: // ori
		res = val | uint32(imm)
	case 0b111: // andi
		res = val & uint32(imm)
	}

	h.setReg(rd, res)
	h.PC += 4
}

func (h *Hart) execOp(insn uint32) {
	rd := decodeRd(insn)
	rs1 := decodeRs1(insn)
	rs2 := decodeRs2(insn)
	funct3 := decodeFunct3(insn)
	funct7 := decodeFunct7(insn)
	v1 := h.Regs[rs1]
	v2 := h.Regs[rs2]

	var res uint32
	if funct7 == 1 {
		res = execMExt(funct3, v1, v2)
	} else {
		if funct7 != 0 && funct7 != 0x20 {
			h.trap(trap.IllegalInstruction)
			return
		}
		switch funct3 {
		case 0b000: // add/sub
			if funct7 == 0x20 {
				res = v1 - v2
			} else {
				res = v1 + v2
			}
		case 0b001: // sll
			res = v1 << (v2 & 0x1F)
		case 0b010: // slt
			res = b2u(int32(v1) < int32(v2))
		case 0b011: // sltu
			res = b2u(v1 < v2)
		case 0b100: // xor
			res = v1 ^ v2
		case 0b101: // srl/sra
			if funct7 == 0x20 {
				res = uint32(int32(v1) >> (v2 & 0x1F))
			} else {
				res = v1 >> (v2 & 0x1F)
			}
		case 0b110: // or
			res = v1 | v2
		case 0b111: // and
			res = v1 & v2
		}
	}

	h.setReg(rd, res)
	h.PC += 4
}
