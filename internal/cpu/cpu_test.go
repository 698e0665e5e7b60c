package cpu

import (
	"testing"

	"git.rv32.dev/rv32ima/internal/memory"
)

func newTestHart(t *testing.T, program []uint32) (*Hart, *memory.Memory) {
	t.Helper()
	mem := memory.New(memory.PageSize)
	mem.ProtectRegion(0, memory.PageSize, memory.ProtR|memory.ProtW|memory.ProtX)
	for i, insn := range program {
		addr := uint32(i * 4)
		buf := []byte{byte(insn), byte(insn >> 8), byte(insn >> 16), byte(insn >> 24)}
		mem.SetRegion(addr, buf)
	}
	return New(mem, 0, nil), mem
}

func TestAddiAndLui(t *testing.T) {
	// lui x1, 0x1; addi x2, x1, 5
	h, _ := newTestHart(t, []uint32{
		0x000010B7,
		0x00508113,
	})
	h.Run(2)
	if h.Regs[1] != 0x1000 {
		t.Fatalf("x1 = %#x, want 0x1000", h.Regs[1])
	}
	if h.Regs[2] != 0x1005 {
		t.Fatalf("x2 = %#x, want 0x1005", h.Regs[2])
	}
}

func TestX0WritesDiscarded(t *testing.T) {
	// addi x0, x0, 5
	h, _ := newTestHart(t, []uint32{0x00500013})
	h.Run(1)
	if h.Regs[0] != 0 {
		t.Fatalf("x0 = %d, want 0", h.Regs[0])
	}
}

func TestDivByZero(t *testing.T) {
	if got := execMExt(0b100, 10, 0); got != 0xFFFFFFFF {
		t.Fatalf("div by zero = %#x, want 0xFFFFFFFF", got)
	}
	if got := execMExt(0b101, 10, 0); got != 0xFFFFFFFF {
		t.Fatalf("divu by zero = %#x, want 0xFFFFFFFF", got)
	}
	if got := execMExt(0b110, 10, 0); got != 10 {
		t.Fatalf("rem by zero = %d, want 10", got)
	}
}

func TestDivOverflow(t *testing.T) {
	if got := execMExt(0b100, 0x80000000, 0xFFFFFFFF); got != 0x80000000 {
		t.Fatalf("div overflow = %#x, want 0x80000000", got)
	}
	if got := execMExt(0b110, 0x80000000, 0xFFFFFFFF); got != 0 {
		t.Fatalf("rem overflow = %d, want 0", got)
	}
}

func TestMulLowBits(t *testing.T) {
	if got := execMExt(0b000, 0xFFFFFFFF, 2); got != 0xFFFFFFFE {
		t.Fatalf("mul = %#x, want 0xFFFFFFFE", got)
	}
}

func TestLoadReserveStoreConditional(t *testing.T) {
	// lr.w x3, (x5); sc.w x3, x6, (x5)
	h, mem := newTestHart(t, []uint32{
		0x1002A1AF, // lr.w x3, (x5)
		0x1862A1AF, // sc.w x3, x6, (x5)
	})
	// Protection is per page: page 0 also holds the program, so it keeps X.
	mem.ProtectRegion(0x100, memory.PageSize-0x100, memory.ProtR|memory.ProtW|memory.ProtX)
	mem.Write32(0x100, 42)
	h.Regs[5] = 0x100
	h.Regs[6] = 99

	h.Run(2)
	if h.Regs[3] != 0 {
		t.Fatalf("sc.w result = %d, want 0 (success)", h.Regs[3])
	}
	v, _ := mem.Read32(0x100)
	if v != 99 {
		t.Fatalf("memory at 0x100 = %d, want 99", v)
	}
}

func TestStoreConditionalFailsWithoutReservation(t *testing.T) {
	// sc.w x3, x6, (x5) with no preceding lr.w
	h, mem := newTestHart(t, []uint32{0x1862A1AF})
	// Protection is per page: page 0 also holds the program, so it keeps X.
	mem.ProtectRegion(0x100, memory.PageSize-0x100, memory.ProtR|memory.ProtW|memory.ProtX)
	h.Regs[5] = 0x100
	h.Regs[6] = 99

	h.Run(1)
	if h.Regs[3] != 1 {
		t.Fatalf("sc.w result = %d, want 1 (failure)", h.Regs[3])
	}
}

func TestCSRReadOnlyWriteIsIllegal(t *testing.T) {
	// csrrw x0, cycle(0xc00), x1 -- cycle is read-only, CSRRW always writes
	h, _ := newTestHart(t, []uint32{0xC0009073})
	h.Run(1)
	exited, status := h.Exited()
	if !exited || status != 255 {
		t.Fatalf("exited=%v status=%d, want true 255", exited, status)
	}
}

func TestCSRRSWithZeroMaskIsNoop(t *testing.T) {
	// csrrs x0, mhartid, x0 (rd=0, rs1=0 -> new_value=0): must not trap
	h, _ := newTestHart(t, []uint32{0xF1402073})
	h.Run(1)
	exited, _ := h.Exited()
	if exited {
		t.Fatal("csrrs x0, mhartid, x0 should not trap")
	}
}

func TestEcallDispatch(t *testing.T) {
	// ecall
	h, _ := newTestHart(t, []uint32{0x00000073})
	var gotNo uint32
	h.OnEcall = func(no uint32, args [6]uint32) (uint32, bool, int32) {
		gotNo = no
		return 0xAB, false, 0
	}
	h.Regs[17] = 93
	h.Run(1)
	if gotNo != 93 {
		t.Fatalf("syscall number = %d, want 93", gotNo)
	}
	if h.Regs[10] != 0xAB {
		t.Fatalf("a0 = %#x, want 0xAB", h.Regs[10])
	}
}

func TestIllegalInstructionExits(t *testing.T) {
	// compressed-looking instruction (low two bits != 11)
	h, _ := newTestHart(t, []uint32{0x00000001})
	h.Run(1)
	exited, status := h.Exited()
	if !exited || status != 255 {
		t.Fatalf("exited=%v status=%d, want true 255", exited, status)
	}
}
