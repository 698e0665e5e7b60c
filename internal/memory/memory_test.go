package memory

import (
	"testing"

	"git.rv32.dev/rv32ima/internal/trap"
)

func TestReadWriteRoundTrip(t *testing.T) {
	m := New(2 * PageSize)
	m.ProtectRegion(0, 2*PageSize, ProtR|ProtW)

	if !m.Write32(0x100, 0xdeadbeef) {
		t.Fatal("write32 failed under RW protection")
	}
	v, ok := m.Read32(0x100)
	if !ok || v != 0xdeadbeef {
		t.Fatalf("read32 = %#x, %v; want 0xdeadbeef, true", v, ok)
	}
}

func TestWriteRejectedWithoutPermission(t *testing.T) {
	m := New(PageSize)
	m.ProtectRegion(0, PageSize, ProtR)

	if m.Write8(0, 1) {
		t.Fatal("write8 succeeded on a read-only page")
	}
	if m.LastException() != trap.StoreAccessFault {
		t.Fatalf("exception = %v, want store_access_fault", m.LastException())
	}
	if m.FaultAddress() != 0 {
		t.Fatalf("fault address = %#x, want 0", m.FaultAddress())
	}
}

func TestFetchRequiresReadAndExecute(t *testing.T) {
	m := New(PageSize)
	m.ProtectRegion(0, PageSize, ProtR)
	if _, ok := m.Fetch32(0); ok {
		t.Fatal("fetch succeeded on a page without execute permission")
	}
	if m.LastException() != trap.InstructionAccessFault {
		t.Fatalf("exception = %v, want instruction_access_fault", m.LastException())
	}
}

func TestFetchRejectsMisalignedAddress(t *testing.T) {
	m := New(PageSize)
	m.ProtectRegion(0, PageSize, ProtR|ProtX)
	if _, ok := m.Fetch32(2); ok {
		t.Fatal("fetch succeeded at a misaligned address")
	}
	if m.LastException() != trap.InstructionAddressMisaligned {
		t.Fatalf("exception = %v, want instruction_address_misaligned", m.LastException())
	}
}

func TestOutOfBoundsAccess(t *testing.T) {
	m := New(PageSize)
	m.ProtectRegion(0, PageSize, ProtR|ProtW)
	if _, ok := m.Read32(PageSize - 2); ok {
		t.Fatal("read32 succeeded straddling the end of ram")
	}
}

func TestSetBrkBounds(t *testing.T) {
	m := New(4 * PageSize)
	m.SetStackBegin(2 * PageSize)

	if m.SetBrk(PageSize) {
		t.Fatal("set_brk below stack_begin should fail")
	}
	if !m.SetBrk(3 * PageSize) {
		t.Fatal("set_brk within range should succeed")
	}
	if m.Brk() != 3*PageSize {
		t.Fatalf("brk = %#x, want %#x", m.Brk(), 3*PageSize)
	}
	if m.SetBrk(m.Size() + 1) {
		t.Fatal("set_brk beyond ram_end should fail")
	}
}

func TestReadCString(t *testing.T) {
	m := New(PageSize)
	m.ProtectRegion(0, PageSize, ProtR|ProtW)
	m.SetRegion(0x10, []byte("hello\x00"))

	s, ok := m.ReadCString(0x10, 64)
	if !ok || s != "hello" {
		t.Fatalf("ReadCString = %q, %v; want \"hello\", true", s, ok)
	}
}

func TestSliceBoundsCheck(t *testing.T) {
	m := New(PageSize)
	if _, ok := m.Slice(PageSize-4, 8); ok {
		t.Fatal("Slice succeeded past the end of ram")
	}
	b, ok := m.Slice(0, PageSize)
	if !ok || len(b) != PageSize {
		t.Fatalf("Slice(0, PageSize) = len %d, %v", len(b), ok)
	}
}
