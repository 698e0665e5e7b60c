package bootstrap

import (
	"testing"

	"git.rv32.dev/rv32ima/internal/elfloader"
	"git.rv32.dev/rv32ima/internal/memory"
)

func testImage() *elfloader.Image {
	return &elfloader.Image{
		Entry: 0x1000,
		Segments: []elfloader.Segment{
			{
				VAddr:    0x1000,
				MemSize:  memory.PageSize,
				FileSize: 4,
				Flags:    5, // PF_R | PF_X
				Data:     []byte{0x13, 0x00, 0x00, 0x00},
			},
		},
	}
}

func TestLoadProducesValidEntryAndStack(t *testing.T) {
	mem := memory.New(StackSize + 16*memory.PageSize)
	res, err := Load(mem, testImage(), []string{"guest", "-x"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Entry != 0x1000 {
		t.Fatalf("entry = %#x, want 0x1000", res.Entry)
	}
	if res.SP == 0 || res.SP >= mem.StackBegin() {
		t.Fatalf("sp = %#x, want within the stack below %#x", res.SP, mem.StackBegin())
	}

	argc, ok := mem.Read32(res.SP)
	if !ok || argc != 2 {
		t.Fatalf("argc = %d, %v; want 2, true", argc, ok)
	}
}

func TestLoadEstablishesBrkAboveStack(t *testing.T) {
	mem := memory.New(StackSize + 16*memory.PageSize)
	if _, err := Load(mem, testImage(), nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mem.Brk() < mem.StackBegin() {
		t.Fatalf("brk %#x should be at or above stack_begin %#x", mem.Brk(), mem.StackBegin())
	}
}

func TestLoadFailsWhenRamTooSmall(t *testing.T) {
	mem := memory.New(2 * memory.PageSize)
	if _, err := Load(mem, testImage(), nil); err == nil {
		t.Fatal("Load should fail when ram cannot fit the image and stack")
	}
}

func TestLoadTruncatesLongArgvEntry(t *testing.T) {
	mem := memory.New(StackSize + 16*memory.PageSize)
	long := "this-argument-is-much-longer-than-the-thirty-one-character-limit"
	if _, err := Load(mem, testImage(), []string{long}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := mem.ReadCString(argStringBase, maxArgLen+1)
	if !ok {
		t.Fatal("ReadCString at argStringBase failed")
	}
	if len(got) != maxArgLen {
		t.Fatalf("argv[0] length = %d, want %d", len(got), maxArgLen)
	}
	if got != long[:maxArgLen] {
		t.Fatalf("argv[0] = %q, want %q", got, long[:maxArgLen])
	}
}

func TestSegmentIsExecutableNotWritable(t *testing.T) {
	mem := memory.New(StackSize + 16*memory.PageSize)
	if _, err := Load(mem, testImage(), nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mem.Write8(0x1000, 0xFF) {
		t.Fatal("text segment should not be writable")
	}
	if _, ok := mem.Fetch32(0x1000); !ok {
		t.Fatal("text segment should be executable")
	}
}
