package hex

import (
	"strings"
	"testing"
)

func TestFormatWord(t *testing.T) {
	var b strings.Builder
	FormatWord(&b, []uint32{0xdeadbeef, 0})
	if got, want := b.String(), "DEADBEEF 00000000 "; got != want {
		t.Fatalf("FormatWord = %q, want %q", got, want)
	}
}

func TestFormatBytes(t *testing.T) {
	var b strings.Builder
	FormatBytes(&b, true, []byte{0xAB, 0xCD})
	if got, want := b.String(), "AB CD "; got != want {
		t.Fatalf("FormatBytes = %q, want %q", got, want)
	}
}
