package newlib

import (
	"syscall"
	"testing"
)

func TestTranslateOpenFlagsAccessMode(t *testing.T) {
	if got := TranslateOpenFlags(oRdonly); got&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		t.Fatalf("flags = %#x, want O_RDONLY", got)
	}
	if got := TranslateOpenFlags(oWronly); got&syscall.O_WRONLY == 0 {
		t.Fatalf("flags = %#x, want O_WRONLY set", got)
	}
	if got := TranslateOpenFlags(oRdwr); got&syscall.O_RDWR == 0 {
		t.Fatalf("flags = %#x, want O_RDWR set", got)
	}
}

func TestTranslateOpenFlagsCreateTrunc(t *testing.T) {
	got := TranslateOpenFlags(oWronly | oCreat | oTrunc)
	if got&syscall.O_CREAT == 0 || got&syscall.O_TRUNC == 0 {
		t.Fatalf("flags = %#x, want O_CREAT|O_TRUNC set", got)
	}
}

func TestEncodeStatSize(t *testing.T) {
	buf := make([]byte, StatSize)
	var st syscall.Stat_t
	st.Size = 1234
	EncodeStat(buf, &st)
	// Size lives at offset 48, little-endian 64-bit.
	if buf[48] != 0xD2 || buf[49] != 0x04 {
		t.Fatalf("st_size not encoded at expected offset: %v", buf[48:56])
	}
}

func TestEncodeTimeval(t *testing.T) {
	buf := make([]byte, TimevalSize)
	tv := syscall.Timeval{Sec: 10, Usec: 20}
	EncodeTimeval(buf, &tv)
	if buf[0] != 10 || buf[4] != 20 {
		t.Fatalf("timeval not encoded correctly: %v", buf)
	}
}
