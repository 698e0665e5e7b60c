package av

import (
	"time"

	"git.rv32.dev/rv32ima/internal/memory"
)

// Headless is the required no-display backend: it never opens a
// window, its event queue is permanently empty, and GetTicks advances
// off the wall clock so a guest's timing loop still makes progress.
// It is what every test, CI run, and any environment without a real
// display uses; a windowed backend would implement the same Backend
// interface without touching the interpreter or dispatcher.
type Headless struct {
	start time.Time

	width, height uint32

	framebufferAddr uint32
	paletteAddr     uint32
	paletteCount    uint32
}

// NewHeadless constructs a Headless backend with its ticks clock
// starting now.
func NewHeadless() *Headless {
	return &Headless{start: time.Now()}
}

func (h *Headless) Init(width, height uint32) uint32 {
	h.width, h.height = width, height
	return 0
}

func (h *Headless) SetFramebuffer(_ *memory.Memory, addr uint32) uint32 {
	h.framebufferAddr = addr
	return 0
}

func (h *Headless) SetPalette(_ *memory.Memory, addr, count uint32) uint32 {
	h.paletteAddr, h.paletteCount = addr, count
	return 0
}

func (h *Headless) Update() uint32 { return 0 }

// PollEvent always reports no event pending: there is no input
// device behind a headless backend.
func (h *Headless) PollEvent(_ *memory.Memory, _ uint32) uint32 {
	return 0
}

func (h *Headless) Delay(ms uint32) uint32 {
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return 0
}

func (h *Headless) GetTicks() uint32 {
	return uint32(time.Since(h.start).Milliseconds())
}

func (h *Headless) Shutdown() uint32 { return 0 }
