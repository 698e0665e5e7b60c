package av

import "encoding/binary"

// Every av event starts with a common header: the event type tag and
// a millisecond timestamp, both little-endian 32-bit words.
const headerSize = 8

func putHeader(buf []byte, eventType, timestamp uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], eventType)
	binary.LittleEndian.PutUint32(buf[4:8], timestamp)
}

// KeyboardEventSize is the wire size of a keydown/keyup event.
const KeyboardEventSize = headerSize + 8

// EncodeKeyboardEvent writes a keydown/keyup event into buf.
func EncodeKeyboardEvent(buf []byte, eventType, timestamp, scanCode, vkCode uint32) {
	putHeader(buf, eventType, timestamp)
	binary.LittleEndian.PutUint32(buf[8:12], scanCode)
	binary.LittleEndian.PutUint32(buf[12:16], vkCode)
}

// MouseButtonEventSize is the wire size of a mouse button event.
const MouseButtonEventSize = headerSize + 20

// EncodeMouseButtonEvent writes a mouse button down/up event into buf.
func EncodeMouseButtonEvent(buf []byte, eventType, timestamp uint32, clicks, state, button, x, y int32) {
	putHeader(buf, eventType, timestamp)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(clicks))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(state))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(button))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(x))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(y))
}

// MouseMoveEventSize is the wire size of a mouse motion event.
const MouseMoveEventSize = headerSize + 20

// EncodeMouseMoveEvent writes a mouse motion event into buf.
func EncodeMouseMoveEvent(buf []byte, timestamp uint32, state, x, y, xrel, yrel int32) {
	putHeader(buf, EventMouseMove, timestamp)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(state))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(x))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(y))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(xrel))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(yrel))
}
