package memiface

import "encoding/binary"

// Flat is a flat byte-addressed backing store, used by tests and by the
// probe/run CLI when no richer device model is wired in. It is the
// generalization of the teacher's single GPR/M-array VM memory into a
// standalone collaborator reachable through the Memory interface.
type Flat struct {
	bytes []byte
}

var _ Memory = (*Flat)(nil)

// NewFlat allocates a flat memory of the given size in bytes.
func NewFlat(size uint64) *Flat {
	return &Flat{bytes: make([]byte, size)}
}

func (f *Flat) bounds(pa uint64, width uint64) bool {
	return pa+width <= uint64(len(f.bytes))
}

func (f *Flat) Read32(pa uint64) (uint32, MemStatus) {
	if pa%4 != 0 {
		return 0, StatusUnaligned
	}
	if !f.bounds(pa, 4) {
		return 0, StatusAccessViolation
	}
	return binary.LittleEndian.Uint32(f.bytes[pa:]), StatusOk
}

func (f *Flat) Read64(pa uint64) (uint64, MemStatus) {
	if pa%8 != 0 {
		return 0, StatusUnaligned
	}
	if !f.bounds(pa, 8) {
		return 0, StatusAccessViolation
	}
	return binary.LittleEndian.Uint64(f.bytes[pa:]), StatusOk
}

func (f *Flat) Write32(pa uint64, value uint32) MemStatus {
	if pa%4 != 0 {
		return StatusUnaligned
	}
	if !f.bounds(pa, 4) {
		return StatusAccessViolation
	}
	binary.LittleEndian.PutUint32(f.bytes[pa:], value)
	return StatusOk
}

func (f *Flat) Write64(pa uint64, value uint64) MemStatus {
	if pa%8 != 0 {
		return StatusUnaligned
	}
	if !f.bounds(pa, 8) {
		return StatusAccessViolation
	}
	binary.LittleEndian.PutUint64(f.bytes[pa:], value)
	return StatusOk
}

func (f *Flat) ReadInst32(pa uint64) (uint32, MemStatus) {
	return f.Read32(pa)
}

// Size returns the backing store's size in bytes.
func (f *Flat) Size() uint64 { return uint64(len(f.bytes)) }
