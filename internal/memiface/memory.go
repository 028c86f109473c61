// Package memiface defines the guest memory contract the core depends on.
//
// The core never owns guest memory; it is supplied by an external
// collaborator (device models, a flat-array backing store, or something
// richer) and accessed only through this narrow interface.
package memiface

import "fmt"

// MemStatus classifies the outcome of a guest memory access.
type MemStatus int

const (
	// StatusOk indicates the access completed normally.
	StatusOk MemStatus = iota
	// StatusAccessViolation indicates the physical address is not backed
	// or the access kind is not permitted at that address.
	StatusAccessViolation
	// StatusUnaligned indicates a naturally-unaligned access was rejected.
	StatusUnaligned
	// StatusTlbMiss is surfaced by collaborators that themselves cache
	// translations; the core's own Translation Unit resolves this before
	// calling Memory, but the interface allows a collaborator to report it.
	StatusTlbMiss
	// StatusBusError indicates a fatal bus-level failure (triggers a
	// machine check).
	StatusBusError
	// StatusIllegalInstruction is returned by ReadInst32 when the fetched
	// word cannot be treated as an instruction (e.g. non-executable MMIO).
	StatusIllegalInstruction
)

func (s MemStatus) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusAccessViolation:
		return "access-violation"
	case StatusUnaligned:
		return "unaligned"
	case StatusTlbMiss:
		return "tlb-miss"
	case StatusBusError:
		return "bus-error"
	case StatusIllegalInstruction:
		return "illegal-instruction"
	default:
		return fmt.Sprintf("memstatus(%d)", int(s))
	}
}

// Error wraps a non-Ok MemStatus so it can be propagated with the standard
// error interface while still allowing callers to recover the status via
// errors.As.
type Error struct {
	Status MemStatus
	PA     uint64
}

func (e *Error) Error() string {
	return fmt.Sprintf("memiface: %s at pa=0x%x", e.Status, e.PA)
}

// Memory is the guest physical memory surface the core consumes. All
// addresses are physical; the Translation Unit is responsible for turning
// virtual addresses into physical ones before calling these methods.
type Memory interface {
	Read32(pa uint64) (uint32, MemStatus)
	Read64(pa uint64) (uint64, MemStatus)
	Write32(pa uint64, value uint32) MemStatus
	Write64(pa uint64, value uint64) MemStatus
	// ReadInst32 is the fetch-path read; collaborators may enforce
	// executability separately from readability.
	ReadInst32(pa uint64) (uint32, MemStatus)
}
