// Package smp implements the Reservation Manager and Memory Barrier
// Coordinator: the two pieces of cross-CPU coordination infrastructure the
// per-CPU orchestrators share.
package smp

import (
	"sync/atomic"

	"github.com/alphacore/ev6/internal/tlb"
)

// invalidAddress is the sentinel CacheLineAligned() can never produce for a
// genuine reservation in practice within this emulator's address space, used
// so the address and validity of one reservation live in a single atomic
// word: cross-CPU breaks are then a single atomic store rather than two
// separate field writes a reader could observe torn.
const invalidAddress = ^uint64(0)

// ReservationManager tracks one LL/SC reservation per CPU, cache-line
// granular. Per-CPU slots are logically single-writer (only that CPU's own
// pipeline ever calls Set/CheckAndClear for its own slot), but BreakOnLine
// and BreakAll are called from any CPU's execute path against any other
// CPU's slot, so the slot itself is an atomic word: a lost race between a
// Set and a concurrent Break is architecturally acceptable (spec.md §4.7 —
// any write breaks the reservation regardless of which goroutine observes it
// first), but the word itself must never be read torn.
type ReservationManager struct {
	slots []atomic.Uint64
}

// NewReservationManager allocates a manager for the given CPU count.
func NewReservationManager(cpuCount int) *ReservationManager {
	m := &ReservationManager{slots: make([]atomic.Uint64, cpuCount)}
	for i := range m.slots {
		m.slots[i].Store(invalidAddress)
	}
	return m
}

// Set records a cache-line-aligned reservation for cpu, the effect of an
// LDx_L instruction.
func (m *ReservationManager) Set(cpu int, pa uint64) {
	m.slots[cpu].Store(tlb.CacheLineAligned(pa))
}

// CheckAndClear reports whether cpu's reservation is valid and covers pa's
// cache line, then always clears the slot (STx_C's success-or-fail check,
// whose side effect is to consume the reservation either way).
func (m *ReservationManager) CheckAndClear(cpu int, pa uint64) bool {
	line := m.slots[cpu].Swap(invalidAddress)
	return line != invalidAddress && line == tlb.CacheLineAligned(pa)
}

// BreakOnLine invalidates any CPU's reservation that covers pa's cache
// line; called on any write to that line, any IPI, or a context switch.
func (m *ReservationManager) BreakOnLine(pa uint64) {
	line := tlb.CacheLineAligned(pa)
	for i := range m.slots {
		m.slots[i].CompareAndSwap(line, invalidAddress)
	}
}

// BreakAll clears cpu's own reservation unconditionally, used on context
// switch and PAL entry/REI.
func (m *ReservationManager) BreakAll(cpu int) {
	m.slots[cpu].Store(invalidAddress)
}

// Valid reports whether cpu currently holds a reservation, for tests and
// diagnostics.
func (m *ReservationManager) Valid(cpu int) bool {
	return m.slots[cpu].Load() != invalidAddress
}
