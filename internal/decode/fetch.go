package decode

import (
	"github.com/alphacore/ev6/internal/grain"
	"github.com/alphacore/ev6/internal/memiface"
	"github.com/alphacore/ev6/internal/tlb"
)

// FetchOutcome classifies what happened on a fetch attempt, independent of
// the fault package to keep this package acyclic; the pipeline translates
// a non-Ok outcome into a PendingEvent.
type FetchOutcome int

const (
	FetchOk FetchOutcome = iota
	FetchTranslationFault
	FetchBusError
	FetchIllegalOpcode
)

// FetchResult is the outcome of one fetch_next call.
type FetchResult struct {
	Outcome  FetchOutcome
	Ins      Instruction
	TlbFault tlb.FaultClass
	VA       uint64
}

// Unit is the Fetch/Decode Unit for one CPU: it owns no register state
// (that lives in regfile), but does own its decode caches and a reference
// to the grain registry and translation unit it consults.
type Unit struct {
	Registry  *grain.Registry
	ITLB      *tlb.TLB
	PageShift uint
	Caches    Dual
}

// NewUnit constructs a Fetch/Decode Unit sharing the given registry and
// instruction TLB (both are safe for concurrent read-only/seqlock use).
func NewUnit(registry *grain.Registry, itlb *tlb.TLB, pageShift uint) *Unit {
	return &Unit{Registry: registry, ITLB: itlb, PageShift: pageShift}
}

// FetchNext implements fetch_next(cpu_state) per spec.md §4.1: probe the
// PC-decode cache; on miss, translate VA->PA, probe the PA-decode cache;
// on miss, read memory, resolve the grain, populate the instruction, and
// insert into both caches.
//
// In PAL mode the I-stream bypasses the ITB entirely: the PC (low bit
// stripped, it is the PAL-mode marker) is treated as a physical address,
// since PALcode runs with I-stream mapping disabled.
func (u *Unit) FetchNext(mem memiface.Memory, pc uint64, asn uint32, mode tlb.Mode, palMode bool, ptBase uint64) FetchResult {
	if palMode {
		pa := pc &^ 1
		if ins, ok := u.Caches.PA.Lookup(pa); ok {
			return FetchResult{Outcome: FetchOk, Ins: ins, VA: pc}
		}
		return u.fetchAt(mem, pc, pa)
	}

	if cachedPA, ok := u.Caches.PC.CachedPA(pc); ok {
		pa, _, hit := u.translate(mem, pc, asn, mode, ptBase)
		if hit && pa == cachedPA {
			if ins, ok := u.Caches.PC.Lookup(pc); ok {
				return FetchResult{Outcome: FetchOk, Ins: ins, VA: pc}
			}
		}
		// recorded PA stale (page remap): invalidate and fall through.
		u.Caches.PC.Invalidate(pc)
	}

	pa, fc, hit := u.translate(mem, pc, asn, mode, ptBase)
	if !hit {
		return FetchResult{Outcome: FetchTranslationFault, TlbFault: fc, VA: pc}
	}

	if ins, ok := u.Caches.PA.Lookup(pa); ok {
		u.Caches.PC.Insert(pc, ins)
		return FetchResult{Outcome: FetchOk, Ins: ins, VA: pc}
	}

	return u.fetchAt(mem, pc, pa)
}

func (u *Unit) translate(mem memiface.Memory, pc uint64, asn uint32, mode tlb.Mode, ptBase uint64) (pa uint64, fc tlb.FaultClass, hit bool) {
	return u.ITLB.Translate(mem, ptBase, pc, asn, mode, tlb.AccessExecute, u.PageShift)
}

func (u *Unit) fetchAt(mem memiface.Memory, pc, pa uint64) FetchResult {
	raw, status := mem.ReadInst32(pa)
	if status != memiface.StatusOk {
		return FetchResult{Outcome: FetchBusError, VA: pc}
	}

	id, ok := u.Registry.Resolve(raw)
	if !ok {
		return FetchResult{Outcome: FetchIllegalOpcode, VA: pc}
	}
	g := u.Registry.Grain(id)
	ins := Decode(raw, pc, pa, id, g)

	u.Caches.PC.Insert(pc, ins)
	u.Caches.PA.Insert(pa, ins)
	return FetchResult{Outcome: FetchOk, Ins: ins, VA: pc}
}

// InvalidateMemoryBarrier handles CALL_PAL IMB: both decode caches are
// fully invalidated.
func (u *Unit) InvalidateMemoryBarrier() {
	u.Caches.InvalidateAll()
}
