package tlb

import "github.com/alphacore/ev6/internal/memiface"

// PTE is the in-memory page-table-entry format, abstracted behind this
// struct rather than exposing the raw bit layout to callers; Decode does
// the architecture-specific unpacking.
type PTE struct {
	Valid bool
	PFN   uint64
	ASM   bool // address-space-match: a global entry, ignores ASN
	FOR   bool
	FOW   bool
	FOE   bool
	KRE   bool
	ERE   bool
	SRE   bool
	URE   bool
	KWE   bool
	EWE   bool
	SWE   bool
	UWE   bool
}

// DecodePTE unpacks the Alpha PTE bit layout: bit 0 valid, bits [1:4] fault
// and ASM bits, bits [5:12] per-mode permission bits, bits [32:63] PFN.
func DecodePTE(raw uint64) PTE {
	return PTE{
		Valid: raw&1 != 0,
		FOR:   raw&(1<<1) != 0,
		FOW:   raw&(1<<2) != 0,
		FOE:   raw&(1<<3) != 0,
		ASM:   raw&(1<<4) != 0,
		KRE:   raw&(1<<5) != 0,
		ERE:   raw&(1<<6) != 0,
		SRE:   raw&(1<<7) != 0,
		URE:   raw&(1<<8) != 0,
		KWE:   raw&(1<<9) != 0,
		EWE:   raw&(1<<10) != 0,
		SWE:   raw&(1<<11) != 0,
		UWE:   raw&(1<<12) != 0,
		PFN:   raw >> 32,
	}
}

// PermissionsOf expands a PTE's per-mode permission bits into the lookup
// form; executability follows readability, matching the PTE format (there
// is no separate execute bit, FOE gates execution).
func PermissionsOf(p PTE) PermissionSet {
	return PermissionSet{
		Read:    [4]bool{p.KRE, p.ERE, p.SRE, p.URE},
		Write:   [4]bool{p.KWE, p.EWE, p.SWE, p.UWE},
		Execute: [4]bool{p.KRE, p.ERE, p.SRE, p.URE},
	}
}

// WalkResult reports the outcome of a 3-level page-table walk.
type WalkResult struct {
	PFN   uint64
	Perm  PermissionSet
	Global bool
	FaultOR, FaultOW, FaultOE bool
	Fault FaultClass
}

// Walk performs the 3-level Alpha page-table walk described in spec.md
// §4.2: PTE0 indexes the top level at ptBase, PTE1 indexes the level found
// at PTE0.PFN, PTE2 is the leaf.
func Walk(mem memiface.Memory, ptBase uint64, vpn uint64, pageShift uint) WalkResult {
	const entriesPerLevel = 1024
	const levelIndexBits = 10

	l0 := (vpn >> (2 * levelIndexBits)) & (entriesPerLevel - 1)
	l1 := (vpn >> levelIndexBits) & (entriesPerLevel - 1)
	l2 := vpn & (entriesPerLevel - 1)

	raw0, status := mem.Read64(ptBase + l0*8)
	if status != memiface.StatusOk {
		return WalkResult{Fault: FaultDTBMissDouble}
	}
	pte0 := DecodePTE(raw0)
	if !pte0.Valid {
		return WalkResult{Fault: FaultDTBMissDouble}
	}

	raw1, status := mem.Read64(pte0.PFN<<pageShift + l1*8)
	if status != memiface.StatusOk {
		return WalkResult{Fault: FaultDTBMissDouble}
	}
	pte1 := DecodePTE(raw1)
	if !pte1.Valid {
		return WalkResult{Fault: FaultDTBMissDouble}
	}

	raw2, status := mem.Read64(pte1.PFN<<pageShift + l2*8)
	if status != memiface.StatusOk {
		return WalkResult{Fault: FaultDTBMissDouble}
	}
	pte2 := DecodePTE(raw2)
	if !pte2.Valid {
		return WalkResult{Fault: FaultDTBMissSingle}
	}

	return WalkResult{
		PFN:     pte2.PFN,
		Perm:    PermissionsOf(pte2),
		Global:  pte2.ASM,
		FaultOR: pte2.FOR,
		FaultOW: pte2.FOW,
		FaultOE: pte2.FOE,
		Fault:   FaultNone,
	}
}

// Translate resolves va through the TLB, walking the page tables and
// installing the translation on a miss, per the lookup algorithm's final
// step (miss -> invoke page-walk). ACVs and fault-on-* bits from a hit are
// reported as-is; a walk that reaches an invalid leaf reports the realm's
// single-miss class (PAL fills it), an invalid upper level the double-miss
// class.
func (t *TLB) Translate(mem memiface.Memory, ptBase, va uint64, asn uint32, mode Mode, kind AccessKind, pageShift uint) (pa uint64, fc FaultClass, ok bool) {
	pa, fc, ok = t.Lookup(va, asn, mode, kind)
	if ok {
		return pa, FaultNone, true
	}
	if fc != FaultITBMiss && fc != FaultDTBMissSingle {
		// ACV or fault-on-* from a resident entry: the walk cannot help.
		return 0, fc, false
	}

	vpn := va >> pageShift
	w := Walk(mem, ptBase, vpn, pageShift)
	if w.Fault != FaultNone {
		return 0, t.realmFault(w.Fault), false
	}

	gran := GranFromShift(pageShift)
	t.Install(vpn, w.PFN, asn, w.Global, gran, w.Perm, w.FaultOR, w.FaultOW, w.FaultOE)

	switch {
	case kind == AccessRead && w.FaultOR:
		return 0, FaultOnRead, false
	case kind == AccessWrite && w.FaultOW:
		return 0, FaultOnWrite, false
	case kind == AccessExecute && w.FaultOE:
		return 0, t.realmFault(FaultOnExecute), false
	}
	if !w.Perm.allows(kind, mode) {
		if t.realm == RealmInstruction {
			return 0, FaultITBAcv, false
		}
		return 0, FaultDTBAcv, false
	}
	return w.PFN<<pageShift | (va & ((1 << pageShift) - 1)), FaultNone, true
}

// realmFault maps a data-side walk fault onto the instruction-side classes
// when this TLB serves the I-stream: walk misses are reported as ITB_MISS,
// fault-on-execute keeps its own class, and anything else is ITB_ACV; never
// as DTB classes.
func (t *TLB) realmFault(fc FaultClass) FaultClass {
	if t.realm != RealmInstruction {
		return fc
	}
	switch fc {
	case FaultDTBMissSingle, FaultDTBMissDouble:
		return FaultITBMiss
	case FaultOnExecute:
		return FaultOnExecute
	default:
		return FaultITBAcv
	}
}
