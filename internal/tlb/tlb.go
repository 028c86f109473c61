// Package tlb implements the Translation Unit: a software-modeled dual TLB
// (split instruction/data, with two data banks for parallelism) with ASN
// tagging, lazy epoch-based invalidation, pluggable replacement policy, and
// a 3-level page-table walk.
package tlb

import (
	"sync"
	"sync/atomic"
)

// Realm distinguishes the instruction-side TLB from the data-side TLBs.
type Realm int

const (
	RealmInstruction Realm = iota
	RealmData0
	RealmData1
)

// AccessKind is the kind of access being translated.
type AccessKind int

const (
	AccessRead AccessKind = iota
	AccessWrite
	AccessExecute
)

// Mode mirrors regfile.CurrentMode without importing it, to keep this
// package free of a dependency cycle; the pipeline converts at the call
// site.
type Mode uint8

const (
	ModeKernel Mode = iota
	ModeExecutive
	ModeSupervisor
	ModeUser
)

// Granularity identifies one of Alpha's four page-size classes.
type Granularity int

const (
	Gran4K Granularity = iota
	Gran8K
	Gran64K
	Gran512K
	numGranularities
)

// PageShift returns the log2 page size for a granularity class.
func (g Granularity) PageShift() uint {
	switch g {
	case Gran4K:
		return 12
	case Gran8K:
		return 13
	case Gran64K:
		return 16
	case Gran512K:
		return 19
	default:
		return 12
	}
}

// GranFromShift maps a log2 page size back onto its granularity class,
// defaulting to 8K for anything unrecognized.
func GranFromShift(shift uint) Granularity {
	switch shift {
	case 12:
		return Gran4K
	case 16:
		return Gran64K
	case 19:
		return Gran512K
	default:
		return Gran8K
	}
}

// FaultClass is returned when translation does not produce a physical
// address.
type FaultClass int

const (
	FaultNone FaultClass = iota
	FaultITBMiss
	FaultITBAcv
	FaultDTBMissSingle
	FaultDTBMissDouble
	FaultDTBAcv
	FaultOnRead
	FaultOnWrite
	FaultOnExecute
)

const numWays = 4
const numShards = 64
const cacheLineSize = 64

// TranslationEntry is one TLB slot.
type TranslationEntry struct {
	Valid   bool
	VPN     uint64
	PFN     uint64
	ASN     uint32
	Global  bool
	Gran    Granularity
	Perm    PermissionSet
	FaultOR bool
	FaultOW bool
	FaultOE bool

	globalEpoch uint64
	asnEpoch    uint64
	rrpv        uint8 // SRRIP re-reference prediction value, 2 bits used
}

// PermissionSet holds read/write/execute permission bits per current mode.
type PermissionSet struct {
	Read    [4]bool
	Write   [4]bool
	Execute [4]bool
}

func (p PermissionSet) allows(kind AccessKind, mode Mode) bool {
	switch kind {
	case AccessRead:
		return p.Read[mode]
	case AccessWrite:
		return p.Write[mode]
	case AccessExecute:
		return p.Execute[mode]
	default:
		return false
	}
}

// Policy selects the replacement-policy variant.
type Policy int

const (
	PolicySRRIP Policy = iota
	PolicyCLOCK
	PolicyRandom
)

type bucket struct {
	mu  sync.Mutex
	seq uint64 // seqlock sequence; even = stable, odd = write in progress
	way [numWays]TranslationEntry
	clk int // CLOCK hand, used only when Policy == PolicyCLOCK
}

// TLB is one realm's translation buffer for one CPU. Buckets are sharded
// per granularity class, since a virtual address indexes a different VPN
// under each page size.
type TLB struct {
	realm  Realm
	policy Policy

	shards [numGranularities][numShards]bucket

	// coverage counts live installs per granularity class; Lookup skips
	// probing a class that never had an entry. The counter only grows
	// (a stale positive costs one extra probe, never a wrong result).
	coverage [numGranularities]atomic.Int64

	globalEpoch atomic.Uint64
	asnEpoch    sync.Map // map[uint32]*atomic.Uint64

	rng uint32 // xorshift state for PolicyRandom, single-writer per CPU
}

// New constructs an empty TLB for the given realm.
func New(realm Realm, policy Policy) *TLB {
	t := &TLB{realm: realm, policy: policy, rng: 0x9E3779B9}
	t.globalEpoch.Store(1)
	return t
}

func (t *TLB) asnEpochCounter(asn uint32) *atomic.Uint64 {
	v, _ := t.asnEpoch.LoadOrStore(asn, new(atomic.Uint64))
	c := v.(*atomic.Uint64)
	if c.Load() == 0 {
		c.Store(1)
	}
	return c
}

func shardIndex(vpn uint64) int {
	return int(vpn % numShards)
}

// Lookup probes the TLB for va under asn/mode/kind, trying every
// granularity class whose coverage counter indicates at least one entry.
// It returns the physical address on hit, or a fault classification on
// miss/violation. A miss reports the realm's single-miss class; callers
// that walk page tables (Translate) refine it.
func (t *TLB) Lookup(va uint64, asn uint32, mode Mode, kind AccessKind) (pa uint64, fc FaultClass, hit bool) {
	curGlobal := t.globalEpoch.Load()
	curASN := t.asnEpochCounter(asn).Load()

	for gran := Granularity(0); gran < numGranularities; gran++ {
		if t.coverage[gran].Load() == 0 {
			continue
		}
		shift := gran.PageShift()
		vpn := va >> shift
		b := &t.shards[gran][shardIndex(vpn)]

		for attempt := 0; attempt < 4; attempt++ {
			seq1 := atomic.LoadUint64(&b.seq)
			if seq1%2 == 1 {
				continue // writer in flight, retry
			}
			entries := b.way // struct copy, cheap: fixed-size array of small structs
			seq2 := atomic.LoadUint64(&b.seq)
			if seq1 != seq2 {
				continue // changed mid-read, retry
			}
			for i := range entries {
				e := &entries[i]
				if !e.Valid || e.Gran != gran {
					continue
				}
				if e.globalEpoch != curGlobal {
					continue
				}
				if !e.Global && e.asnEpoch != curASN {
					continue
				}
				if e.VPN != vpn {
					continue
				}
				if !e.Global && e.ASN != asn {
					continue
				}
				if faultBit(e, kind) {
					return 0, faultOnKind(kind), false
				}
				if !e.Perm.allows(kind, mode) {
					if t.realm == RealmInstruction {
						return 0, FaultITBAcv, false
					}
					return 0, FaultDTBAcv, false
				}
				t.touchHit(b, i)
				return e.PFN<<shift | (va & ((1 << shift) - 1)), FaultNone, true
			}
			break
		}
	}
	if t.realm == RealmInstruction {
		return 0, FaultITBMiss, false
	}
	return 0, FaultDTBMissSingle, false
}

func faultBit(e *TranslationEntry, kind AccessKind) bool {
	switch kind {
	case AccessRead:
		return e.FaultOR
	case AccessWrite:
		return e.FaultOW
	case AccessExecute:
		return e.FaultOE
	default:
		return false
	}
}

func faultOnKind(kind AccessKind) FaultClass {
	switch kind {
	case AccessRead:
		return FaultOnRead
	case AccessWrite:
		return FaultOnWrite
	default:
		return FaultOnExecute
	}
}

// touchHit applies the replacement policy's on-hit update. Readers already
// hold no lock (seqlock fast path), so this takes the bucket's writer lock
// briefly; this is rare enough (one per hit) not to matter for the access
// pattern this core exercises, and keeps the invariant that only lock
// holders mutate way[].
func (t *TLB) touchHit(b *bucket, way int) {
	if t.policy != PolicySRRIP {
		return
	}
	b.mu.Lock()
	atomic.AddUint64(&b.seq, 1)
	b.way[way].rrpv = 0
	atomic.AddUint64(&b.seq, 1)
	b.mu.Unlock()
}

// Install inserts a freshly-walked translation, selecting a victim way per
// the configured replacement policy. vpn is the virtual page number under
// gran's page size.
func (t *TLB) Install(vpn, pfn uint64, asn uint32, global bool, gran Granularity, perm PermissionSet, faultOR, faultOW, faultOE bool) {
	b := &t.shards[gran][shardIndex(vpn)]
	b.mu.Lock()
	defer b.mu.Unlock()

	victim := t.selectVictim(b)

	atomic.AddUint64(&b.seq, 1) // enter write window (odd)
	b.way[victim] = TranslationEntry{
		Valid:       true,
		VPN:         vpn,
		PFN:         pfn,
		ASN:         asn,
		Global:      global,
		Gran:        gran,
		Perm:        perm,
		FaultOR:     faultOR,
		FaultOW:     faultOW,
		FaultOE:     faultOE,
		globalEpoch: t.globalEpoch.Load(),
		asnEpoch:    t.asnEpochCounter(asn).Load(),
		rrpv:        3,
	}
	atomic.AddUint64(&b.seq, 1) // leave write window (even)

	t.coverage[gran].Add(1)
}

func (t *TLB) selectVictim(b *bucket) int {
	switch t.policy {
	case PolicyCLOCK:
		v := b.clk
		b.clk = (b.clk + 1) % numWays
		return v
	case PolicyRandom:
		t.rng ^= t.rng << 13
		t.rng ^= t.rng >> 17
		t.rng ^= t.rng << 5
		return int(t.rng % numWays)
	default: // SRRIP
		for {
			for i := range b.way {
				if !b.way[i].Valid {
					return i
				}
			}
			for i := range b.way {
				if b.way[i].rrpv == 3 {
					return i
				}
			}
			for i := range b.way {
				b.way[i].rrpv++
				if b.way[i].rrpv > 3 {
					b.way[i].rrpv = 3
				}
			}
		}
	}
}

// InvalidateAll bumps the global epoch (TBIA): every entry becomes stale
// without scanning.
func (t *TLB) InvalidateAll() {
	t.globalEpoch.Add(1)
}

// InvalidateASN bumps one ASN's epoch (TBIAP): only non-global entries
// tagged with that ASN become stale.
func (t *TLB) InvalidateASN(asn uint32) {
	t.asnEpochCounter(asn).Add(1)
}

// InvalidateVA explicitly scans each granularity's bucket covering va and
// invalidates any matching entry (TBIS), regardless of ASN.
func (t *TLB) InvalidateVA(va uint64) {
	for gran := Granularity(0); gran < numGranularities; gran++ {
		if t.coverage[gran].Load() == 0 {
			continue
		}
		vpn := va >> gran.PageShift()
		b := &t.shards[gran][shardIndex(vpn)]
		b.mu.Lock()
		atomic.AddUint64(&b.seq, 1)
		for i := range b.way {
			if b.way[i].Valid && b.way[i].Gran == gran && b.way[i].VPN == vpn {
				b.way[i].Valid = false
			}
		}
		atomic.AddUint64(&b.seq, 1)
		b.mu.Unlock()
	}
}

// CacheLineAligned truncates an address to its cache-line base, the
// granularity the Reservation Manager uses.
func CacheLineAligned(pa uint64) uint64 {
	return pa &^ (cacheLineSize - 1)
}
