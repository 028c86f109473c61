package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphacore/ev6/internal/decode"
	"github.com/alphacore/ev6/internal/execute"
	"github.com/alphacore/ev6/internal/fault"
	"github.com/alphacore/ev6/internal/grain"
	"github.com/alphacore/ev6/internal/memiface"
	"github.com/alphacore/ev6/internal/pal"
	"github.com/alphacore/ev6/internal/regfile"
	"github.com/alphacore/ev6/internal/smp"
	"github.com/alphacore/ev6/internal/tlb"
)

// harness wires a single-CPU Pipeline against a flat memory with every
// virtual page identity-mapped and fully permissioned, matching the
// minimal fixture the execute-unit tests already build per unit.
type harness struct {
	pl  *Pipeline
	rf  *regfile.RegisterFile
	mem memiface.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	registry := grain.NewRegistry()
	itlb := tlb.New(tlb.RealmInstruction, tlb.PolicySRRIP)
	dtlb0 := tlb.New(tlb.RealmData0, tlb.PolicySRRIP)
	dtlb1 := tlb.New(tlb.RealmData1, tlb.PolicySRRIP)

	allPerm := tlb.PermissionSet{
		Read:    [4]bool{true, true, true, true},
		Write:   [4]bool{true, true, true, true},
		Execute: [4]bool{true, true, true, true},
	}
	for vpn := uint64(0); vpn < 4; vpn++ {
		itlb.Install(vpn, vpn, 0, true, tlb.Gran8K, allPerm, false, false, false)
		dtlb0.Install(vpn, vpn, 0, true, tlb.Gran8K, allPerm, false, false, false)
		dtlb1.Install(vpn, vpn, 0, true, tlb.Gran8K, allPerm, false, false, false)
	}

	rf := regfile.New()
	mem := memiface.NewFlat(1 << 16)

	faults := &fault.Dispatcher{}
	fetchUnit := decode.NewUnit(registry, itlb, 13)
	integerUnit := &execute.IntegerUnit{Registry: registry}
	floatUnit := &execute.FloatUnit{Registry: registry}
	memoryUnit := &execute.MemoryUnit{Registry: registry, DTLB0: dtlb0, DTLB1: dtlb1, Reservations: smp.NewReservationManager(1), CPU: 0, PageShift: 13, Faults: faults}
	branchUnit := &execute.BranchUnit{Registry: registry, Predictor: execute.NewPredictor()}
	palDispatcher := &pal.Dispatcher{}

	pl := New(0, registry, fetchUnit, integerUnit, floatUnit, memoryUnit, branchUnit,
		palDispatcher, faults, rf, smp.NewReservationManager(1), smp.NewBarrierCoordinator(), 0, nil)
	pl.ITLB, pl.DTLB0, pl.DTLB1 = itlb, dtlb0, dtlb1

	return &harness{pl: pl, rf: rf, mem: mem}
}

// encodeOperate packs an Operate-format instruction word (no literal).
func encodeOperate(opcode, ra, rb, function, rc uint32) uint32 {
	return (opcode << 26) | (ra << 21) | (rb << 16) | (function << 5) | rc
}

// encodeMemory packs a Memory-format instruction word: opcode, Ra, Rb, and
// a 16-bit signed displacement. The displacement's low 5 bits alias Rc's
// bit position but are not a register index for this format.
func encodeMemory(opcode, ra, rb uint32, disp int32) uint32 {
	return (opcode << 26) | (ra << 21) | (rb << 16) | (uint32(disp) & 0xFFFF)
}

func TestTickExecutesIntegerAddAndAdvancesPC(t *testing.T) {
	h := newHarness(t)
	h.rf.Write(1, 10)
	h.rf.Write(2, 32)

	// ADDQ R1, R2, R3 at PC 0.
	ins := encodeOperate(grain.OpcodeINTA, 1, 2, grain.FnAddQ, 3)
	h.mem.Write32(0, ins)

	h.pl.Tick(context.Background(), h.mem)

	require.Equal(t, uint64(42), h.rf.Read(3))
	require.Equal(t, uint64(4), h.rf.Hot().PC)
}

func TestTickWritebackSuppressedToR31(t *testing.T) {
	h := newHarness(t)
	h.rf.Write(1, 10)
	h.rf.Write(2, 32)

	// ADDQ R1, R2, R31 (discard).
	ins := encodeOperate(grain.OpcodeINTA, 1, 2, grain.FnAddQ, 31)
	h.mem.Write32(0, ins)

	h.pl.Tick(context.Background(), h.mem)

	require.Zero(t, h.rf.Read(31), "R31 must read zero (hardwired zero)")
}

// TestTickWritebackUsesTargetNotRawRcBits is the regression case for a
// Memory-format instruction whose low 5 raw bits (the legacy Rc field
// position) happen to read 31 even though the real writeback target is an
// ordinary register: LDQ R1, -1(R16) encodes a displacement of -1, whose
// low 5 bits are 0x1F, but the destination register is Ra=1, not R31. The
// commit path must gate on the decoded WritebackTarget, not raw&0x1F.
func TestTickWritebackUsesTargetNotRawRcBits(t *testing.T) {
	h := newHarness(t)
	h.rf.Write(16, 0x1009)
	h.mem.Write64(0x1008, 0xCAFEF00DCAFEF00D)

	ins := encodeMemory(grain.OpcodeLDQ, 1, 16, -1)
	require.Equal(t, uint32(0x1F), ins&0x1F, "setup: displacement's low 5 bits must alias the legacy Rc position")
	h.mem.Write32(0, ins)

	h.pl.Tick(context.Background(), h.mem)

	require.Equal(t, uint64(0xCAFEF00DCAFEF00D), h.rf.Read(1), "expected LDQ's value written back to R1")
	require.Zero(t, h.rf.Read(31), "R31 must remain zero: the writeback guard must not mistake raw&0x1F for the target")
}

func TestTickCallPalHaltSetsHaltCode(t *testing.T) {
	h := newHarness(t)
	// CALL_PAL HALT: opcode 0, function 0.
	h.mem.Write32(0, grain.OpcodeCallPal<<26)

	result := h.pl.Tick(context.Background(), h.mem)

	require.True(t, result.Halt, "expected Halt result for CALL_PAL HALT")
	require.NotZero(t, h.rf.Hot().HaltCode, "expected HaltCode to be set after halt")
}

func TestTickCallPalNonHaltEntersPALMode(t *testing.T) {
	h := newHarness(t)
	h.rf.SetCold(regfile.ColdIPRs{PalBase: 0x1000})
	// CALL_PAL with a non-zero, non-HALT function code.
	h.mem.Write32(0, grain.OpcodeCallPal<<26|0x55)

	h.pl.Tick(context.Background(), h.mem)

	require.True(t, h.rf.Hot().PalMode, "expected PAL mode to be entered")
	require.NotZero(t, h.rf.Hot().PC&1, "expected PAL-mode PC to have its low bit set")
}

func TestTickIllegalOpcodeDeliversToPAL(t *testing.T) {
	h := newHarness(t)
	h.rf.SetCold(regfile.ColdIPRs{PalBase: 0x2000})
	// No grain covers opcode 0x07, one of the reserved OPC07 slots.
	h.mem.Write32(0, 0x07<<26)

	h.pl.Tick(context.Background(), h.mem)

	require.True(t, h.rf.Hot().PalMode, "expected illegal-opcode fault to route into PAL mode")
}

func TestTickFloatFaultsWhenFPDisabled(t *testing.T) {
	h := newHarness(t)
	h.rf.SetCold(regfile.ColdIPRs{PalBase: 0x3000})
	hot := h.rf.Hot()
	hot.FPEnabled = false
	h.rf.SetHot(hot)

	// ADDF F1, F2, F3 (FLTV family, opcode 0x15).
	ins := encodeOperate(grain.OpcodeFLTV, 1, 2, grain.FnAddF, 3)
	h.mem.Write32(0, ins)

	h.pl.Tick(context.Background(), h.mem)

	require.True(t, h.rf.Hot().PalMode, "expected FEN fault to route into PAL mode when FP disabled")
}

func TestTickREIRestoresContextAndBreaksReservation(t *testing.T) {
	h := newHarness(t)
	h.rf.SetCold(regfile.ColdIPRs{PalBase: 0x4000})
	h.pl.Reservations.Set(0, 0x100)

	h.rf.SaveContext(0)
	h.rf.HWPCB.SavedPC = 0x800
	h.rf.EnterPalMode(false)

	h.mem.Write32(0x800, grain.OpcodeHWREI<<26)
	hot := h.rf.Hot()
	hot.PC = 0x800
	h.rf.SetHot(hot)

	h.pl.Tick(context.Background(), h.mem)

	require.Equal(t, uint64(0x800), h.rf.Hot().PC, "expected PC restored from HWPCB")
	require.False(t, h.pl.Reservations.Valid(0), "expected REI to break the CPU's reservation")
}

func TestInvalidateMemoryBarrierClearsDecodeCaches(t *testing.T) {
	h := newHarness(t)
	ins := encodeOperate(grain.OpcodeINTA, 1, 2, grain.FnAddQ, 3)
	h.mem.Write32(0, ins)
	h.pl.Fetch.FetchNext(h.mem, 0, 0, tlb.ModeKernel, false, 0)

	h.pl.InvalidateMemoryBarrier()

	// Overwrite memory with a different instruction at the same address;
	// without invalidation the stale cached decode would be served instead.
	ins2 := encodeOperate(grain.OpcodeINTA, 1, 2, grain.FnSubQ, 3)
	h.mem.Write32(0, ins2)
	fr := h.pl.Fetch.FetchNext(h.mem, 0, 0, tlb.ModeKernel, false, 0)
	require.Equal(t, decode.FetchOk, fr.Outcome, "fetch after IMB failed")
}

// TestTickDTBMissPALFillRetrySucceeds drives the full miss->PAL->fill->
// retry loop with real PALcode in guest memory: a load misses (the page
// tables are empty, so the walk double-misses), the pipeline vectors into
// PAL, the PAL routine installs the translation through the DTB_TAG/
// DTB_PTE registers and returns, and the retried load completes.
func TestTickDTBMissPALFillRetrySucceeds(t *testing.T) {
	h := newHarness(t)
	const palBase = 0x2000
	h.rf.SetCold(regfile.ColdIPRs{PalBase: palBase})

	// The data page: VA 0xA000 (vpn 5, odd -> DTLB1), mapped to PFN 5.
	h.mem.Write32(0xA000, 0x12345678)
	ptePFN5 := uint64(5)<<32 | 1<<5 | 1<<9 | 1<<4 | 1 // KRE|KWE, ASM, valid
	h.rf.Write(10, ptePFN5)
	h.rf.Write(16, 0xA000)

	// The faulting load at 0x1000.
	h.mem.Write32(0x1000, encodeMemory(grain.OpcodeLDQ, 1, 16, 0))
	hot := h.rf.Hot()
	hot.PC = 0x1000
	h.rf.SetHot(hot)
	h.mem.Write64(0xA000&^7, 0x12345678)

	// PALcode at the DTB_MISS_DOUBLE vector (PAL_BASE + 0x280): stage the
	// faulting VA (packaged into R16) as the TB tag, write the PTE from
	// R10, return.
	vector := uint64(palBase + 0x280)
	h.mem.Write32(vector, grain.OpcodeHWMTPR<<26|uint32(31)<<21|uint32(16)<<16|0x200)
	h.mem.Write32(vector+4, grain.OpcodeHWMTPR<<26|uint32(31)<<21|uint32(10)<<16|0x201)
	h.mem.Write32(vector+8, grain.OpcodeHWREI<<26)

	ctx := context.Background()
	h.pl.Tick(ctx, h.mem) // LDQ faults, enters PAL
	require.True(t, h.rf.Hot().PalMode, "expected PAL mode after the miss")
	require.Equal(t, vector|1, h.rf.Hot().PC)
	require.Equal(t, uint64(0xA000), h.rf.Read(16), "R16 must carry the fault VA into PAL")
	require.Zero(t, h.rf.Read(1), "precise fault: the load must not have written R1")

	h.pl.Tick(ctx, h.mem) // HW_MTPR DTB_TAG
	h.pl.Tick(ctx, h.mem) // HW_MTPR DTB_PTE (installs the translation)
	h.pl.Tick(ctx, h.mem) // HW_REI
	require.False(t, h.rf.Hot().PalMode, "expected PAL mode exited")
	require.Equal(t, uint64(0x1000), h.rf.Hot().PC, "REI must retry the faulting load")

	h.pl.Tick(ctx, h.mem) // retried LDQ
	require.Equal(t, uint64(0x12345678), h.rf.Read(1))
	require.Equal(t, uint64(0x1004), h.rf.Hot().PC)
}

func TestTickPalReservedOpcodeFaultsOutsidePalMode(t *testing.T) {
	h := newHarness(t)
	h.rf.SetCold(regfile.ColdIPRs{PalBase: 0x2000})
	h.mem.Write32(0, grain.OpcodeHWLD<<26|uint32(1)<<21|uint32(16)<<16)

	h.pl.Tick(context.Background(), h.mem)

	require.True(t, h.rf.Hot().PalMode, "HW_LD outside PAL mode must raise OPCDEC")
	require.Equal(t, uint64(0x2000+0x500)|1, h.rf.Hot().PC, "expected the OPCDEC vector")
}

func TestTickHWMTPRTBIAInvalidatesLocalTLBs(t *testing.T) {
	h := newHarness(t)
	h.rf.EnterPalMode(false)
	hot := h.rf.Hot()
	hot.PC = 0x401 // PAL-mode PC, physical fetch at 0x400
	h.rf.SetHot(hot)
	h.mem.Write32(0x400, grain.OpcodeHWMTPR<<26|uint32(31)<<21|uint32(31)<<16|0x213)

	_, _, hit := h.pl.DTLB0.Lookup(0, 0, tlb.ModeKernel, tlb.AccessRead)
	require.True(t, hit, "setup: expected a resident DTLB entry")

	h.pl.Tick(context.Background(), h.mem)

	_, _, hit = h.pl.DTLB0.Lookup(0, 0, tlb.ModeKernel, tlb.AccessRead)
	require.False(t, hit, "TBIA write must stale every data translation")
	_, _, hit = h.pl.ITLB.Lookup(0, 0, tlb.ModeKernel, tlb.AccessExecute)
	require.False(t, hit, "TBIA write must stale every instruction translation")
}

func TestTickAdvancesCycleCounter(t *testing.T) {
	h := newHarness(t)
	h.rf.Write(1, 1)
	h.rf.Write(2, 2)
	ins := encodeOperate(grain.OpcodeINTA, 1, 2, grain.FnAddQ, 3)
	h.mem.Write32(0, ins)
	h.mem.Write32(4, ins)

	ctx := context.Background()
	h.pl.Tick(ctx, h.mem)
	h.pl.Tick(ctx, h.mem)

	require.Equal(t, uint64(2), h.rf.Hot().CycleCtr, "one cycle per retired instruction")
}

func TestTickConditionalBranchTakenRedirects(t *testing.T) {
	h := newHarness(t)
	h.rf.Write(1, ^uint64(0)) // negative
	// BLT R1, +4 instructions at PC 0.
	h.mem.Write32(0, grain.OpcodeBLT<<26|uint32(1)<<21|4)

	h.pl.Tick(context.Background(), h.mem)

	require.Equal(t, uint64(4+4*4), h.rf.Hot().PC, "expected PC at branch target")
}

// TestTickCallPalIMBInvalidatesDecodeCaches is the code-modification
// scenario: a cached decode at a PC whose backing memory is rewritten
// (device DMA) must be unreachable after CALL_PAL IMB.
func TestTickCallPalIMBInvalidatesDecodeCaches(t *testing.T) {
	h := newHarness(t)
	h.rf.Write(1, 10)
	h.rf.Write(2, 32)

	// Warm the decode caches with ADDQ at PC 0x2000, then execute IMB.
	h.mem.Write32(0x2000, encodeOperate(grain.OpcodeINTA, 1, 2, grain.FnAddQ, 3))
	hot := h.rf.Hot()
	hot.PC = 0x2000
	h.rf.SetHot(hot)
	ctx := context.Background()
	h.pl.Tick(ctx, h.mem)
	require.Equal(t, uint64(42), h.rf.Read(3))

	h.mem.Write32(0x2004, uint32(grain.OpcodeCallPal<<26|execute.PalFunctionIMB))
	h.pl.Tick(ctx, h.mem)
	require.False(t, h.rf.Hot().PalMode, "IMB completes in the core, not in PALcode")

	// DMA overwrites the old instruction; branch back and re-execute.
	h.mem.Write32(0x2000, encodeOperate(grain.OpcodeINTA, 1, 2, grain.FnSubQ, 3))
	hot = h.rf.Hot()
	hot.PC = 0x2000
	h.rf.SetHot(hot)
	h.pl.Tick(ctx, h.mem)
	require.Equal(t, int64(-22), int64(h.rf.Read(3)), "stale ADDQ decode must not survive IMB")
}

// TestTickFetchFOEVectorsToFaultOnExecute covers the fetch-side FOE path:
// an executable page whose PTE carries fault-on-execute must vector
// through the DTB_MISS_SINGLE entry with the fault-on class (0x200), not
// the ITB_MISS (0x300) or ITB_ACV (0x380) vectors.
func TestTickFetchFOEVectorsToFaultOnExecute(t *testing.T) {
	h := newHarness(t)
	h.rf.SetCold(regfile.ColdIPRs{PalBase: 0x2000})

	allPerm := tlb.PermissionSet{
		Read:    [4]bool{true, true, true, true},
		Write:   [4]bool{true, true, true, true},
		Execute: [4]bool{true, true, true, true},
	}
	h.pl.ITLB.Install(5, 5, 0, true, tlb.Gran8K, allPerm, false, false, true) // FOE
	hot := h.rf.Hot()
	hot.PC = 5 << 13
	h.rf.SetHot(hot)

	result := h.pl.Tick(context.Background(), h.mem)

	require.True(t, result.FaultDispatched)
	require.Equal(t, fault.ClassFaultOnExecute, result.FaultEvent.Class)
	require.Equal(t, uint64(0x2000+0x200)|1, h.rf.Hot().PC, "FOE must use the fault-on vector, not an ITB one")
}
