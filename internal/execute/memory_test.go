package execute

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphacore/ev6/internal/decode"
	"github.com/alphacore/ev6/internal/grain"
	"github.com/alphacore/ev6/internal/memiface"
	"github.com/alphacore/ev6/internal/regfile"
	"github.com/alphacore/ev6/internal/smp"
	"github.com/alphacore/ev6/internal/tlb"
)

// newMemHarness builds a MemoryUnit over a flat memory with VA page 0
// identity-mapped in both data banks.
func newMemHarness(t *testing.T) (*MemoryUnit, *memiface.Flat, *regfile.RegisterFile, *grain.Registry) {
	t.Helper()
	reg := grain.NewRegistry()
	mem := memiface.NewFlat(1 << 16)
	dtlb0 := tlb.New(tlb.RealmData0, tlb.PolicySRRIP)
	dtlb1 := tlb.New(tlb.RealmData1, tlb.PolicySRRIP)
	perm := tlb.PermissionSet{
		Read: [4]bool{true, true, true, true}, Write: [4]bool{true, true, true, true}, Execute: [4]bool{true, true, true, true},
	}
	dtlb0.Install(0, 0, 0, true, tlb.Gran8K, perm, false, false, false)
	dtlb1.Install(0, 0, 0, true, tlb.Gran8K, perm, false, false, false)

	u := &MemoryUnit{Registry: reg, DTLB0: dtlb0, DTLB1: dtlb1, Reservations: smp.NewReservationManager(1), CPU: 0, PageShift: 13}
	return u, mem, regfile.New(), reg
}

func encodeMem(opcode, ra, rb uint32, disp int32) uint32 {
	return opcode<<26 | ra<<21 | rb<<16 | uint32(disp)&0xFFFF
}

func execMem(t *testing.T, u *MemoryUnit, mem memiface.Memory, rf *regfile.RegisterFile, reg *grain.Registry, raw uint32) BoxResult {
	t.Helper()
	id, ok := reg.Resolve(raw)
	require.True(t, ok, "undecodable instruction %#x", raw)
	g := reg.Grain(id)
	ins := decode.Decode(raw, 0, 0, id, g)
	return u.Execute(mem, rf, ins, tlb.ModeKernel)
}

func TestByteLoadStoreRoundTrip(t *testing.T) {
	u, mem, rf, reg := newMemHarness(t)
	rf.Write(16, 0x105) // deliberately not word-aligned: bytes have no alignment rule
	rf.Write(1, 0xAB)

	execMem(t, u, mem, rf, reg, encodeMem(grain.OpcodeSTB, 1, 16, 0))
	result := execMem(t, u, mem, rf, reg, encodeMem(grain.OpcodeLDBU, 2, 16, 0))
	require.True(t, result.NeedsWriteback)
	require.Equal(t, uint64(0xAB), result.Payload, "LDBU zero-extends")

	// Neighboring bytes of the containing word must be untouched.
	word, status := mem.Read32(0x104)
	require.Equal(t, memiface.StatusOk, status)
	require.Equal(t, uint32(0xAB00), word)
}

func TestWordLoadStoreRoundTrip(t *testing.T) {
	u, mem, rf, reg := newMemHarness(t)
	rf.Write(16, 0x106)
	rf.Write(1, 0xBEEF)

	execMem(t, u, mem, rf, reg, encodeMem(grain.OpcodeSTW, 1, 16, 0))
	result := execMem(t, u, mem, rf, reg, encodeMem(grain.OpcodeLDWU, 2, 16, 0))
	require.Equal(t, uint64(0xBEEF), result.Payload)
}

func TestWordLoadMisalignedFaults(t *testing.T) {
	u, mem, rf, reg := newMemHarness(t)
	rf.Write(16, 0x107) // odd address

	result := execMem(t, u, mem, rf, reg, encodeMem(grain.OpcodeLDWU, 2, 16, 0))
	require.True(t, result.FaultDispatched)
}

func TestLDQUTruncatesEffectiveAddress(t *testing.T) {
	u, mem, rf, reg := newMemHarness(t)
	require.Equal(t, memiface.StatusOk, mem.Write64(0x100, 0x1122334455667788))
	rf.Write(16, 0x103) // misaligned; LDQ_U must clear the low 3 bits

	result := execMem(t, u, mem, rf, reg, encodeMem(grain.OpcodeLDQ_U, 2, 16, 0))
	require.Equal(t, uint64(0x1122334455667788), result.Payload)
}

func TestRCReadsAndClearsIntrFlag(t *testing.T) {
	u, mem, rf, reg := newMemHarness(t)
	hot := rf.Hot()
	hot.IntrFlag = true
	rf.SetHot(hot)

	raw := grain.OpcodeMISC<<26 | uint32(1)<<21 | grain.FnRC
	result := execMem(t, u, mem, rf, reg, raw)
	require.Equal(t, uint64(1), result.Payload, "RC returns the prior flag")
	require.False(t, rf.Hot().IntrFlag, "RC clears the flag")

	raw = grain.OpcodeMISC<<26 | uint32(1)<<21 | grain.FnRS
	result = execMem(t, u, mem, rf, reg, raw)
	require.Zero(t, result.Payload, "RS returns the prior (cleared) flag")
	require.True(t, rf.Hot().IntrFlag, "RS sets the flag")
}

func TestRPCCSplitsCounterAndOffset(t *testing.T) {
	u, mem, rf, reg := newMemHarness(t)
	hot := rf.Hot()
	hot.CycleCtr = 0x1_2345_6789 // over 32 bits: the upper part must not leak
	rf.SetHot(hot)
	cold := rf.Cold()
	cold.CycleOffset = 0x77
	rf.SetCold(cold)

	raw := grain.OpcodeMISC<<26 | uint32(1)<<21 | grain.FnRPCC
	result := execMem(t, u, mem, rf, reg, raw)
	require.Equal(t, uint64(0x77<<32|0x2345_6789), result.Payload)
}

func TestHWLoadStoreBypassTranslation(t *testing.T) {
	u, mem, rf, reg := newMemHarness(t)
	// No TLB entry covers this address range; HW_ST/HW_LD must not care.
	rf.Write(16, 0x8000)
	rf.Write(1, 0xCAFED00D)

	raw := grain.OpcodeHWST<<26 | uint32(1)<<21 | uint32(16)<<16
	result := execMem(t, u, mem, rf, reg, raw)
	require.False(t, result.FaultDispatched)

	raw = grain.OpcodeHWLD<<26 | uint32(2)<<21 | uint32(16)<<16
	result = execMem(t, u, mem, rf, reg, raw)
	require.Equal(t, uint64(0xCAFED00D), result.Payload)
}

func TestStoreBreaksPeerReservation(t *testing.T) {
	u, mem, rf, reg := newMemHarness(t)
	u.Reservations = smp.NewReservationManager(2)
	u.Reservations.Set(1, 0x100) // CPU 1 holds a reservation on the line

	rf.Write(16, 0x108)
	rf.Write(1, 1)
	execMem(t, u, mem, rf, reg, encodeMem(grain.OpcodeSTQ, 1, 16, 0))

	require.False(t, u.Reservations.Valid(1), "a plain store to the line must break the peer's reservation")
}
