package pal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphacore/ev6/internal/regfile"
)

// TestCallPalThenReiRoundTripsToInstructionAfterCall exercises a genuine
// EnterCallPal -> Return round trip: the HWPCB must save the PC of the
// instruction following the CALL_PAL, not the CALL_PAL's own PC, or REI
// would loop re-executing the CALL_PAL forever.
func TestCallPalThenReiRoundTripsToInstructionAfterCall(t *testing.T) {
	rf := regfile.New()
	rf.WriteIPR(regfile.IprPalBase, 0x20000)
	hot := rf.Hot()
	hot.PC = 0x10000
	hot.CM = regfile.ModeUser
	hot.IPL = 2
	rf.SetHot(hot)

	d := &Dispatcher{}
	entry := d.EnterCallPal(rf, 0x83) // CALL_PAL function code, arbitrary

	require.Equal(t, uint64(0x20000+0x83<<6)|1, entry.NewPC)
	require.True(t, rf.Hot().PalMode, "expected PAL mode entered")
	require.Equal(t, uint64(0x10004), rf.HWPCB.SavedPC, "HWPCB must save CALL_PAL.PC+4, not CALL_PAL.PC itself")

	out := d.Return(rf)

	require.Equal(t, uint64(0x10004), out.NewPC, "REI must resume after the CALL_PAL, not re-execute it")
	require.False(t, rf.Hot().PalMode, "expected PAL mode cleared after REI")
	require.Equal(t, regfile.ModeUser, rf.Hot().CM, "expected caller's CM restored")
	require.Equal(t, uint8(2), rf.Hot().IPL, "expected caller's IPL restored")
}

// TestEnterCallPalSavesShadowAndASN confirms SaveContext captures the
// shadow registers and ASN at CALL_PAL time, not just the PC/PS pair.
func TestEnterCallPalSavesShadowAndASN(t *testing.T) {
	rf := regfile.New()
	hot := rf.Hot()
	hot.PC = 0x4000
	hot.ASN = 7
	rf.SetHot(hot)
	rf.Shadow[2] = 0xDEADBEEF

	d := &Dispatcher{}
	d.EnterCallPal(rf, 0)

	require.Equal(t, uint32(7), rf.HWPCB.ASN)
	require.Equal(t, uint64(0xDEADBEEF), rf.HWPCB.SavedShadow[2])
}
