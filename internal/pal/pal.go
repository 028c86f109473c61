// Package pal implements the PAL Dispatcher: context save/restore across
// PAL entry and REI, entry-vector computation, and argument packaging.
package pal

import (
	"github.com/alphacore/ev6/internal/fault"
	"github.com/alphacore/ev6/internal/regfile"
)

// Dispatcher resolves trap class to PAL vector, saves/restores context,
// and packages arguments for the PAL code it transfers control to.
type Dispatcher struct{}

// EntryArgs is what the PAL Dispatcher writes into R16-R21 before
// transferring control, per spec.md §4.5's argument-packaging table.
type EntryArgs struct {
	R16, R17, R18, R19, R20, R21 uint64
}

// packageArgs builds the register arguments for one fault class.
func packageArgs(ev fault.Event) EntryArgs {
	switch ev.Class {
	case fault.ClassDTBMissSingle, fault.ClassDTBMissDouble, fault.ClassDTBAcv,
		fault.ClassFaultOnRead, fault.ClassFaultOnWrite, fault.ClassFaultOnExecute,
		fault.ClassITBMiss, fault.ClassITBAcv:
		isWrite := uint64(0)
		if ev.Payload.IsWrite {
			isWrite = 1
		}
		return EntryArgs{
			R16: ev.Payload.FaultVA,
			R17: uint64(ev.Payload.ASN),
			R18: uint64(ev.Class),
			R19: isWrite,
			R20: ev.Payload.FaultingPC,
		}
	case fault.ClassArithmetic:
		return EntryArgs{R16: ev.Payload.ExcSum, R17: ev.Payload.FaultingPC}
	case fault.ClassInterrupt:
		return EntryArgs{R16: uint64(ev.Payload.IntrVector), R17: uint64(ev.Payload.IntrIPL), R18: ev.Payload.FaultingPC}
	case fault.ClassMachineCheck:
		return EntryArgs{R16: ev.Payload.McheckSyndrome, R17: ev.Payload.McheckReason, R18: ev.Payload.McheckAddr, R19: ev.Payload.FaultingPC}
	case fault.ClassCallPal:
		return EntryArgs{} // caller's R16-R21 pass through unmodified
	default:
		return EntryArgs{}
	}
}

// EntryOutcome is what the caller (the pipeline) must apply after Enter
// returns: the new PC, the packaged argument registers, and whether
// shadow registers were activated.
type EntryOutcome struct {
	NewPC       uint64
	Args        EntryArgs
	ShadowOn    bool
}

// Enter implements PAL entry for a hardware exception or interrupt: save
// context, compute the entry PC from the fixed EV6 vector table, raise
// CM/IPL, optionally enable shadow registers, and return the outcome for
// the pipeline to apply (including the pipeline flush it must perform).
func (d *Dispatcher) Enter(rf *regfile.RegisterFile, ev fault.Event) EntryOutcome {
	ps := packPS(rf)
	rf.SaveContext(ps)
	rf.WriteIPR(regfile.IprExcAddr, ev.FaultingPC)
	if ev.FaultingVA != 0 {
		rf.WriteIPR(regfile.IprFaultVA, ev.FaultingVA)
	}

	entryPC := rf.ReadIPR(regfile.IprPalBase) + fault.VectorOffset(ev.Class)
	sdeEnabled := rf.ICTLShadowEnabled()
	rf.EnterPalMode(sdeEnabled)

	// An interrupt raises IPL to its source's level when that exceeds the
	// PAL-mode minimum, so a lower-priority source cannot re-enter.
	if ev.Kind == fault.KindInterrupt && ev.Payload.IntrIPL > rf.Hot().IPL {
		hot := rf.Hot()
		hot.IPL = ev.Payload.IntrIPL
		rf.SetHot(hot)
	}

	return EntryOutcome{
		NewPC:    entryPC | 1, // low-bit-set convention denotes PAL mode
		Args:     packageArgs(ev),
		ShadowOn: sdeEnabled,
	}
}

// EnterCallPal implements CALL_PAL dispatch: the entry vector uses the
// function-indexed 64-byte-stride formula instead of the fixed table, and
// the caller's R16-R21 pass through untouched.
//
// Unlike Enter (which saves the faulting PC so a restartable fault re-issues
// the same instruction), CALL_PAL is an advancing trap: the instruction has
// already completed, so the HWPCB must save the PC of the *next* instruction
// or REI would loop re-executing the CALL_PAL forever.
func (d *Dispatcher) EnterCallPal(rf *regfile.RegisterFile, function uint32) EntryOutcome {
	ps := packPS(rf)
	hot := rf.Hot()
	hot.PC += 4
	rf.SetHot(hot)
	rf.SaveContext(ps)

	entryPC := fault.CallPalEntry(rf.ReadIPR(regfile.IprPalBase), function)
	sdeEnabled := rf.ICTLShadowEnabled()
	rf.EnterPalMode(sdeEnabled)

	return EntryOutcome{NewPC: entryPC | 1, ShadowOn: sdeEnabled}
}

// REIOutcome is what the caller must apply after Return.
type REIOutcome struct {
	NewPC uint64
}

// Return implements the REI (Return from Exception or Interrupt)
// instruction: restore context, break any reservation, and resume at the
// restored PC. Breaking the reservation and flushing the pipeline are the
// caller's responsibility (they require the Reservation Manager and
// Pipeline, which this package does not depend on to avoid a cycle).
func (d *Dispatcher) Return(rf *regfile.RegisterFile) REIOutcome {
	pc, ps := rf.RestoreContext()
	unpackPS(rf, ps)
	rf.LeavePalMode()
	return REIOutcome{NewPC: pc}
}

// packPS packs CM/IPL into the PS word HWPCB stores.
func packPS(rf *regfile.RegisterFile) uint64 {
	hot := rf.Hot()
	return uint64(hot.CM) | uint64(hot.IPL)<<3
}

// unpackPS restores CM/IPL from a packed PS word.
func unpackPS(rf *regfile.RegisterFile, ps uint64) {
	hot := rf.Hot()
	hot.CM = regfile.CurrentMode(ps & 0x7)
	hot.IPL = uint8((ps >> 3) & 0x1F)
	rf.SetHot(hot)
}
