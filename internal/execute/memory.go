package execute

import (
	"github.com/alphacore/ev6/internal/decode"
	"github.com/alphacore/ev6/internal/fault"
	"github.com/alphacore/ev6/internal/grain"
	"github.com/alphacore/ev6/internal/memiface"
	"github.com/alphacore/ev6/internal/regfile"
	"github.com/alphacore/ev6/internal/smp"
	"github.com/alphacore/ev6/internal/tlb"
)

// MemoryUnit executes the Memory-format instructions: loads, stores,
// LL/SC, the PAL-reserved physical HW_LD/HW_ST pair, and the
// TRAPB/EXCB/MB/WMB/FETCH/RPCC/RC/RS miscellaneous group.
type MemoryUnit struct {
	Registry     *grain.Registry
	DTLB0, DTLB1 *tlb.TLB
	Reservations *smp.ReservationManager
	CPU          int
	PageShift    uint

	// Faults is consulted by TRAPB/EXCB to decide whether an arithmetic
	// trap is outstanding and must drain before the barrier retires.
	Faults *fault.Dispatcher
}

// translate resolves a virtual address through the data TLB (walking the
// page tables on a miss), alternating between DTB0/DTB1 by page parity for
// bank parallelism, as spec.md §4.2 describes.
func (u *MemoryUnit) translate(mem memiface.Memory, rf *regfile.RegisterFile, va uint64, mode tlb.Mode, kind tlb.AccessKind) (pa uint64, fc tlb.FaultClass, ok bool) {
	bank := u.DTLB0
	if (va>>u.PageShift)&1 == 1 {
		bank = u.DTLB1
	}
	return bank.Translate(mem, rf.Cold().PageTableBase, va, rf.Hot().ASN, mode, kind, u.PageShift)
}

func memFaultClass(fc tlb.FaultClass) fault.Class {
	switch fc {
	case tlb.FaultDTBMissSingle:
		return fault.ClassDTBMissSingle
	case tlb.FaultDTBMissDouble:
		return fault.ClassDTBMissDouble
	case tlb.FaultDTBAcv:
		return fault.ClassDTBAcv
	case tlb.FaultOnRead:
		return fault.ClassFaultOnRead
	case tlb.FaultOnWrite:
		return fault.ClassFaultOnWrite
	case tlb.FaultOnExecute:
		return fault.ClassFaultOnExecute
	default:
		return fault.ClassDTBMissSingle
	}
}

func (u *MemoryUnit) translationFault(rf *regfile.RegisterFile, va uint64, fc tlb.FaultClass, isWrite bool) BoxResult {
	ev := fault.Event{
		Kind:       fault.KindException,
		Class:      memFaultClass(fc),
		FaultingPC: rf.Hot().PC,
		FaultingVA: va,
		ASN:        rf.Hot().ASN,
		Payload: fault.Payload{
			FaultVA:    va,
			ASN:        rf.Hot().ASN,
			IsWrite:    isWrite,
			FaultingPC: rf.Hot().PC,
		},
	}
	return BoxResult{}.WithFault(ev)
}

func (u *MemoryUnit) unalignFault(rf *regfile.RegisterFile, va uint64) BoxResult {
	ev := fault.Event{
		Kind:       fault.KindException,
		Class:      fault.ClassUnalign,
		FaultingPC: rf.Hot().PC,
		FaultingVA: va,
	}
	return BoxResult{}.WithFault(ev)
}

func (u *MemoryUnit) machineCheck(rf *regfile.RegisterFile, pa uint64) BoxResult {
	ev := fault.Event{
		Kind:       fault.KindMachineCheck,
		Class:      fault.ClassMachineCheck,
		FaultingPC: rf.Hot().PC,
		Payload:    fault.Payload{McheckAddr: pa, FaultingPC: rf.Hot().PC},
	}
	return BoxResult{}.WithFault(ev)
}

// Execute dispatches a Memory-format slot.
func (u *MemoryUnit) Execute(mem memiface.Memory, rf *regfile.RegisterFile, ins decode.Instruction, mode tlb.Mode) BoxResult {
	g := u.Registry.Grain(ins.Grain)

	switch g.Mnemonic {
	case "TRAPB", "EXCB":
		// Arithmetic traps are delivered the cycle they are raised in this
		// interpreter, so by the time the barrier retires nothing can be
		// outstanding; the check documents the architectural contract.
		if u.Faults != nil && u.Faults.HasArithmetic() {
			return BoxResult{}.WithFlush()
		}
		return BoxResult{}
	case "MB":
		return BoxResult{}.WithBarrier(true)
	case "WMB":
		return BoxResult{}.WithBarrier(false)
	case "FETCH", "FETCH_M":
		return BoxResult{} // prefetch hints are no-ops on an interpreter
	case "RPCC":
		// Lower 32 bits count cycles; the upper 32 are the per-process
		// offset PAL maintains, per the EV6 RPCC split.
		cc := rf.Hot().CycleCtr&0xFFFFFFFF | rf.Cold().CycleOffset<<32
		return BoxResult{}.WithWriteback(ins.Ra, cc)
	case "RC":
		hot := rf.Hot()
		was := hot.IntrFlag
		hot.IntrFlag = false
		rf.SetHot(hot)
		return BoxResult{}.WithWriteback(ins.Ra, boolToU64(was))
	case "RS":
		hot := rf.Hot()
		was := hot.IntrFlag
		hot.IntrFlag = true
		rf.SetHot(hot)
		return BoxResult{}.WithWriteback(ins.Ra, boolToU64(was))
	}

	ea := rf.Read(ins.Rb) + uint64(ins.MemDisp)

	// HW_LD/HW_ST bypass translation entirely: the effective address is
	// physical. The pipeline has already verified PAL mode.
	switch g.Mnemonic {
	case "HW_LD":
		value, status := mem.Read64(ea)
		if status != memiface.StatusOk {
			return u.machineCheck(rf, ea)
		}
		return BoxResult{}.WithWriteback(ins.Ra, value)
	case "HW_ST":
		if status := mem.Write64(ea, rf.Read(ins.Ra)); status != memiface.StatusOk {
			return u.machineCheck(rf, ea)
		}
		u.Reservations.BreakOnLine(ea)
		return BoxResult{}
	}

	unalignedOK := g.Mnemonic == "LDQ_U" || g.Mnemonic == "STQ_U"
	width := accessWidth(g.Mnemonic)
	if unalignedOK {
		ea &^= 7
	} else if width > 1 && ea%uint64(width) != 0 {
		return u.unalignFault(rf, ea)
	}

	switch g.Mnemonic {
	case "LDBU", "LDWU", "LDL", "LDQ", "LDL_L", "LDQ_L", "LDQ_U":
		pa, fc, ok := u.translate(mem, rf, ea, mode, tlb.AccessRead)
		if !ok {
			return u.translationFault(rf, ea, fc, false)
		}
		value, status := u.load(mem, pa, width)
		if status != memiface.StatusOk {
			return u.machineCheck(rf, pa)
		}
		if g.Mnemonic == "LDL_L" || g.Mnemonic == "LDQ_L" {
			u.Reservations.Set(u.CPU, pa)
		}
		return BoxResult{}.WithWriteback(ins.Ra, value)

	case "STB", "STW", "STL", "STQ", "STL_C", "STQ_C", "STQ_U":
		pa, fc, ok := u.translate(mem, rf, ea, mode, tlb.AccessWrite)
		if !ok {
			return u.translationFault(rf, ea, fc, true)
		}
		if g.Mnemonic == "STL_C" || g.Mnemonic == "STQ_C" {
			if !u.Reservations.CheckAndClear(u.CPU, pa) {
				return BoxResult{}.WithWriteback(ins.Ra, 0)
			}
		}
		if status := u.store(mem, pa, width, rf.Read(ins.Ra)); status != memiface.StatusOk {
			return u.machineCheck(rf, pa)
		}
		u.Reservations.BreakOnLine(pa)
		if g.Mnemonic == "STL_C" || g.Mnemonic == "STQ_C" {
			return BoxResult{}.WithWriteback(ins.Ra, 1)
		}
		return BoxResult{}
	default:
		return BoxResult{}
	}
}

// load reads width bytes at pa. Longwords sign-extend (LDL); bytes and
// words zero-extend (LDBU/LDWU, the BWX convention). Sub-longword widths
// are carved out of the containing 32-bit word, since the guest memory
// interface is word-granular.
func (u *MemoryUnit) load(mem memiface.Memory, pa uint64, width int) (uint64, memiface.MemStatus) {
	switch width {
	case 8:
		return mem.Read64(pa)
	case 4:
		v, status := mem.Read32(pa)
		return signExt32(v), status
	default:
		word, status := mem.Read32(pa &^ 3)
		if status != memiface.StatusOk {
			return 0, status
		}
		shift := (pa & 3) * 8
		if width == 2 {
			return uint64(word>>shift) & 0xFFFF, memiface.StatusOk
		}
		return uint64(word>>shift) & 0xFF, memiface.StatusOk
	}
}

// store writes width bytes at pa, read-modify-writing the containing
// 32-bit word for the sub-longword BWX widths.
func (u *MemoryUnit) store(mem memiface.Memory, pa uint64, width int, value uint64) memiface.MemStatus {
	switch width {
	case 8:
		return mem.Write64(pa, value)
	case 4:
		return mem.Write32(pa, uint32(value))
	default:
		base := pa &^ 3
		word, status := mem.Read32(base)
		if status != memiface.StatusOk {
			return status
		}
		shift := (pa & 3) * 8
		mask := uint32(0xFF)
		if width == 2 {
			mask = 0xFFFF
		}
		word = word&^(mask<<shift) | (uint32(value)&mask)<<shift
		return mem.Write32(base, word)
	}
}

func accessWidth(mnemonic string) int {
	switch mnemonic {
	case "LDBU", "STB":
		return 1
	case "LDWU", "STW":
		return 2
	case "LDL", "STL", "LDL_L", "STL_C":
		return 4
	default:
		return 8
	}
}
