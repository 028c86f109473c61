// Package pipeline implements the Pipeline: the orchestrator that supplies
// decoded instructions to the execute units, collects their results,
// commits writebacks, and handles redirects (branches, PAL entry, REI).
//
// Per the Design Notes' guidance, the pipeline avoids back-pointers to the
// execute units and PAL dispatcher by interpreting the BoxResult event-bus
// record each unit returns, rather than having units call back into the
// pipeline or PAL dispatcher directly.
package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/alphacore/ev6/internal/decode"
	"github.com/alphacore/ev6/internal/execute"
	"github.com/alphacore/ev6/internal/fault"
	"github.com/alphacore/ev6/internal/grain"
	"github.com/alphacore/ev6/internal/irq"
	"github.com/alphacore/ev6/internal/memiface"
	"github.com/alphacore/ev6/internal/pal"
	"github.com/alphacore/ev6/internal/regfile"
	"github.com/alphacore/ev6/internal/smp"
	"github.com/alphacore/ev6/internal/tlb"
)

// FlushReason records why a pipeline flush happened, for logging and for
// tests asserting the right collaborator triggered it.
type FlushReason int

const (
	FlushNone FlushReason = iota
	FlushMispredict
	FlushPALEntry
	FlushREI
	FlushException
	FlushIMB
)

func (r FlushReason) String() string {
	switch r {
	case FlushMispredict:
		return "mispredict"
	case FlushPALEntry:
		return "pal-entry"
	case FlushREI:
		return "rei"
	case FlushException:
		return "exception"
	case FlushIMB:
		return "imb"
	default:
		return "none"
	}
}

// Pipeline is the per-CPU fetch->dispatch->writeback->retire orchestrator.
// Its collaborators are injected at construction (inject_units in spec.md
// §4.4 terms) rather than looked up through globals.
type Pipeline struct {
	CPU int

	Registry     *grain.Registry
	Fetch        *decode.Unit
	Integer      *execute.IntegerUnit
	Float        *execute.FloatUnit
	Memory       *execute.MemoryUnit
	Branch       *execute.BranchUnit
	PAL          *pal.Dispatcher
	Faults       *fault.Dispatcher
	RF           *regfile.RegisterFile
	Reservations *smp.ReservationManager
	Barrier      *smp.BarrierCoordinator

	// ITLB/DTLB0/DTLB1 are consulted when an IPR write's side effects
	// demand a TLB fill or invalidation (HW_MTPR to the TB registers).
	ITLB, DTLB0, DTLB1 *tlb.TLB

	// PageShift is the configured page size's log2, driving TLB fills.
	PageShift uint

	// Peers is the count of other CPUs a requested memory barrier must
	// rendezvous with; Shootdown posts an IPI to every peer (wired by the
	// System Coordinator, nil on a uniprocessor).
	Peers     int
	Shootdown func(irq.Command, uint64)

	Log *logrus.Entry
}

// New constructs a Pipeline wiring the given collaborators.
func New(cpu int, registry *grain.Registry, fetch *decode.Unit, integer *execute.IntegerUnit,
	float *execute.FloatUnit, mem *execute.MemoryUnit, branch *execute.BranchUnit,
	palDispatcher *pal.Dispatcher, faults *fault.Dispatcher, rf *regfile.RegisterFile,
	reservations *smp.ReservationManager, barrier *smp.BarrierCoordinator, peers int, log *logrus.Entry) *Pipeline {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Pipeline{
		CPU: cpu, Registry: registry, Fetch: fetch, Integer: integer, Float: float,
		Memory: mem, Branch: branch, PAL: palDispatcher, Faults: faults, RF: rf,
		Reservations: reservations, Barrier: barrier, Peers: peers,
		PageShift: fetch.PageShift, Log: log.WithField("cpu", cpu),
	}
}

// Tick processes one slot: fetch, dispatch to the correct execute unit,
// writeback, and advance PC (or redirect). It returns the BoxResult the
// dispatched unit (or the fault path) produced, for the orchestrator to
// inspect (e.g. Halt).
func (p *Pipeline) Tick(ctx context.Context, mem memiface.Memory) execute.BoxResult {
	p.bumpCycleCounter()

	if ev, ok := p.Faults.Peek(); ok {
		return p.deliverToPAL(ev)
	}

	hot := p.RF.Hot()
	mode := toTLBMode(hot.CM)
	fr := p.Fetch.FetchNext(mem, hot.PC, hot.ASN, mode, hot.PalMode, p.RF.Cold().PageTableBase)
	if fr.Outcome != decode.FetchOk {
		return p.raiseFetchFault(fr)
	}

	ins := fr.Ins
	g := p.Registry.Grain(ins.Grain)

	var result execute.BoxResult
	switch g.Format {
	case grain.FormatOperate:
		result = p.Integer.Execute(p.RF, ins)
	case grain.FormatMemory:
		if isPalReserved(g.Mnemonic) && !hot.PalMode {
			return p.privilegeFault(ins)
		}
		result = p.Memory.Execute(mem, p.RF, ins, mode)
	case grain.FormatBranch:
		predicted := p.Branch.Predictor.Predict(ins.VA)
		result = p.Branch.Execute(p.RF, ins, predicted)
	case grain.FormatFloat:
		// PAL mode always executes with FP enabled regardless of PS.FPE.
		if !hot.PalMode && !hot.FPEnabled {
			result = p.fenFault(ins)
		} else {
			result = p.Float.Execute(p.RF, ins)
		}
	case grain.FormatPAL:
		result = p.executePALFormat(g, ins, hot.PalMode)
	default:
		result = execute.BoxResult{}
	}

	if result.FaultDispatched {
		return p.deliverToPAL(result.FaultEvent)
	}

	p.commit(ctx, ins, result)
	return result
}

// executePALFormat dispatches the PAL-format group: CALL_PAL is a guest
// instruction, everything else lives in the PAL-reserved opcode space and
// raises OPCDEC outside PAL mode.
func (p *Pipeline) executePALFormat(g *grain.Grain, ins decode.Instruction, palMode bool) execute.BoxResult {
	if g.Mnemonic == "CALL_PAL" {
		return p.Branch.Execute(p.RF, ins, false)
	}
	if !palMode {
		return execute.BoxResult{}.WithFault(fault.Event{
			Kind: fault.KindException, Class: fault.ClassOpcDec, FaultingPC: ins.VA, FaultingVA: ins.VA,
		})
	}
	switch g.Mnemonic {
	case "REI":
		return p.Branch.Execute(p.RF, ins, false)
	case "HW_MFPR":
		id, ok := regfile.IprFromIndex(decode.IprIndex(ins.Raw))
		if !ok {
			return execute.BoxResult{}
		}
		return execute.BoxResult{}.WithWriteback(ins.Ra, p.RF.ReadIPR(id))
	case "HW_MTPR":
		id, ok := regfile.IprFromIndex(decode.IprIndex(ins.Raw))
		if !ok {
			return execute.BoxResult{}
		}
		se := p.RF.WriteIPR(id, p.RF.Read(ins.Rb))
		p.applyIPRSideEffects(se)
		return execute.BoxResult{}
	default:
		return execute.BoxResult{}
	}
}

// applyIPRSideEffects performs the collaborator actions an IPR write hook
// requested: decode-cache flush, TLB fill/invalidation, and the matching
// cross-CPU shootdown where the architecture requires it.
func (p *Pipeline) applyIPRSideEffects(se regfile.WriteSideEffects) {
	if se.FlushICache {
		p.Fetch.InvalidateMemoryBarrier()
	}
	if se.FlushNonGlobal {
		p.ITLB.InvalidateASN(se.InvalidateASN)
		p.DTLB0.InvalidateASN(se.InvalidateASN)
		p.DTLB1.InvalidateASN(se.InvalidateASN)
	}
	if se.InvalidateTLBAll {
		p.ITLB.InvalidateAll()
		p.DTLB0.InvalidateAll()
		p.DTLB1.InvalidateAll()
		p.shootdown(irq.CmdTLBInvalidateAll, 0)
	}
	if se.InvalidateTLBASN {
		p.ITLB.InvalidateASN(se.InvalidateASN)
		p.DTLB0.InvalidateASN(se.InvalidateASN)
		p.DTLB1.InvalidateASN(se.InvalidateASN)
		p.shootdown(irq.CmdTLBInvalidateASN, uint64(se.InvalidateASN))
	}
	if se.InvalidateTLBVA {
		p.ITLB.InvalidateVA(se.InvalidateVA)
		p.DTLB0.InvalidateVA(se.InvalidateVA)
		p.DTLB1.InvalidateVA(se.InvalidateVA)
		p.shootdown(irq.CmdTLBInvalidateVABoth, se.InvalidateVA)
	}
	if se.InstallITB {
		p.installTLB(p.ITLB, se.InstallVA, se.InstallPTE)
	}
	if se.InstallDTB {
		bank := p.DTLB0
		if (se.InstallVA>>p.PageShift)&1 == 1 {
			bank = p.DTLB1
		}
		p.installTLB(bank, se.InstallVA, se.InstallPTE)
	}
}

func (p *Pipeline) installTLB(t *tlb.TLB, va, rawPTE uint64) {
	pte := tlb.DecodePTE(rawPTE)
	if !pte.Valid {
		return
	}
	gran := tlb.GranFromShift(p.PageShift)
	t.Install(va>>p.PageShift, pte.PFN, p.RF.Hot().ASN, pte.ASM, gran,
		tlb.PermissionsOf(pte), pte.FOR, pte.FOW, pte.FOE)
}

func (p *Pipeline) shootdown(cmd irq.Command, payload uint64) {
	if p.Shootdown != nil {
		p.Shootdown(cmd, payload)
	}
}

// commit applies writeback and side-effect flags for a non-faulting slot,
// per the retirement invariant: all observable state changes happen here,
// atomically with respect to faults (a faulting slot never reaches commit).
func (p *Pipeline) commit(ctx context.Context, ins decode.Instruction, result execute.BoxResult) {
	if result.NeedsWriteback && result.WritebackTarget != regfile.ZeroRegister {
		if result.WritesFloat {
			p.RF.WriteFloat(result.WritebackTarget, result.Payload)
		} else {
			p.RF.Write(result.WritebackTarget, result.Payload)
		}
	}

	if result.InvalidateDecodeCaches {
		p.InvalidateMemoryBarrier()
	}

	if result.RequestMemoryBarrier && p.Barrier.Initiate(p.Peers) {
		// Arm first, then broadcast: an early acknowledgement must find
		// the counter already reset. Every peer drains its write buffer
		// and answers before this CPU proceeds.
		p.shootdown(irq.CmdMemoryBarrierFull, 0)
		if err := p.Barrier.Await(ctx); err != nil {
			p.Log.WithError(err).Error("memory barrier timed out; raising machine check")
			p.Faults.SetPending(fault.Event{
				Kind:       fault.KindMachineCheck,
				Class:      fault.ClassMachineCheck,
				FaultingPC: p.RF.Hot().PC,
				Payload:    fault.Payload{McheckReason: 1, FaultingPC: p.RF.Hot().PC},
			})
		}
	}

	switch {
	case result.IsREI:
		outcome := p.PAL.Return(p.RF)
		p.Reservations.BreakAll(p.CPU)
		p.setPC(outcome.NewPC)
		p.Log.WithField("reason", FlushREI).Debug("pipeline flush")
	case result.EnterPALMode:
		// CALL_PAL always uses the function-indexed vector formula, never
		// the fixed hardware-exception table deliverToPAL uses.
		outcome := p.PAL.EnterCallPal(p.RF, result.PALFunction)
		p.setPC(outcome.NewPC)
		p.Log.WithField("reason", FlushPALEntry).WithField("function", result.PALFunction).Debug("pipeline flush")
	case result.HasRedirect:
		p.setPC(result.RedirectPC)
		if result.MispredictBranch {
			p.Log.WithField("reason", FlushMispredict).Debug("pipeline flush")
		}
	default:
		p.advancePC(ins)
	}

	if result.Halt {
		hot := p.RF.Hot()
		hot.HaltCode = 1
		p.RF.SetHot(hot)
	}
}

// advancePC moves PC to ins.VA+4, the non-branching, non-redirected case.
func (p *Pipeline) advancePC(ins decode.Instruction) {
	p.setPC(ins.VA + 4)
}

func (p *Pipeline) setPC(pc uint64) {
	hot := p.RF.Hot()
	hot.PC = pc
	p.RF.SetHot(hot)
}

// bumpCycleCounter advances the free-running cycle counter once per
// Tick, a faulting or event-delivery tick included: the core is instruction-accurate, one architectural
// instruction per step.
func (p *Pipeline) bumpCycleCounter() {
	hot := p.RF.Hot()
	hot.CycleCtr++
	p.RF.SetHot(hot)
}

// raiseFetchFault classifies a non-Ok FetchResult per spec.md §4.1 and
// routes it to the Fault Dispatcher / PAL Dispatcher.
func (p *Pipeline) raiseFetchFault(fr decode.FetchResult) execute.BoxResult {
	var ev fault.Event
	switch fr.Outcome {
	case decode.FetchTranslationFault:
		class := fault.ClassITBMiss
		switch fr.TlbFault {
		case tlb.FaultITBAcv:
			class = fault.ClassITBAcv
		case tlb.FaultOnExecute:
			class = fault.ClassFaultOnExecute
		}
		ev = fault.Event{
			Kind: fault.KindException, Class: class,
			FaultingPC: fr.VA, FaultingVA: fr.VA, ASN: p.RF.Hot().ASN,
			Payload: fault.Payload{FaultVA: fr.VA, ASN: p.RF.Hot().ASN, FaultingPC: fr.VA},
		}
	case decode.FetchIllegalOpcode:
		ev = fault.Event{Kind: fault.KindException, Class: fault.ClassOpcDec, FaultingPC: fr.VA, FaultingVA: fr.VA}
	default: // FetchBusError
		ev = fault.Event{
			Kind: fault.KindMachineCheck, Class: fault.ClassMachineCheck, FaultingPC: fr.VA,
			Payload: fault.Payload{McheckAddr: fr.VA, FaultingPC: fr.VA},
		}
	}
	return p.deliverToPAL(ev)
}

// fenFault builds the FP-disabled fault for a Float-format slot reached
// while PS.FPE is clear.
func (p *Pipeline) fenFault(ins decode.Instruction) execute.BoxResult {
	ev := fault.Event{Kind: fault.KindException, Class: fault.ClassFen, FaultingPC: ins.VA, FaultingVA: ins.VA}
	return execute.BoxResult{}.WithFault(ev)
}

// privilegeFault raises OPCDEC for a PAL-reserved instruction reached
// outside PAL mode.
func (p *Pipeline) privilegeFault(ins decode.Instruction) execute.BoxResult {
	ev := fault.Event{Kind: fault.KindException, Class: fault.ClassOpcDec, FaultingPC: ins.VA, FaultingVA: ins.VA}
	return p.deliverToPAL(ev)
}

// deliverToPAL installs ev as pending (if not already) and performs PAL
// entry immediately: fetch/execute faults abort their slot in the same
// cycle they're detected, so there is no separate "next tick" delay before
// delivery.
func (p *Pipeline) deliverToPAL(ev fault.Event) execute.BoxResult {
	p.Faults.SetPending(ev)
	pending, _ := p.Faults.Peek()
	outcome := p.PAL.Enter(p.RF, pending)
	p.Faults.Clear()
	p.setPC(outcome.NewPC)
	p.applyEntryArgs(outcome.Args)
	p.Log.WithField("reason", FlushException).WithField("class", pending.Class).Debug("pipeline flush")
	return execute.BoxResult{}.WithFault(pending)
}

// applyEntryArgs writes the packaged PAL entry arguments into R16-R21, per
// spec.md §4.5's argument-packaging table.
func (p *Pipeline) applyEntryArgs(args pal.EntryArgs) {
	p.RF.Write(16, args.R16)
	p.RF.Write(17, args.R17)
	p.RF.Write(18, args.R18)
	p.RF.Write(19, args.R19)
	p.RF.Write(20, args.R20)
	p.RF.Write(21, args.R21)
}

// InvalidateMemoryBarrier handles CALL_PAL IMB: the Fetch/Decode Unit's
// decode caches are fully invalidated.
func (p *Pipeline) InvalidateMemoryBarrier() {
	p.Fetch.InvalidateMemoryBarrier()
	p.Log.WithField("reason", FlushIMB).Debug("pipeline flush")
}

func isPalReserved(mnemonic string) bool {
	return mnemonic == "HW_LD" || mnemonic == "HW_ST"
}

func toTLBMode(cm regfile.CurrentMode) tlb.Mode {
	switch cm {
	case regfile.ModeKernel:
		return tlb.ModeKernel
	case regfile.ModeExecutive:
		return tlb.ModeExecutive
	case regfile.ModeSupervisor:
		return tlb.ModeSupervisor
	default:
		return tlb.ModeUser
	}
}
