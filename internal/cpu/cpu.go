// Package cpu implements the Per-CPU Orchestrator: the run loop around a
// Pipeline that handles IPI mailbox drains, interrupt claims, and the
// halt/pause/resume lifecycle a worker thread exposes to the System
// Coordinator.
package cpu

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/alphacore/ev6/internal/fault"
	"github.com/alphacore/ev6/internal/irq"
	"github.com/alphacore/ev6/internal/memiface"
	"github.com/alphacore/ev6/internal/pipeline"
	"github.com/alphacore/ev6/internal/regfile"
	"github.com/alphacore/ev6/internal/smp"
	"github.com/alphacore/ev6/internal/tlb"
)

// State is the lifecycle state the orchestrator reports to the System
// Coordinator.
type State int32

const (
	StateRunning State = iota
	StatePaused
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Core is one per-CPU orchestrator: it owns a Pipeline plus the TLBs,
// IPI mailbox access, and IRQ router reference the per-slot loop consults.
// All state reachable only from this CPU's own goroutine; no locks are
// needed on the hot path, per spec.md §5.
type Core struct {
	ID int

	Pipeline *pipeline.Pipeline
	RF       *regfile.RegisterFile

	ITLB, DTLB0, DTLB1 *tlb.TLB
	Reservations       *smp.ReservationManager
	Barrier            *smp.BarrierCoordinator

	Router  *irq.Router
	Mailbox *irq.Mailbox

	state   atomic.Int32
	pausing atomic.Bool

	Log *logrus.Entry
}

// New constructs a Core for the given CPU id.
func New(id int, p *pipeline.Pipeline, rf *regfile.RegisterFile, itlb, dtlb0, dtlb1 *tlb.TLB,
	reservations *smp.ReservationManager, barrier *smp.BarrierCoordinator, router *irq.Router,
	mailbox *irq.Mailbox, log *logrus.Entry) *Core {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	c := &Core{
		ID: id, Pipeline: p, RF: rf, ITLB: itlb, DTLB0: dtlb0, DTLB1: dtlb1,
		Reservations: reservations, Barrier: barrier, Router: router, Mailbox: mailbox,
		Log: log.WithField("cpu", id),
	}
	return c
}

// State reports the orchestrator's current lifecycle state.
func (c *Core) State() State { return State(c.state.Load()) }

func (c *Core) setState(s State) { c.state.Store(int32(s)) }

// Pause requests the run loop exit at the next instruction boundary. There
// is no mid-instruction cancellation: the flag is only checked at the top
// of the loop, per spec.md §5.
func (c *Core) Pause() { c.pausing.Store(true) }

// Resume clears a prior pause request; the caller must invoke Run again
// to restart the loop.
func (c *Core) Resume() { c.pausing.Store(false) }

// Run drives the instruction loop until halted, context-cancelled, or
// paused. It is the single suspension-free tight loop spec.md §5 requires:
// the only suspension points are the ones this function itself checks for
// at the top of each iteration.
func (c *Core) Run(ctx context.Context, mem memiface.Memory) error {
	c.setState(StateRunning)
	for {
		select {
		case <-ctx.Done():
			c.setState(StateHalted)
			return ctx.Err()
		default:
		}

		if c.pausing.Load() {
			c.setState(StatePaused)
			return nil
		}

		c.drainMailbox(ctx)
		if c.State() == StateHalted {
			c.Log.Info("cpu halted by IPI")
			return nil
		}
		c.claimInterrupt()
		c.checkAST()

		result := c.Pipeline.Tick(ctx, mem)
		if result.Halt {
			c.setState(StateHalted)
			c.Log.Info("cpu halted")
			return nil
		}
	}
}

// claimInterrupt asks the IRQ Router for the highest pending interrupt
// above the current IPL and, if one exists, installs it as a pending
// event for the next Tick to deliver.
func (c *Core) claimInterrupt() {
	ipl := c.RF.Hot().IPL
	if !c.Router.HasDeliverable(c.ID, ipl) {
		return
	}
	claimed, ok := c.Router.ClaimNext(c.ID, ipl)
	if !ok {
		return
	}
	c.Pipeline.Faults.SetPending(fault.Event{
		Kind:       fault.KindInterrupt,
		Class:      fault.ClassInterrupt,
		FaultingPC: c.RF.Hot().PC,
		Payload: fault.Payload{
			IntrVector: claimed.Vector,
			IntrIPL:    claimed.IPL,
			FaultingPC: c.RF.Hot().PC,
		},
	})
}

// astDeliveryIPL is the interrupt level ASTs deliver at; an AST is only
// deliverable while the CPU runs below it.
const astDeliveryIPL = 2

// checkAST delivers a pending AST when one is both requested (ASTSR) and
// enabled (ASTEN) and the CPU is running low enough for it to interrupt.
// The summary bit is consumed on delivery; PAL re-requests via HW_MTPR if
// it wants another.
func (c *Core) checkAST() {
	hot := c.RF.Hot()
	if hot.PalMode || hot.IPL >= astDeliveryIPL {
		return
	}
	deliverable := c.RF.ReadIPR(regfile.IprASTEN) & c.RF.ReadIPR(regfile.IprASTSR)
	if deliverable == 0 {
		return
	}
	c.RF.WriteIPR(regfile.IprASTSR, c.RF.ReadIPR(regfile.IprASTSR)&^deliverable)
	c.Pipeline.Faults.SetPending(fault.Event{
		Kind:       fault.KindAST,
		Class:      fault.ClassInterrupt,
		FaultingPC: hot.PC,
		Payload: fault.Payload{
			IntrVector: uint32(deliverable),
			IntrIPL:    astDeliveryIPL,
			FaultingPC: hot.PC,
		},
	})
}

// Reset queues the highest-priority reset event; the next Tick clears the
// pipeline and re-vectors to the RESET entry. The fault dispatcher is
// owned by this CPU's thread, so Reset may only be called from that thread
// or while the run loop is stopped.
func (c *Core) Reset() {
	c.Pipeline.Faults.SetPending(fault.Event{
		Kind:       fault.KindReset,
		Class:      fault.ClassReset,
		FaultingPC: c.RF.Hot().PC,
	})
}

// drainMailbox fetches and processes this CPU's IPI mailbox, per spec.md
// §4.6: the receiving CPU processes the IPI inside its interrupt-handling
// path, here the top of the run loop.
func (c *Core) drainMailbox(ctx context.Context) {
	word := c.Mailbox.Fetch(c.ID)
	if word == 0 {
		return
	}
	cmd, payload := irq.Decode(word)
	switch cmd {
	case irq.CmdTLBInvalidateAll:
		c.ITLB.InvalidateAll()
		c.DTLB0.InvalidateAll()
		c.DTLB1.InvalidateAll()
	case irq.CmdTLBInvalidateASN:
		asn := uint32(payload)
		c.ITLB.InvalidateASN(asn)
		c.DTLB0.InvalidateASN(asn)
		c.DTLB1.InvalidateASN(asn)
	case irq.CmdTLBInvalidateVABoth:
		vpn := payload
		c.ITLB.InvalidateVA(vpn)
		c.DTLB0.InvalidateVA(vpn)
		c.DTLB1.InvalidateVA(vpn)
	case irq.CmdTLBInvalidateVAITB:
		c.ITLB.InvalidateVA(payload)
	case irq.CmdTLBInvalidateVADTB:
		c.DTLB0.InvalidateVA(payload)
		c.DTLB1.InvalidateVA(payload)
	case irq.CmdCacheInvalidateLine, irq.CmdCacheFlushLine, irq.CmdCacheEvictLine:
		c.Reservations.BreakOnLine(payload)
		// A cache-line invalidation means the backing bytes may have been
		// rewritten under a cached decode (device DMA into code pages);
		// both decode caches are dropped wholesale, the same policy IMB
		// applies.
		c.Pipeline.InvalidateMemoryBarrier()
	case irq.CmdMemoryBarrierFull, irq.CmdMemoryBarrierWrite:
		c.Barrier.Acknowledge()
	case irq.CmdHaltCPU:
		c.setState(StateHalted)
	case irq.CmdWakeCPU:
		c.Resume()
	case irq.CmdContextSwitch:
		c.Reservations.BreakAll(c.ID)
	}
}
