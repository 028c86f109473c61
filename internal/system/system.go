// Package system implements the System Coordinator: lifecycle, thread
// management, and SMP topology for the per-CPU orchestrators and the
// shared SMP infrastructure (IRQ router, IPI mailbox, reservation
// manager, memory barrier coordinator) they depend on.
package system

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/alphacore/ev6/internal/config"
	"github.com/alphacore/ev6/internal/cpu"
	"github.com/alphacore/ev6/internal/decode"
	"github.com/alphacore/ev6/internal/execute"
	"github.com/alphacore/ev6/internal/fault"
	"github.com/alphacore/ev6/internal/grain"
	"github.com/alphacore/ev6/internal/irq"
	"github.com/alphacore/ev6/internal/memiface"
	"github.com/alphacore/ev6/internal/pal"
	"github.com/alphacore/ev6/internal/pipeline"
	"github.com/alphacore/ev6/internal/regfile"
	"github.com/alphacore/ev6/internal/smp"
	"github.com/alphacore/ev6/internal/tlb"
)

// System owns every per-CPU orchestrator and the shared SMP infrastructure
// spec.md §2's top-level component table assigns to the "System
// Coordinator" row.
type System struct {
	Config config.SystemConfig

	Registry *grain.Registry
	Memory   memiface.Memory

	Router       *irq.Router
	Mailbox      *irq.Mailbox
	Reservations *smp.ReservationManager
	Barrier      *smp.BarrierCoordinator

	CPUs []*cpu.Core

	Log *logrus.Entry
}

// New builds a System from cfg: one Core per configured CPU, each with its
// own register file, triple TLB (ITLB + DTLB0/DTLB1), decode caches, and
// execute units, sharing the registry and the SMP infrastructure above.
func New(cfg config.SystemConfig, mem memiface.Memory, log *logrus.Entry) *System {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	registry := grain.NewRegistry()
	s := &System{
		Config:       cfg,
		Registry:     registry,
		Memory:       mem,
		Router:       irq.NewRouter(cfg.CpuCount),
		Mailbox:      irq.NewMailbox(cfg.CpuCount),
		Reservations: smp.NewReservationManager(cfg.CpuCount),
		Barrier:      smp.NewBarrierCoordinator(),
		Log:          log,
	}

	policy := tlb.PolicySRRIP
	for _, p := range cfg.CachePolicies {
		if p.Name == "ITLB" || p.Name == "DTLB" {
			policy = p.Policy
		}
	}

	pageShift := cfg.PTEPageSize.Granularity().PageShift()

	for id := 0; id < cfg.CpuCount; id++ {
		rf := regfile.New()
		cold := rf.Cold()
		cold.WhoAmI = uint64(id)
		rf.SetCold(cold)

		itlb := tlb.New(tlb.RealmInstruction, policy)
		dtlb0 := tlb.New(tlb.RealmData0, policy)
		dtlb1 := tlb.New(tlb.RealmData1, policy)

		faults := &fault.Dispatcher{}
		fetchUnit := decode.NewUnit(registry, itlb, pageShift)
		integerUnit := &execute.IntegerUnit{Registry: registry}
		floatUnit := &execute.FloatUnit{Registry: registry}
		memoryUnit := &execute.MemoryUnit{
			Registry: registry, DTLB0: dtlb0, DTLB1: dtlb1,
			Reservations: s.Reservations, CPU: id, PageShift: pageShift, Faults: faults,
		}
		branchUnit := &execute.BranchUnit{Registry: registry, Predictor: execute.NewPredictor()}
		palDispatcher := &pal.Dispatcher{}

		entryLog := log.WithField("cpu", id)
		pl := pipeline.New(id, registry, fetchUnit, integerUnit, floatUnit, memoryUnit, branchUnit,
			palDispatcher, faults, rf, s.Reservations, s.Barrier, cfg.CpuCount-1, entryLog)
		pl.ITLB, pl.DTLB0, pl.DTLB1 = itlb, dtlb0, dtlb1

		sourceID := id
		pl.Shootdown = func(cmd irq.Command, payload uint64) {
			s.RequestTLBShootdown(sourceID, cmd, payload)
		}

		core := cpu.New(id, pl, rf, itlb, dtlb0, dtlb1, s.Reservations, s.Barrier, s.Router, s.Mailbox, entryLog)
		s.CPUs = append(s.CPUs, core)
	}

	return s
}

// Boot sets every CPU's initial PC to the configured SRM entry point and
// CPU 0's mode to Kernel, the bring-up state an external collaborator (the
// SRM console loader) would otherwise establish by writing HWPCB fields
// directly.
func (s *System) Boot() {
	for i, c := range s.CPUs {
		hot := c.RF.Hot()
		hot.CM = regfile.ModeKernel
		hot.IPL = 31
		if i == 0 {
			hot.PC = s.Config.MemoryMap.SrmInitialPC
		}
		c.RF.SetHot(hot)
	}
}

// Run starts every CPU's run loop concurrently and blocks until the first
// one returns an error (including context cancellation) or all halt
// cleanly, fanning out with errgroup per spec.md §5's one-worker-thread-
// per-CPU model.
func (s *System) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range s.CPUs {
		core := c
		g.Go(func() error {
			if err := core.Run(gctx, s.Memory); err != nil {
				return fmt.Errorf("cpu %d: %w", core.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// PostExternalInterrupt implements spec.md §6.2's
// post_external_interrupt(cpu, source, ipl, vector): it raises the
// target CPU's pending-level bitmask through the IRQ Router.
func (s *System) PostExternalInterrupt(cpuID int, source string, ipl uint8, vector uint32) {
	s.Router.Post(cpuID, ipl, irq.Source{Vector: vector, Name: source})
}

// RequestTLBShootdown implements spec.md §6.2's
// request_tlb_shootdown(source_cpu, kind, params): it posts the IPI to
// every peer CPU's mailbox; each peer applies the invalidation itself the
// next time its run loop drains its mailbox.
func (s *System) RequestTLBShootdown(sourceCPU int, cmd irq.Command, payload uint64) {
	word := irq.Encode(cmd, payload)
	for i := range s.CPUs {
		if i == sourceCPU {
			continue
		}
		s.Mailbox.Post(i, word)
	}
}

// ReportCodeModification is the external mutator's hook for DMA or other
// writes into code pages (spec.md §4.1): every CPU is told to drop its
// decode caches for the affected lines. Each CPU applies the invalidation
// itself from its mailbox, keeping the caches single-writer.
// The decode caches invalidate wholesale, so posting the range's first
// line is sufficient; hiPA is accepted for interface completeness.
func (s *System) ReportCodeModification(loPA, hiPA uint64) {
	word := irq.Encode(irq.CmdCacheInvalidateLine, loPA)
	for i := range s.CPUs {
		s.Mailbox.Post(i, word)
	}
}

// Pause requests every CPU's run loop exit at its next instruction
// boundary.
func (s *System) Pause() {
	for _, c := range s.CPUs {
		c.Pause()
	}
}

// Halted reports whether every CPU has reached the Halted state.
func (s *System) Halted() bool {
	for _, c := range s.CPUs {
		if c.State() != cpu.StateHalted {
			return false
		}
	}
	return true
}
