package cpu

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

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

func newTestCore(t *testing.T) (*Core, memiface.Memory) {
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
	itlb.Install(0, 0, 0, true, tlb.Gran8K, allPerm, false, false, false)

	rf := regfile.New()
	faults := &fault.Dispatcher{}
	fetchUnit := decode.NewUnit(registry, itlb, 13)
	integerUnit := &execute.IntegerUnit{Registry: registry}
	floatUnit := &execute.FloatUnit{Registry: registry}
	reservations := smp.NewReservationManager(1)
	memoryUnit := &execute.MemoryUnit{Registry: registry, DTLB0: dtlb0, DTLB1: dtlb1, Reservations: reservations, CPU: 0, PageShift: 13, Faults: faults}
	branchUnit := &execute.BranchUnit{Registry: registry, Predictor: execute.NewPredictor()}
	palDispatcher := &pal.Dispatcher{}
	barrier := smp.NewBarrierCoordinator()

	pl := pipeline.New(0, registry, fetchUnit, integerUnit, floatUnit, memoryUnit, branchUnit,
		palDispatcher, faults, rf, reservations, barrier, 0, nil)

	router := irq.NewRouter(1)
	mailbox := irq.NewMailbox(1)
	core := New(0, pl, rf, itlb, dtlb0, dtlb1, reservations, barrier, router, mailbox, nil)

	mem := memiface.NewFlat(1 << 16)
	return core, mem
}

func TestCoreRunHaltsOnCallPalHalt(t *testing.T) {
	core, mem := newTestCore(t)
	mem.Write32(0, grain.OpcodeCallPal<<26)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, core.Run(ctx, mem))
	require.Equal(t, StateHalted, core.State())
}

func TestCoreRunStopsOnContextCancel(t *testing.T) {
	core, mem := newTestCore(t)
	// ADDL R0,R0,R0 forever: never halts on its own.
	mem.Write32(0, 0x10<<26)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, core.Run(ctx, mem), "expected context-cancellation error")
	require.Equal(t, StateHalted, core.State(), "want Halted after cancellation")
}

func TestCorePauseStopsRunLoop(t *testing.T) {
	core, mem := newTestCore(t)
	mem.Write32(0, 0x10<<26)
	core.Pause()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, core.Run(ctx, mem))
	require.Equal(t, StatePaused, core.State())
}

func TestDrainMailboxTLBInvalidateAll(t *testing.T) {
	core, _ := newTestCore(t)
	allPerm := tlb.PermissionSet{
		Read: [4]bool{true, true, true, true}, Write: [4]bool{true, true, true, true}, Execute: [4]bool{true, true, true, true},
	}
	core.ITLB.Install(5, 5, 0, true, tlb.Gran8K, allPerm, false, false, false)
	_, _, hit := core.ITLB.Lookup(5<<13, 0, tlb.ModeKernel, tlb.AccessExecute)
	require.True(t, hit, "setup: expected ITLB hit before invalidation")

	core.Mailbox.Post(0, irq.Encode(irq.CmdTLBInvalidateAll, 0))
	core.drainMailbox(context.Background())

	_, _, hit = core.ITLB.Lookup(5<<13, 0, tlb.ModeKernel, tlb.AccessExecute)
	require.False(t, hit, "expected ITLB entry invalidated after CmdTLBInvalidateAll")
}

func TestDrainMailboxHaltCPU(t *testing.T) {
	core, _ := newTestCore(t)
	core.Mailbox.Post(0, irq.Encode(irq.CmdHaltCPU, 0))
	core.drainMailbox(context.Background())
	require.Equal(t, StateHalted, core.State())
}

func TestDrainMailboxCacheInvalidateBreaksReservation(t *testing.T) {
	core, _ := newTestCore(t)
	core.Reservations.Set(0, 0x100)
	core.Mailbox.Post(0, irq.Encode(irq.CmdCacheInvalidateLine, 0x100))
	core.drainMailbox(context.Background())
	require.False(t, core.Reservations.Valid(0), "expected reservation broken by cache-line invalidate IPI")
}

func TestClaimInterruptInstallsPendingEvent(t *testing.T) {
	core, _ := newTestCore(t)
	core.Router.Post(0, 16, irq.Source{Vector: 0x200, Name: "test-device"})

	core.claimInterrupt()

	ev, ok := core.Pipeline.Faults.Peek()
	require.True(t, ok, "expected a pending event after claiming an interrupt")
	require.Equal(t, fault.KindInterrupt, ev.Kind)
	require.Equal(t, uint32(0x200), ev.Payload.IntrVector)
}

func TestCheckASTDeliversWhenEnabledAndLowIPL(t *testing.T) {
	core, _ := newTestCore(t)
	core.RF.WriteIPR(regfile.IprASTEN, 0b0001)
	core.RF.WriteIPR(regfile.IprASTSR, 0b0001)

	core.checkAST()

	ev, ok := core.Pipeline.Faults.Peek()
	require.True(t, ok, "expected a pending AST event")
	require.Equal(t, fault.KindAST, ev.Kind)
	require.Zero(t, core.RF.ReadIPR(regfile.IprASTSR), "the delivered AST request must be consumed")
}

func TestCheckASTBlockedByIPL(t *testing.T) {
	core, _ := newTestCore(t)
	core.RF.WriteIPR(regfile.IprASTEN, 1)
	core.RF.WriteIPR(regfile.IprASTSR, 1)
	hot := core.RF.Hot()
	hot.IPL = 31
	core.RF.SetHot(hot)

	core.checkAST()

	_, ok := core.Pipeline.Faults.Peek()
	require.False(t, ok, "ASTs must not deliver above the AST IPL")
}

func TestResetQueuesHighestPriorityEvent(t *testing.T) {
	core, _ := newTestCore(t)
	core.Pipeline.Faults.SetPending(fault.Event{Class: fault.ClassMachineCheck})
	core.Reset()

	ev, _ := core.Pipeline.Faults.Peek()
	require.Equal(t, fault.ClassReset, ev.Class, "reset supersedes even a machine check")
}

func TestDrainMailboxCacheLineIPIDropsDecodeCache(t *testing.T) {
	core, mem := newTestCore(t)
	mem.Write32(0, 0x10<<26) // ADDL R0,R0,R0
	core.Pipeline.Fetch.FetchNext(mem, 0, 0, tlb.ModeKernel, false, 0)

	core.Mailbox.Post(0, irq.Encode(irq.CmdCacheInvalidateLine, 0))
	core.drainMailbox(context.Background())

	// A rewritten word at the same PC must decode fresh.
	mem.Write32(0, 0x11<<26) // AND R0,R0,R0
	fr := core.Pipeline.Fetch.FetchNext(mem, 0, 0, tlb.ModeKernel, false, 0)
	require.Equal(t, decode.FetchOk, fr.Outcome)
	g := core.Pipeline.Registry.Grain(fr.Ins.Grain)
	require.Equal(t, "AND", g.Mnemonic, "stale cached decode must be unreachable after the cache-line IPI")
}
