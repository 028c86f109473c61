// Package execute implements the four sibling execute units — Integer ALU,
// Floating-Point ALU, Memory Unit, Branch/Control Unit — and the BoxResult
// event-bus record they return.
package execute

import "github.com/alphacore/ev6/internal/fault"

// BoxResult is the flag set an execute unit returns summarizing
// side-effect requests. It uses a fluent/builder style for composition,
// the approach the Design Notes call "already latent in the source" and
// ask to be formalized — this avoids back-pointers between the execute
// units and the pipeline/PAL dispatcher entirely.
type BoxResult struct {
	NeedsWriteback   bool
	WritebackTarget  uint32
	Payload          uint64
	WritesFloat      bool

	RequestMemoryBarrier   bool
	DrainWriteBuffers      bool
	FlushPipeline          bool
	EnterPALMode           bool
	MispredictBranch       bool
	Halt                   bool
	Retry                  bool
	InvalidateDecodeCaches bool

	FaultDispatched bool
	FaultEvent      fault.Event

	RedirectPC  uint64
	HasRedirect bool
	PALFunction uint32

	// IsREI marks a HW_REI (return from exception/interrupt) control
	// transfer; the pipeline resolves this against the PAL Dispatcher's
	// Return path rather than Enter, since it restores context instead of
	// saving it.
	IsREI bool
}

// WithWriteback marks the result as writing target with value.
func (b BoxResult) WithWriteback(target uint32, value uint64) BoxResult {
	b.NeedsWriteback = true
	b.WritebackTarget = target
	b.Payload = value
	return b
}

// WithFloatWriteback marks the result as writing a floating-point target.
func (b BoxResult) WithFloatWriteback(target uint32, value uint64) BoxResult {
	b.NeedsWriteback = true
	b.WritebackTarget = target
	b.Payload = value
	b.WritesFloat = true
	return b
}

// WithFault attaches a fault event and suppresses writeback, guaranteeing
// the precise-fault invariant (a faulting instruction never writes its
// destination).
func (b BoxResult) WithFault(ev fault.Event) BoxResult {
	b.NeedsWriteback = false
	b.FaultDispatched = true
	b.FaultEvent = ev
	b.FlushPipeline = true
	return b
}

// WithRedirect sets a PC redirect (taken branch, REI target, PAL entry).
func (b BoxResult) WithRedirect(pc uint64) BoxResult {
	b.HasRedirect = true
	b.RedirectPC = pc
	return b
}

// WithBarrier marks the result as requesting a memory barrier and draining
// write buffers (MB) — WMB variants set DrainWriteBuffers without
// RequestMemoryBarrier.
func (b BoxResult) WithBarrier(full bool) BoxResult {
	b.DrainWriteBuffers = true
	b.RequestMemoryBarrier = full
	return b
}

// WithDecodeInvalidate marks an instruction-memory barrier: the pipeline
// drops both decode caches and flushes (CALL_PAL IMB).
func (b BoxResult) WithDecodeInvalidate() BoxResult {
	b.InvalidateDecodeCaches = true
	b.FlushPipeline = true
	return b
}

// WithFlush marks a bare pipeline-flush request (TRAPB/EXCB draining an
// outstanding trap) with no redirect attached.
func (b BoxResult) WithFlush() BoxResult {
	b.FlushPipeline = true
	return b
}

// WithEnterPAL marks the result as a CALL_PAL dispatch request.
func (b BoxResult) WithEnterPAL(function uint32) BoxResult {
	b.EnterPALMode = true
	b.PALFunction = function
	b.FlushPipeline = true
	return b
}

// WithMispredict marks a branch misprediction requiring a pipeline flush
// and redirect.
func (b BoxResult) WithMispredict(target uint64) BoxResult {
	b.MispredictBranch = true
	b.FlushPipeline = true
	return b.WithRedirect(target)
}

// WithHalt marks the result as a processor halt request (CALL_PAL HALT).
func (b BoxResult) WithHalt() BoxResult {
	b.Halt = true
	b.FlushPipeline = true
	return b
}

// WithREI marks the result as a HW_REI control transfer.
func (b BoxResult) WithREI() BoxResult {
	b.IsREI = true
	b.FlushPipeline = true
	return b
}
