// Package fault implements the per-CPU Fault Dispatcher: a single-slot
// pending-event holder that prioritizes and reports synchronous and
// asynchronous events on their way to the PAL Dispatcher.
package fault

// Class enumerates the EV6 exception classes spec.md §3/§7 names.
type Class int

const (
	ClassReset Class = iota
	ClassMachineCheck
	ClassArithmetic
	ClassInterrupt
	ClassDTBMissSingle
	ClassDTBMissDouble
	ClassDTBAcv
	ClassITBMiss
	ClassITBAcv
	ClassUnalign
	ClassOpcDec
	ClassFaultOnRead
	ClassFaultOnWrite
	ClassFaultOnExecute
	ClassFen
	ClassCallPal
)

// Priority orders events for supersession: a higher-priority pending event
// overwrites a lower one set in the same cycle.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityCritical
	PriorityReset
)

func (c Class) Priority() Priority {
	switch c {
	case ClassReset:
		return PriorityReset
	case ClassMachineCheck:
		return PriorityCritical
	default:
		return PriorityNormal
	}
}

// Kind distinguishes the broad event category.
type Kind int

const (
	KindException Kind = iota
	KindInterrupt
	KindMachineCheck
	KindReset
	KindAST
)

// Payload carries class-specific delivery data (spec.md §4.5's argument
// packaging table draws from this).
type Payload struct {
	FaultVA     uint64
	ASN         uint32
	IsWrite     bool
	FaultingPC  uint64
	ExcSum      uint64
	PalFunction uint32
	IntrVector  uint32
	IntrIPL     uint8
	McheckSyndrome uint64
	McheckReason   uint64
	McheckAddr     uint64
}

// Event is a PendingEvent descriptor: one fault, trap, or interrupt
// awaiting delivery to the PAL Dispatcher.
type Event struct {
	Kind       Kind
	Class      Class
	FaultingPC uint64
	FaultingVA uint64
	ASN        uint32
	Mode       uint8
	Payload    Payload
}

// Dispatcher holds at most one pending event per CPU.
type Dispatcher struct {
	pending *Event
}

// EventPending reports whether an event is waiting for delivery; this is
// the hot-path check made once per pipeline tick.
func (d *Dispatcher) EventPending() bool { return d.pending != nil }

// SetPending installs ev unless a higher-or-equal priority event is
// already pending, per the "higher-priority events supersede lower if
// delivered in the same cycle" rule.
func (d *Dispatcher) SetPending(ev Event) {
	if d.pending == nil || ev.Class.Priority() > d.pending.Class.Priority() {
		e := ev
		d.pending = &e
	}
}

// Clear drops the pending event; called when the pipeline flushes to the
// PAL vector (the event has now been consumed).
func (d *Dispatcher) Clear() { d.pending = nil }

// Peek returns the pending event without clearing it.
func (d *Dispatcher) Peek() (Event, bool) {
	if d.pending == nil {
		return Event{}, false
	}
	return *d.pending, true
}

// HasArithmetic reports whether the pending event is an arithmetic trap,
// the condition TRAPB checks for.
func (d *Dispatcher) HasArithmetic() bool {
	return d.pending != nil && d.pending.Class == ClassArithmetic
}
