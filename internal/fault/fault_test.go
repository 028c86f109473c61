package fault

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetPendingKeepsHigherPriority(t *testing.T) {
	var d Dispatcher
	d.SetPending(Event{Class: ClassMachineCheck})
	d.SetPending(Event{Class: ClassUnalign}) // lower priority, must not overwrite

	ev, ok := d.Peek()
	require.True(t, ok)
	require.Equal(t, ClassMachineCheck, ev.Class, "expected MachineCheck to survive")
}

func TestSetPendingUpgrades(t *testing.T) {
	var d Dispatcher
	d.SetPending(Event{Class: ClassUnalign})
	d.SetPending(Event{Class: ClassReset})

	ev, _ := d.Peek()
	require.Equal(t, ClassReset, ev.Class, "expected Reset to supersede Unalign")
}

func TestClearRemovesPending(t *testing.T) {
	var d Dispatcher
	d.SetPending(Event{Class: ClassOpcDec})
	d.Clear()
	require.False(t, d.EventPending(), "expected no pending event after Clear")
}

func TestVectorOffsetsMatchEV6Table(t *testing.T) {
	cases := map[Class]uint64{
		ClassReset:         0x000,
		ClassMachineCheck:  0x080,
		ClassArithmetic:    0x100,
		ClassInterrupt:     0x180,
		ClassDTBMissSingle: 0x200,
		ClassDTBMissDouble: 0x280,
		ClassITBMiss:       0x300,
		ClassITBAcv:        0x380,
		ClassUnalign:       0x480,
		ClassOpcDec:        0x500,
		ClassFen:           0x580,
	}
	for class, want := range cases {
		require.Equal(t, want, VectorOffset(class), "VectorOffset(%v)", class)
	}
}

func TestCallPalEntryFormula(t *testing.T) {
	got := CallPalEntry(0x80000000, 0x40)
	want := uint64(0x80000000 + (0x40 << 6))
	require.Equal(t, want, got)
}
