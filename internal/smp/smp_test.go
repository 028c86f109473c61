package smp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReservationSetAndSuccessfulCheck(t *testing.T) {
	m := NewReservationManager(2)
	m.Set(0, 0x1000)
	require.True(t, m.CheckAndClear(0, 0x1000), "expected reservation to hold")
}

func TestReservationClearedAfterCheck(t *testing.T) {
	m := NewReservationManager(1)
	m.Set(0, 0x1000)
	m.CheckAndClear(0, 0x1000)
	require.False(t, m.CheckAndClear(0, 0x1000), "expected reservation consumed by first check")
}

func TestLLSCContendedScenario(t *testing.T) {
	m := NewReservationManager(2)
	m.Set(0, 0x1000)
	m.Set(1, 0x1000)

	// CPU 0's store-conditional succeeds and, by observing a write to the
	// line, breaks CPU 1's reservation.
	require.True(t, m.CheckAndClear(0, 0x1000), "CPU 0 SC should succeed")
	m.BreakOnLine(0x1000)

	require.False(t, m.CheckAndClear(1, 0x1000), "CPU 1 SC should fail: reservation broken by CPU 0's write")
}

func TestBreakOnLineOnlyAffectsMatchingLine(t *testing.T) {
	m := NewReservationManager(2)
	m.Set(0, 0x1000)
	m.Set(1, 0x2000)
	m.BreakOnLine(0x1000)

	require.False(t, m.Valid(0), "CPU 0 reservation should be broken")
	require.True(t, m.Valid(1), "CPU 1 reservation should survive (different line)")
}

func TestBarrierAwaitCompletesOnAllAcks(t *testing.T) {
	b := NewBarrierCoordinator()
	require.True(t, b.Initiate(2))
	go func() {
		b.Acknowledge()
		b.Acknowledge()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Await(ctx))
}

func TestBarrierAckBeforeAwaitIsNotLost(t *testing.T) {
	b := NewBarrierCoordinator()
	require.True(t, b.Initiate(1))
	b.Acknowledge() // arrives before the source starts waiting
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Await(ctx))
}

func TestBarrierTimesOutWithoutAcks(t *testing.T) {
	b := NewBarrierCoordinator()
	b.timeout = 10 * time.Millisecond
	require.True(t, b.Initiate(1))
	err := b.Await(context.Background())
	require.Error(t, err, "expected timeout error")
}

func TestBarrierNoParticipantsNoOp(t *testing.T) {
	b := NewBarrierCoordinator()
	require.False(t, b.Initiate(0), "no non-local CPUs: nothing to wait for")
}
