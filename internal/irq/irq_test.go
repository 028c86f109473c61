package irq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClaimNextPicksHighestAboveCurrent(t *testing.T) {
	r := NewRouter(2)
	r.Post(0, 5, Source{Vector: 0x100, Name: "device-a"})
	r.Post(0, 9, Source{Vector: 0x200, Name: "device-b"})
	r.Post(0, 3, Source{Vector: 0x300, Name: "device-c"})

	claimed, ok := r.ClaimNext(0, 4)
	require.True(t, ok, "expected a deliverable interrupt")
	require.Equal(t, uint8(9), claimed.IPL, "want highest above current")
	require.Equal(t, uint32(0x200), claimed.Vector)
}

func TestClaimNextClearsClaimedBit(t *testing.T) {
	r := NewRouter(1)
	r.Post(0, 5, Source{})
	r.ClaimNext(0, 0)
	require.False(t, r.HasDeliverable(0, 0), "expected bit cleared after claim")
}

func TestHasDeliverableRespectsCurrentIPL(t *testing.T) {
	r := NewRouter(1)
	r.Post(0, 3, Source{})
	require.False(t, r.HasDeliverable(0, 5), "IPL=3 must not be deliverable when current IPL=5")
	require.True(t, r.HasDeliverable(0, 2), "IPL=3 must be deliverable when current IPL=2")
}

func TestMailboxLatestWins(t *testing.T) {
	m := NewMailbox(1)
	m.Post(0, Encode(CmdHaltCPU, 0))
	m.Post(0, Encode(CmdWakeCPU, 42))

	cmd, payload := Decode(m.Fetch(0))
	require.Equal(t, CmdWakeCPU, cmd)
	require.Equal(t, uint64(42), payload)
}

func TestMailboxFetchClears(t *testing.T) {
	m := NewMailbox(1)
	m.Post(0, Encode(CmdTLBInvalidateAll, 0))
	m.Fetch(0)
	require.Zero(t, m.Peek(0), "expected mailbox cleared after Fetch")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	word := Encode(CmdTLBInvalidateVABoth, 0x1234)
	cmd, payload := Decode(word)
	require.Equal(t, CmdTLBInvalidateVABoth, cmd)
	require.Equal(t, uint64(0x1234), payload)
}
