package approval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// awaitAsync starts Await in a goroutine and returns its result channel,
// waiting until the gate has registered the action.
func awaitAsync(t *testing.T, g *Gate, ctx context.Context, id string) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- g.Await(ctx, id) }()
	require.Eventually(t, func() bool { return g.IsAwaitingApproval(id) },
		time.Second, time.Millisecond)
	return done
}

func TestGateApprove(t *testing.T) {
	g := NewGate()
	done := awaitAsync(t, g, context.Background(), "Review/Approve")

	require.NoError(t, g.Approve("Review/Approve"))
	assert.NoError(t, <-done)
	assert.False(t, g.IsAwaitingApproval("Review/Approve"))
}

func TestGateReject(t *testing.T) {
	g := NewGate()
	done := awaitAsync(t, g, context.Background(), "Review/Approve")

	require.NoError(t, g.Reject("Review/Approve", "diff shows unintended deletions"))
	err := <-done
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorContains(t, err, "unintended deletions")
}

func TestGateRejectWithoutReason(t *testing.T) {
	g := NewGate()
	done := awaitAsync(t, g, context.Background(), "Review/Approve")

	require.NoError(t, g.Reject("Review/Approve", ""))
	assert.ErrorIs(t, <-done, ErrRejected)
}

func TestGateContextCancellation(t *testing.T) {
	g := NewGate()
	ctx, cancel := context.WithCancel(context.Background())
	done := awaitAsync(t, g, ctx, "Review/Approve")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestGateDecideWithoutWaiter(t *testing.T) {
	g := NewGate()
	assert.ErrorIs(t, g.Approve("Review/Approve"), ErrNotAwaitingApproval)
	assert.ErrorIs(t, g.Reject("Review/Approve", "nope"), ErrNotAwaitingApproval)
}

func TestGatePendingApprovals(t *testing.T) {
	g := NewGate()
	assert.Empty(t, g.PendingApprovals())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	doneA := awaitAsync(t, g, ctx, "Review/Approve")
	doneB := awaitAsync(t, g, ctx, "Review/SecondApprove")

	assert.ElementsMatch(t, []string{"Review/Approve", "Review/SecondApprove"}, g.PendingApprovals())

	require.NoError(t, g.Approve("Review/Approve"))
	require.NoError(t, g.Approve("Review/SecondApprove"))
	assert.NoError(t, <-doneA)
	assert.NoError(t, <-doneB)
	assert.Empty(t, g.PendingApprovals())
}
