package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors returned by gate operations.
var (
	ErrNotAwaitingApproval = errors.New("action is not awaiting approval")
	ErrRejected            = errors.New("approval rejected")
)

// decision is the outcome delivered to a waiting action.
type decision struct {
	approved bool
	reason   string
}

// Gate holds approval actions until an external approver decides. Await
// blocks the calling goroutine; Approve and Reject release it. Actions are
// keyed by "<stage>/<action>".
type Gate struct {
	mu      sync.Mutex
	pending map[string]chan decision
}

// NewGate creates an empty approval gate.
func NewGate() *Gate {
	return &Gate{pending: make(map[string]chan decision)}
}

// Await blocks until the action is approved, rejected, or the context is
// cancelled. Rejection returns ErrRejected wrapped with the approver's
// reason; the run is not retried.
func (g *Gate) Await(ctx context.Context, id string) error {
	g.mu.Lock()
	ch, ok := g.pending[id]
	if !ok {
		ch = make(chan decision, 1)
		g.pending[id] = ch
	}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, id)
		g.mu.Unlock()
	}()

	select {
	case d := <-ch:
		if !d.approved {
			if d.reason == "" {
				return fmt.Errorf("%w: %s", ErrRejected, id)
			}
			return fmt.Errorf("%w: %s: %s", ErrRejected, id, d.reason)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Approve releases an action that is awaiting approval.
func (g *Gate) Approve(id string) error {
	return g.decide(id, decision{approved: true})
}

// Reject fails an action that is awaiting approval with the given reason.
func (g *Gate) Reject(id, reason string) error {
	return g.decide(id, decision{approved: false, reason: reason})
}

func (g *Gate) decide(id string, d decision) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.pending[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotAwaitingApproval, id)
	}
	select {
	case ch <- d:
		return nil
	default:
		return fmt.Errorf("%w: %s already decided", ErrNotAwaitingApproval, id)
	}
}

// PendingApprovals returns the IDs currently awaiting approval. The
// returned slice is a copy and safe to modify.
func (g *Gate) PendingApprovals() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, len(g.pending))
	for id := range g.pending {
		ids = append(ids, id)
	}
	return ids
}

// IsAwaitingApproval reports whether the given action is currently held.
func (g *Gate) IsAwaitingApproval(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.pending[id]
	return ok
}
