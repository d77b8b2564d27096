package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployfab/stagepipe/internal/approval"
	"github.com/deployfab/stagepipe/internal/config"
	"github.com/deployfab/stagepipe/internal/pipeline"
	"github.com/deployfab/stagepipe/internal/toolkit"
)

// recordingRunner records invocation order and can fail chosen actions.
type recordingRunner struct {
	mu      sync.Mutex
	calls   []string
	failOn  map[string]error
	blockOn map[string]chan struct{} // invocation waits until the channel closes
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{failOn: make(map[string]error), blockOn: make(map[string]chan struct{})}
}

func (r *recordingRunner) Run(ctx context.Context, inv toolkit.Invocation) error {
	id := ActionID(inv.Stage, inv.Action)
	r.mu.Lock()
	r.calls = append(r.calls, id)
	block := r.blockOn[id]
	err := r.failOn[id]
	r.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (r *recordingRunner) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func assemble(t *testing.T, approvalStage bool) *pipeline.Pipeline {
	t.Helper()
	m := &config.Model{
		SourceRepository:    "platform-accelerator",
		SourceBranch:        "main",
		EnableApprovalStage: approvalStage,
	}
	p, err := pipeline.Assemble(context.Background(), m)
	require.NoError(t, err)
	return p
}

func TestRunExecutesStagesSequentially(t *testing.T) {
	runner := newRecordingRunner()
	p := assemble(t, false)

	require.NoError(t, New(runner, nil).Run(context.Background(), p))

	calls := runner.recorded()
	// Every action of every stage ran exactly once.
	total := 0
	for _, s := range p.Stages {
		total += len(s.Actions)
	}
	assert.Len(t, calls, total)

	// Stage boundaries are respected: indexes of a stage's calls all precede
	// those of the next stage.
	position := make(map[string]int, len(calls))
	for i, id := range calls {
		position[id] = i
	}
	lastSeen := -1
	for _, s := range p.Stages {
		stageMax := -1
		for _, a := range s.Actions {
			idx, ok := position[ActionID(s.Name, a.Name)]
			require.Truef(t, ok, "action %s/%s never ran", s.Name, a.Name)
			assert.Greaterf(t, idx, lastSeen, "action %s/%s ran before the prior stage finished", s.Name, a.Name)
			if idx > stageMax {
				stageMax = idx
			}
		}
		lastSeen = stageMax
	}
}

func TestRunRespectsWaveOrder(t *testing.T) {
	runner := newRecordingRunner()
	p := assemble(t, false)

	require.NoError(t, New(runner, nil).Run(context.Background(), p))

	position := make(map[string]int)
	for i, id := range runner.recorded() {
		position[id] = i
	}
	prep := position[ActionID(pipeline.StageDeploy, "Network_Prepare")]
	vpc := position[ActionID(pipeline.StageDeploy, "Network_VPCs")]
	assoc := position[ActionID(pipeline.StageDeploy, "Network_Associations")]
	assert.Less(t, prep, vpc)
	assert.Less(t, vpc, assoc)
}

func TestRunWaveActionsRunConcurrently(t *testing.T) {
	runner := newRecordingRunner()
	release := make(chan struct{})
	// All three wave-1 Deploy actions must be in flight at once before any
	// may finish.
	for _, name := range []string{"Network_Prepare", "Security", "Operations"} {
		runner.blockOn[ActionID(pipeline.StageDeploy, name)] = release
	}
	p := assemble(t, false)

	done := make(chan error, 1)
	go func() { done <- New(runner, nil).Run(context.Background(), p) }()

	require.Eventually(t, func() bool {
		inFlight := 0
		for _, id := range runner.recorded() {
			switch id {
			case ActionID(pipeline.StageDeploy, "Network_Prepare"),
				ActionID(pipeline.StageDeploy, "Security"),
				ActionID(pipeline.StageDeploy, "Operations"):
				inFlight++
			}
		}
		return inFlight == 3
	}, time.Second, time.Millisecond, "wave-1 actions never ran concurrently")

	close(release)
	assert.NoError(t, <-done)
}

func TestRunAbortsOnFailure(t *testing.T) {
	runner := newRecordingRunner()
	boom := errors.New("synthesis failed")
	runner.failOn[ActionID(pipeline.StageBootstrap, "Bootstrap")] = boom
	p := assemble(t, false)

	err := New(runner, nil).Run(context.Background(), p)
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, `stage "Bootstrap"`)

	for _, id := range runner.recorded() {
		assert.NotContains(t, id, pipeline.StageLogging, "stage after the failure must not start")
		assert.NotContains(t, id, pipeline.StageDeploy, "stage after the failure must not start")
	}
}

func TestRunApproval(t *testing.T) {
	t.Run("approval releases the run", func(t *testing.T) {
		runner := newRecordingRunner()
		gate := approval.NewGate()
		p := assemble(t, true)

		done := make(chan error, 1)
		go func() { done <- New(runner, gate).Run(context.Background(), p) }()

		id := ActionID(pipeline.StageReview, "Approve")
		require.Eventually(t, func() bool { return gate.IsAwaitingApproval(id) },
			time.Second, time.Millisecond)
		require.NoError(t, gate.Approve(id))
		assert.NoError(t, <-done)
	})

	t.Run("rejection fails the run", func(t *testing.T) {
		runner := newRecordingRunner()
		gate := approval.NewGate()
		p := assemble(t, true)

		done := make(chan error, 1)
		go func() { done <- New(runner, gate).Run(context.Background(), p) }()

		id := ActionID(pipeline.StageReview, "Approve")
		require.Eventually(t, func() bool { return gate.IsAwaitingApproval(id) },
			time.Second, time.Millisecond)
		require.NoError(t, gate.Reject(id, "changes not reviewed"))

		err := <-done
		require.ErrorIs(t, err, approval.ErrRejected)

		for _, rec := range runner.recorded() {
			assert.NotContains(t, rec, pipeline.StageLogging, "rejected run must not continue")
		}
	})

	t.Run("approval action without a gate fails", func(t *testing.T) {
		runner := newRecordingRunner()
		p := assemble(t, true)

		err := New(runner, nil).Run(context.Background(), p)
		assert.ErrorContains(t, err, "no approval gate configured")
	})
}

func TestRunContextCancellation(t *testing.T) {
	runner := newRecordingRunner()
	gate := approval.NewGate()
	p := assemble(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(runner, gate).Run(ctx, p) }()

	id := ActionID(pipeline.StageReview, "Approve")
	require.Eventually(t, func() bool { return gate.IsAwaitingApproval(id) },
		time.Second, time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestActionID(t *testing.T) {
	assert.Equal(t, "Review/Approve", ActionID("Review", "Approve"))
	assert.Equal(t, fmt.Sprintf("%s/%s", pipeline.StageDeploy, "Security"),
		ActionID(pipeline.StageDeploy, "Security"))
}
