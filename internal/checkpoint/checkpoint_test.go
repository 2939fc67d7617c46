package checkpoint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superagent-dev/superagent/internal/plan"
)

func testPlan() *plan.Plan {
	return &plan.Plan{Steps: []plan.Step{
		{ID: "setup", Name: "Setup", Agent: "devops"},
		{ID: "api", Name: "API", Agent: "backend", DependsOn: []string{"setup"}},
		{ID: "ui", Name: "UI", Agent: "frontend", DependsOn: []string{"setup"}},
	}}
}

func TestNewState(t *testing.T) {
	state := NewState("run-1", testPlan())

	assert.Equal(t, "run-1", state.RunID)
	assert.Equal(t, "running", state.Status)
	require.Len(t, state.Steps, 3)
	for _, rec := range state.Steps {
		assert.Equal(t, plan.StatusPending, rec.Status)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := NewManager(t.TempDir())
	state := NewState("run-1", testPlan())
	state.UpdateStep("setup", plan.StatusRunning, nil)
	state.UpdateStep("setup", plan.StatusCompleted, nil)

	require.NoError(t, m.Save(state))
	require.True(t, m.Exists("run-1"))

	loaded, err := m.Load("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, plan.StatusCompleted, loaded.Steps["setup"].Status)
	assert.Equal(t, 1, loaded.Steps["setup"].Attempts)
}

func TestLoadMissing(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Load("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveNil(t *testing.T) {
	m := NewManager(t.TempDir())
	require.Error(t, m.Save(nil))
}

func TestDelete(t *testing.T) {
	m := NewManager(t.TempDir())
	state := NewState("run-1", testPlan())
	require.NoError(t, m.Save(state))

	require.NoError(t, m.Delete("run-1"))
	assert.False(t, m.Exists("run-1"))

	// Deleting a missing checkpoint is not an error
	require.NoError(t, m.Delete("run-1"))
}

func TestList(t *testing.T) {
	m := NewManager(t.TempDir())

	ids, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, m.Save(NewState("run-b", testPlan())))
	require.NoError(t, m.Save(NewState("run-a", testPlan())))

	ids, err = m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"run-a", "run-b"}, ids)
}

func TestUpdateStepAttempts(t *testing.T) {
	state := NewState("run-1", testPlan())

	state.UpdateStep("api", plan.StatusRunning, nil)
	state.UpdateStep("api", plan.StatusFailed, errors.New("boom"))
	state.UpdateStep("api", plan.StatusRunning, nil)
	state.UpdateStep("api", plan.StatusCompleted, nil)

	rec := state.Steps["api"]
	assert.Equal(t, 2, rec.Attempts)
	assert.Equal(t, plan.StatusCompleted, rec.Status)
	assert.Equal(t, "boom", rec.Error)
	assert.False(t, rec.CompletedAt.IsZero())
}

func TestCompletedSetFeedsScheduler(t *testing.T) {
	p := testPlan()
	g, err := plan.BuildGraph(p.Steps)
	require.NoError(t, err)

	state := NewState("run-1", p)
	assert.Equal(t, []string{"setup"}, g.ReadySteps(state.CompletedSet()))

	state.UpdateStep("setup", plan.StatusCompleted, nil)
	assert.Equal(t, []string{"api", "ui"}, g.ReadySteps(state.CompletedSet()))

	// Skipped counts as satisfied for dependents
	state.UpdateStep("api", plan.StatusSkipped, nil)
	assert.Equal(t, []string{"ui"}, g.ReadySteps(state.CompletedSet()))
}

func TestProgressAndCompletion(t *testing.T) {
	state := NewState("run-1", testPlan())
	assert.Equal(t, 0.0, state.Progress())
	assert.False(t, state.IsComplete())

	state.UpdateStep("setup", plan.StatusCompleted, nil)
	assert.InDelta(t, 1.0/3.0, state.Progress(), 0.001)

	state.UpdateStep("api", plan.StatusCompleted, nil)
	state.UpdateStep("ui", plan.StatusSkipped, nil)
	assert.Equal(t, 1.0, state.Progress())
	assert.True(t, state.IsComplete())
	assert.Empty(t, state.PendingSteps())
}

func TestFailedSteps(t *testing.T) {
	state := NewState("run-1", testPlan())
	state.UpdateStep("api", plan.StatusFailed, errors.New("boom"))

	assert.Equal(t, []string{"api"}, state.FailedSteps())
	assert.Equal(t, []string{"setup", "ui"}, state.PendingSteps())
}
