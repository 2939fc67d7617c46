package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/superagent-dev/superagent/internal/plan"
)

// State records the progress of one plan run so an interrupted run can be
// resumed without re-executing completed steps.
type State struct {
	Version   string                `json:"version"`
	RunID     string                `json:"run_id"`
	StartedAt time.Time             `json:"started_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Status    string                `json:"status"` // running, completed, failed
	Steps     map[string]StepRecord `json:"steps"`
	Metadata  map[string]string     `json:"metadata,omitempty"`
}

// StepRecord is the persisted execution state of one step
type StepRecord struct {
	ID          string      `json:"id"`
	Status      plan.Status `json:"status"`
	StartedAt   time.Time   `json:"started_at,omitempty"`
	CompletedAt time.Time   `json:"completed_at,omitempty"`
	Error       string      `json:"error,omitempty"`
	Attempts    int         `json:"attempts"`
}

// Manager handles checkpoint persistence and recovery
type Manager struct {
	dir string
}

// NewManager creates a checkpoint manager writing under dir
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// NewState creates a fresh run state for a plan, with every step pending
func NewState(runID string, p *plan.Plan) *State {
	now := time.Now()
	s := &State{
		Version:   "1.0",
		RunID:     runID,
		StartedAt: now,
		UpdatedAt: now,
		Status:    "running",
		Steps:     make(map[string]StepRecord, len(p.Steps)),
	}
	for _, step := range p.Steps {
		s.Steps[step.ID] = StepRecord{ID: step.ID, Status: plan.StatusPending}
	}
	return s
}

// Save persists the run state to disk
func (m *Manager) Save(state *State) error {
	if state == nil {
		return fmt.Errorf("checkpoint state is nil")
	}

	state.UpdatedAt = time.Now()

	if err := os.MkdirAll(m.dir, 0750); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint state: %w", err)
	}

	path := filepath.Join(m.dir, state.RunID+".json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}

	return nil
}

// Load reads a run state from disk
func (m *Manager) Load(runID string) (*State, error) {
	path := filepath.Join(m.dir, runID+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("checkpoint not found: %s", runID)
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint state: %w", err)
	}

	return &state, nil
}

// Exists checks whether a checkpoint exists for the given run
func (m *Manager) Exists(runID string) bool {
	_, err := os.Stat(filepath.Join(m.dir, runID+".json"))
	return err == nil
}

// Delete removes a checkpoint file
func (m *Manager) Delete(runID string) error {
	if err := os.Remove(filepath.Join(m.dir, runID+".json")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// List returns all checkpointed run ids
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	var runIDs []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			runIDs = append(runIDs, entry.Name()[:len(entry.Name())-5])
		}
	}

	sort.Strings(runIDs)
	return runIDs, nil
}

// UpdateStep transitions a step's execution state
func (s *State) UpdateStep(stepID string, status plan.Status, err error) {
	rec, exists := s.Steps[stepID]
	if !exists {
		rec = StepRecord{ID: stepID, Status: plan.StatusPending}
	}

	old := rec.Status
	rec.Status = status

	now := time.Now()
	if old != plan.StatusRunning && status == plan.StatusRunning {
		rec.StartedAt = now
		rec.Attempts++
	}
	if status.IsTerminal() {
		rec.CompletedAt = now
	}

	if err != nil {
		rec.Error = err.Error()
	}

	s.Steps[stepID] = rec
	s.UpdatedAt = now
}

// CompletedSet returns the completed step ids as a set, in the shape the
// scheduler's ready-step queries expect.
func (s *State) CompletedSet() map[string]bool {
	completed := make(map[string]bool)
	for id, rec := range s.Steps {
		if rec.Status == plan.StatusCompleted || rec.Status == plan.StatusSkipped {
			completed[id] = true
		}
	}
	return completed
}

// PendingSteps returns all steps that have not reached a terminal state
func (s *State) PendingSteps() []string {
	var pending []string
	for id, rec := range s.Steps {
		if !rec.Status.IsTerminal() {
			pending = append(pending, id)
		}
	}
	sort.Strings(pending)
	return pending
}

// FailedSteps returns all failed step ids
func (s *State) FailedSteps() []string {
	var failed []string
	for id, rec := range s.Steps {
		if rec.Status == plan.StatusFailed {
			failed = append(failed, id)
		}
	}
	sort.Strings(failed)
	return failed
}

// IsComplete returns true once every step has completed or been skipped
func (s *State) IsComplete() bool {
	for _, rec := range s.Steps {
		if rec.Status != plan.StatusCompleted && rec.Status != plan.StatusSkipped {
			return false
		}
	}
	return len(s.Steps) > 0
}

// Progress returns the completion fraction (0.0 to 1.0)
func (s *State) Progress() float64 {
	if len(s.Steps) == 0 {
		return 0.0
	}

	done := 0
	for _, rec := range s.Steps {
		if rec.Status == plan.StatusCompleted || rec.Status == plan.StatusSkipped {
			done++
		}
	}

	return float64(done) / float64(len(s.Steps))
}
