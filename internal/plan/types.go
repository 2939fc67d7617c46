package plan

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Status represents the lifecycle state of a step
type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// IsTerminal returns true if the status is a final state
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Duration wraps time.Duration with human-readable YAML/JSON encoding ("15m", "1h30m")
type Duration time.Duration

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the standard duration notation
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON encodes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from a string
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML encodes the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML decodes a duration from a string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Step represents a single unit of work in the plan
type Step struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description,omitempty" json:"description,omitempty"`
	Agent         string   `yaml:"agent" json:"agent"` // owning-agent classification
	DependsOn     []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	EstimatedTime Duration `yaml:"estimated_time,omitempty" json:"estimated_time,omitempty"`
	Status        Status   `yaml:"status,omitempty" json:"status"`
}

// Plan represents the declared set of steps with inter-step dependencies
type Plan struct {
	Steps []Step `yaml:"steps" json:"steps"`
}

// StepByID returns the step with the given id, or nil
func (p *Plan) StepByID(id string) *Step {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// Validate checks the plan for structural problems: empty or duplicate step
// ids, dependencies on undeclared steps, and negative estimates.
func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan must have at least one step")
	}

	stepIDs := make(map[string]bool)
	for i, step := range p.Steps {
		if step.ID == "" {
			return fmt.Errorf("step at index %d has an empty id", i)
		}
		if stepIDs[step.ID] {
			return fmt.Errorf("duplicate step id %q at index %d", step.ID, i)
		}
		stepIDs[step.ID] = true

		if step.EstimatedTime < 0 {
			return fmt.Errorf("step %s has a negative estimated_time", step.ID)
		}
	}

	for _, step := range p.Steps {
		for _, depID := range step.DependsOn {
			if depID == step.ID {
				return fmt.Errorf("step %s depends on itself", step.ID)
			}
			if !stepIDs[depID] {
				return fmt.Errorf("step %s depends on undeclared step %q", step.ID, depID)
			}
		}
	}

	return nil
}
