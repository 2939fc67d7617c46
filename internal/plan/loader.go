package plan

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/superagent-dev/superagent/internal/errors"
)

// LoadPlan reads a plan from a YAML or JSON file, chosen by extension.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewPlanNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read plan file", err)
	}

	var p Plan
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, errors.NewFileUnmarshalError(path, "JSON", err)
		}
	default:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, errors.NewFileUnmarshalError(path, "YAML", err)
		}
	}

	for i := range p.Steps {
		if p.Steps[i].Status == "" {
			p.Steps[i].Status = StatusPending
		}
	}

	return &p, nil
}

// SavePlan writes a plan to a JSON file.
func SavePlan(p *Plan, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "failed to marshal plan", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write plan file", err)
	}

	return nil
}
