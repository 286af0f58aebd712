package task

import (
	"fmt"
	"os"

	"Food-Rescue-Ledger/domain"

	"gopkg.in/yaml.v2"
)

type catalogFile struct {
	Tasks []domain.VolunteerTask `yaml:"tasks"`
}

// LoadCatalog reads the externally supplied task catalog.
func LoadCatalog(path string) ([]domain.VolunteerTask, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task catalog: %w", err)
	}
	return ParseCatalog(file)
}

func ParseCatalog(data []byte) ([]domain.VolunteerTask, error) {
	var catalog catalogFile
	if err := yaml.UnmarshalStrict(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse task catalog: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Tasks))
	for i, t := range catalog.Tasks {
		switch {
		case t.ID == "":
			return nil, fmt.Errorf("task catalog entry %d: %w", i, domain.NewValidationError("id", "required"))
		case seen[t.ID]:
			return nil, fmt.Errorf("task catalog entry %d: %w", i, domain.NewValidationError("id", "duplicate "+t.ID))
		case !t.Type.Valid():
			return nil, fmt.Errorf("task %s: %w", t.ID, domain.NewValidationError("type", "must be pickup or delivery"))
		case t.Points <= 0:
			return nil, fmt.Errorf("task %s: %w", t.ID, domain.NewValidationError("points", "must be positive"))
		case t.ScheduledAt.IsZero():
			return nil, fmt.Errorf("task %s: %w", t.ID, domain.NewValidationError("scheduled_at", "required"))
		}
		seen[t.ID] = true
	}
	return catalog.Tasks, nil
}
