package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlanSchema is the top-level YAML structure for a plan file: the hierarchy
// of workstreams owning milestones and activities, plus a flat dependency
// list between milestones anywhere in the plan.
type PlanSchema struct {
	Plan         PlanImport         `yaml:"plan"`
	Workstreams  []WorkstreamImport `yaml:"workstreams"`
	Dependencies []DependencyImport `yaml:"dependencies,omitempty"`
}

type PlanImport struct {
	Name string `yaml:"name"`
}

// WorkstreamImport defines one lane and everything it owns.
type WorkstreamImport struct {
	Ref        string            `yaml:"ref"`
	Name       string            `yaml:"name"`
	Color      string            `yaml:"color,omitempty"`
	Milestones []MilestoneImport `yaml:"milestones,omitempty"`
	Activities []ActivityImport  `yaml:"activities,omitempty"`
}

type MilestoneImport struct {
	Ref      string `yaml:"ref"`
	Name     string `yaml:"name"`
	Deadline string `yaml:"deadline,omitempty"` // YYYY-MM-DD
	Status   string `yaml:"status,omitempty"`
}

// ActivityImport connects a source milestone to same-lane targets and to
// supported milestones that may live in other lanes.
type ActivityImport struct {
	Source   string   `yaml:"source"`
	Targets  []string `yaml:"targets,omitempty"`
	Supports []string `yaml:"supports,omitempty"`
}

type DependencyImport struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// LoadPlanSchema reads and parses a YAML plan file.
func LoadPlanSchema(path string) (*PlanSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	var schema PlanSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	return &schema, nil
}
