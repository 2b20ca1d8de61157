package importer

import (
	"fmt"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
)

// ValidatePlanSchema checks the plan schema for errors before conversion.
// Returns a slice of all validation errors found. Reference errors are
// caught here so a typoed ref fails the import loudly instead of silently
// dropping an edge later.
func ValidatePlanSchema(schema *PlanSchema) []error {
	var errs []error

	if schema.Plan.Name == "" {
		errs = append(errs, fmt.Errorf("plan.name is required"))
	}
	if len(schema.Workstreams) == 0 {
		errs = append(errs, fmt.Errorf("at least one workstream is required"))
	}

	wsRefs := make(map[string]bool)
	milestoneRefs := make(map[string]bool)

	for i, ws := range schema.Workstreams {
		if ws.Ref == "" {
			errs = append(errs, fmt.Errorf("workstreams[%d].ref is required", i))
		} else if wsRefs[ws.Ref] {
			errs = append(errs, fmt.Errorf("duplicate workstream ref %q", ws.Ref))
		}
		wsRefs[ws.Ref] = true

		if ws.Name == "" {
			errs = append(errs, fmt.Errorf("workstreams[%d].name is required", i))
		}

		for j, m := range ws.Milestones {
			where := fmt.Sprintf("workstreams[%d].milestones[%d]", i, j)
			if m.Ref == "" {
				errs = append(errs, fmt.Errorf("%s.ref is required", where))
			} else if milestoneRefs[m.Ref] {
				errs = append(errs, fmt.Errorf("duplicate milestone ref %q", m.Ref))
			}
			milestoneRefs[m.Ref] = true

			if m.Name == "" {
				errs = append(errs, fmt.Errorf("%s.name is required", where))
			}
			if m.Deadline != "" {
				if _, err := time.Parse("2006-01-02", m.Deadline); err != nil {
					errs = append(errs, fmt.Errorf("%s.deadline: invalid date %q (expected YYYY-MM-DD)", where, m.Deadline))
				}
			}
			if m.Status != "" && !domain.ValidMilestoneStatuses[m.Status] {
				errs = append(errs, fmt.Errorf("%s.status: invalid status %q", where, m.Status))
			}
		}
	}

	for i, ws := range schema.Workstreams {
		for j, a := range ws.Activities {
			where := fmt.Sprintf("workstreams[%d].activities[%d]", i, j)
			if a.Source == "" {
				errs = append(errs, fmt.Errorf("%s.source is required", where))
			} else if !milestoneRefs[a.Source] {
				errs = append(errs, fmt.Errorf("%s.source: unknown milestone ref %q", where, a.Source))
			}
			for _, ref := range a.Targets {
				if !milestoneRefs[ref] {
					errs = append(errs, fmt.Errorf("%s.targets: unknown milestone ref %q", where, ref))
				}
			}
			for _, ref := range a.Supports {
				if !milestoneRefs[ref] {
					errs = append(errs, fmt.Errorf("%s.supports: unknown milestone ref %q", where, ref))
				}
			}
		}
	}

	for i, d := range schema.Dependencies {
		if !milestoneRefs[d.Source] {
			errs = append(errs, fmt.Errorf("dependencies[%d].source: unknown milestone ref %q", i, d.Source))
		}
		if !milestoneRefs[d.Target] {
			errs = append(errs, fmt.Errorf("dependencies[%d].target: unknown milestone ref %q", i, d.Target))
		}
		if d.Source != "" && d.Source == d.Target {
			errs = append(errs, fmt.Errorf("dependencies[%d]: source and target are the same ref %q", i, d.Source))
		}
	}

	return errs
}
