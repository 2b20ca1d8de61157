package importer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jspahr/laneplan/internal/domain"
)

// Flatten converts a validated plan schema into the flat lists the layout
// pipeline consumes, assigning sequential in-memory ids. Used when viewing a
// plan file directly; imports into the database assign real ids through the
// repositories instead.
//
// Call ValidatePlanSchema first; Flatten assumes the schema is valid.
func Flatten(schema *PlanSchema) (*domain.FlatPlan, error) {
	now := time.Now().UTC()
	plan := &domain.FlatPlan{
		Diagram: domain.Diagram{
			ID:        uuid.New().String(),
			Name:      schema.Plan.Name,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	milestoneIDs := make(map[string]int64)
	var nextMilestoneID, nextActivityID int64

	for i, wsImport := range schema.Workstreams {
		ws := domain.Workstream{
			ID:         int64(i + 1),
			DiagramID:  plan.Diagram.ID,
			Name:       wsImport.Name,
			Color:      wsImport.Color,
			OrderIndex: i,
		}

		for j, mImport := range wsImport.Milestones {
			nextMilestoneID++
			m := domain.Milestone{
				ID:           nextMilestoneID,
				WorkstreamID: ws.ID,
				Name:         mImport.Name,
				Status:       milestoneStatus(mImport.Status),
				OrderIndex:   j,
			}
			if mImport.Deadline != "" {
				d, err := time.Parse("2006-01-02", mImport.Deadline)
				if err != nil {
					return nil, fmt.Errorf("parsing deadline for %q: %w", mImport.Ref, err)
				}
				m.Deadline = &d
			}
			milestoneIDs[mImport.Ref] = m.ID
			ws.MilestoneIDs = append(ws.MilestoneIDs, m.ID)
			plan.Milestones = append(plan.Milestones, m)
		}

		plan.Workstreams = append(plan.Workstreams, ws)
	}

	for i, wsImport := range schema.Workstreams {
		wsID := plan.Workstreams[i].ID
		for _, aImport := range wsImport.Activities {
			nextActivityID++
			a := domain.Activity{
				ID:                nextActivityID,
				WorkstreamID:      wsID,
				SourceMilestoneID: milestoneIDs[aImport.Source],
			}
			for _, ref := range aImport.Targets {
				a.TargetMilestoneIDs = append(a.TargetMilestoneIDs, milestoneIDs[ref])
			}
			for _, ref := range aImport.Supports {
				a.SupportedMilestoneIDs = append(a.SupportedMilestoneIDs, milestoneIDs[ref])
			}
			plan.Activities = append(plan.Activities, a)
		}
	}

	for _, dImport := range schema.Dependencies {
		plan.Dependencies = append(plan.Dependencies, domain.Dependency{
			SourceMilestoneID: milestoneIDs[dImport.Source],
			TargetMilestoneID: milestoneIDs[dImport.Target],
		})
	}

	return plan, nil
}

func milestoneStatus(s string) domain.MilestoneStatus {
	if s == "" {
		return domain.MilestoneNotStarted
	}
	return domain.MilestoneStatus(s)
}
