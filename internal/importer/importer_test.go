package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlanYAML = `plan:
  name: Launch
workstreams:
  - ref: eng
    name: Engineering
    color: "#4C7EFF"
    milestones:
      - ref: beta
        name: Beta
        deadline: 2026-03-01
        status: in_progress
      - ref: ga
        name: GA
        deadline: 2026-05-15
    activities:
      - source: beta
        targets: [ga]
        supports: [announce]
  - ref: mkt
    name: Marketing
    milestones:
      - ref: announce
        name: Announce
        deadline: 2026-05-01
dependencies:
  - source: ga
    target: announce
`

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPlanSchema(t *testing.T) {
	schema, err := LoadPlanSchema(writePlanFile(t, samplePlanYAML))
	require.NoError(t, err)

	assert.Equal(t, "Launch", schema.Plan.Name)
	require.Len(t, schema.Workstreams, 2)
	assert.Equal(t, "eng", schema.Workstreams[0].Ref)
	assert.Equal(t, "#4C7EFF", schema.Workstreams[0].Color)
	require.Len(t, schema.Workstreams[0].Milestones, 2)
	assert.Equal(t, "2026-03-01", schema.Workstreams[0].Milestones[0].Deadline)
	require.Len(t, schema.Workstreams[0].Activities, 1)
	assert.Equal(t, []string{"ga"}, schema.Workstreams[0].Activities[0].Targets)
	assert.Equal(t, []string{"announce"}, schema.Workstreams[0].Activities[0].Supports)
	require.Len(t, schema.Dependencies, 1)
}

func TestLoadPlanSchema_BadYAML(t *testing.T) {
	_, err := LoadPlanSchema(writePlanFile(t, "plan: [unclosed"))
	assert.Error(t, err)
}

func TestLoadPlanSchema_MissingFile(t *testing.T) {
	_, err := LoadPlanSchema(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidatePlanSchema_Valid(t *testing.T) {
	schema, err := LoadPlanSchema(writePlanFile(t, samplePlanYAML))
	require.NoError(t, err)
	assert.Empty(t, ValidatePlanSchema(schema))
}

func TestValidatePlanSchema_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PlanSchema)
		wantMsg string
	}{
		{
			name:    "missing plan name",
			mutate:  func(s *PlanSchema) { s.Plan.Name = "" },
			wantMsg: "plan.name is required",
		},
		{
			name:    "no workstreams",
			mutate:  func(s *PlanSchema) { s.Workstreams = nil },
			wantMsg: "at least one workstream is required",
		},
		{
			name:    "duplicate milestone ref",
			mutate:  func(s *PlanSchema) { s.Workstreams[1].Milestones[0].Ref = "beta" },
			wantMsg: `duplicate milestone ref "beta"`,
		},
		{
			name:    "bad deadline format",
			mutate:  func(s *PlanSchema) { s.Workstreams[0].Milestones[0].Deadline = "03/01/2026" },
			wantMsg: "invalid date",
		},
		{
			name:    "bad status",
			mutate:  func(s *PlanSchema) { s.Workstreams[0].Milestones[0].Status = "done" },
			wantMsg: `invalid status "done"`,
		},
		{
			name:    "unknown activity target",
			mutate:  func(s *PlanSchema) { s.Workstreams[0].Activities[0].Targets = []string{"ghost"} },
			wantMsg: `unknown milestone ref "ghost"`,
		},
		{
			name:    "unknown dependency source",
			mutate:  func(s *PlanSchema) { s.Dependencies[0].Source = "ghost" },
			wantMsg: `unknown milestone ref "ghost"`,
		},
		{
			name: "self dependency",
			mutate: func(s *PlanSchema) {
				s.Dependencies[0] = DependencyImport{Source: "ga", Target: "ga"}
			},
			wantMsg: "source and target are the same",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := LoadPlanSchema(writePlanFile(t, samplePlanYAML))
			require.NoError(t, err)
			tt.mutate(schema)

			errs := ValidatePlanSchema(schema)
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.Contains(e.Error(), tt.wantMsg) {
					found = true
				}
			}
			assert.True(t, found, "expected an error containing %q, got %v", tt.wantMsg, errs)
		})
	}
}

func testDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestFlatten(t *testing.T) {
	schema, err := LoadPlanSchema(writePlanFile(t, samplePlanYAML))
	require.NoError(t, err)
	require.Empty(t, ValidatePlanSchema(schema))

	plan, err := Flatten(schema)
	require.NoError(t, err)

	assert.NotEmpty(t, plan.Diagram.ID)
	assert.Equal(t, "Launch", plan.Diagram.Name)

	require.Len(t, plan.Workstreams, 2)
	assert.Equal(t, int64(1), plan.Workstreams[0].ID)
	assert.Equal(t, int64(2), plan.Workstreams[1].ID)
	assert.Equal(t, []int64{1, 2}, plan.Workstreams[0].MilestoneIDs)
	assert.Equal(t, []int64{3}, plan.Workstreams[1].MilestoneIDs)

	require.Len(t, plan.Milestones, 3)
	byID := plan.MilestoneByID()
	assert.Equal(t, "Beta", byID[1].Name)
	assert.Equal(t, domain.MilestoneInProgress, byID[1].Status)
	assert.Equal(t, domain.MilestoneNotStarted, byID[2].Status)
	require.NotNil(t, byID[2].Deadline)
	assert.Equal(t, testDate(2026, 5, 15), *byID[2].Deadline)

	require.Len(t, plan.Activities, 1)
	act := plan.Activities[0]
	assert.Equal(t, int64(1), act.SourceMilestoneID)
	assert.Equal(t, []int64{2}, act.TargetMilestoneIDs)
	assert.Equal(t, []int64{3}, act.SupportedMilestoneIDs)

	require.Len(t, plan.Dependencies, 1)
	assert.Equal(t, int64(2), plan.Dependencies[0].SourceMilestoneID)
	assert.Equal(t, int64(3), plan.Dependencies[0].TargetMilestoneID)
}
