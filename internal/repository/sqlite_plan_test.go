package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
	"github.com/jspahr/laneplan/internal/repository"
	"github.com/jspahr/laneplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDiagram(t *testing.T, diagrams *repository.SQLiteDiagramRepo) *domain.Diagram {
	t.Helper()
	d := testutil.NewTestDiagram("Q3 Roadmap")
	require.NoError(t, diagrams.Create(context.Background(), d))
	return d
}

func TestDiagramRepo_CreateGetList(t *testing.T) {
	database := testutil.NewTestDB(t)
	diagrams := repository.NewSQLiteDiagramRepo(database)
	ctx := context.Background()

	d := seedDiagram(t, diagrams)

	got, err := diagrams.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q3 Roadmap", got.Name)

	all, err := diagrams.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDiagramRepo_GetMissing(t *testing.T) {
	database := testutil.NewTestDB(t)
	diagrams := repository.NewSQLiteDiagramRepo(database)

	_, err := diagrams.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWorkstreamRepo_OwnedMilestonesOrdered(t *testing.T) {
	database := testutil.NewTestDB(t)
	diagrams := repository.NewSQLiteDiagramRepo(database)
	streams := repository.NewSQLiteWorkstreamRepo(database)
	milestones := repository.NewSQLiteMilestoneRepo(database)
	ctx := context.Background()

	d := seedDiagram(t, diagrams)
	ws := testutil.NewTestWorkstream(d.ID, "Platform")
	require.NoError(t, streams.Create(ctx, ws))
	require.NotZero(t, ws.ID, "create should assign the rowid")

	second := testutil.NewTestMilestone(ws.ID, "Beta", testutil.WithMilestoneOrder(1))
	first := testutil.NewTestMilestone(ws.ID, "Alpha", testutil.WithMilestoneOrder(0))
	require.NoError(t, milestones.Create(ctx, second))
	require.NoError(t, milestones.Create(ctx, first))

	got, err := streams.ListByDiagram(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []int64{first.ID, second.ID}, got[0].MilestoneIDs,
		"owned milestone ids should follow order_index, not insert order")
}

func TestMilestoneRepo_DeadlineRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	diagrams := repository.NewSQLiteDiagramRepo(database)
	streams := repository.NewSQLiteWorkstreamRepo(database)
	milestones := repository.NewSQLiteMilestoneRepo(database)
	ctx := context.Background()

	d := seedDiagram(t, diagrams)
	ws := testutil.NewTestWorkstream(d.ID, "Platform")
	require.NoError(t, streams.Create(ctx, ws))

	due := testutil.Date(2025, time.March, 1)
	m := testutil.NewTestMilestone(ws.ID, "Launch", testutil.WithDeadline(due))
	require.NoError(t, milestones.Create(ctx, m))

	got, err := milestones.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Deadline)
	assert.True(t, got.Deadline.Equal(due))

	noDeadline := testutil.NewTestMilestone(ws.ID, "Someday")
	require.NoError(t, milestones.Create(ctx, noDeadline))
	got, err = milestones.GetByID(ctx, noDeadline.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Deadline)
}

func TestMilestoneRepo_UpdateDeadline(t *testing.T) {
	database := testutil.NewTestDB(t)
	diagrams := repository.NewSQLiteDiagramRepo(database)
	streams := repository.NewSQLiteWorkstreamRepo(database)
	milestones := repository.NewSQLiteMilestoneRepo(database)
	ctx := context.Background()

	d := seedDiagram(t, diagrams)
	ws := testutil.NewTestWorkstream(d.ID, "Platform")
	require.NoError(t, streams.Create(ctx, ws))

	m := testutil.NewTestMilestone(ws.ID, "Launch", testutil.WithDeadline(testutil.Date(2025, time.March, 1)))
	require.NoError(t, milestones.Create(ctx, m))

	newDue := testutil.Date(2025, time.April, 1)
	require.NoError(t, milestones.UpdateDeadline(ctx, m.ID, newDue))

	got, err := milestones.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.Deadline.Equal(newDue))

	err = milestones.UpdateDeadline(ctx, 99999, newDue)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestActivityRepo_LinksSplitBySupported(t *testing.T) {
	database := testutil.NewTestDB(t)
	diagrams := repository.NewSQLiteDiagramRepo(database)
	streams := repository.NewSQLiteWorkstreamRepo(database)
	milestones := repository.NewSQLiteMilestoneRepo(database)
	activities := repository.NewSQLiteActivityRepo(database)
	ctx := context.Background()

	d := seedDiagram(t, diagrams)
	ws := testutil.NewTestWorkstream(d.ID, "Platform")
	require.NoError(t, streams.Create(ctx, ws))
	other := testutil.NewTestWorkstream(d.ID, "Mobile")
	require.NoError(t, streams.Create(ctx, other))

	src := testutil.NewTestMilestone(ws.ID, "API ready")
	tgt := testutil.NewTestMilestone(ws.ID, "SDK ready")
	crossLane := testutil.NewTestMilestone(other.ID, "App beta")
	for _, m := range []*domain.Milestone{src, tgt, crossLane} {
		require.NoError(t, milestones.Create(ctx, m))
	}

	a := &domain.Activity{
		WorkstreamID:          ws.ID,
		SourceMilestoneID:     src.ID,
		TargetMilestoneIDs:    []int64{tgt.ID},
		SupportedMilestoneIDs: []int64{crossLane.ID},
	}
	require.NoError(t, activities.Create(ctx, a))

	got, err := activities.ListByDiagram(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []int64{tgt.ID}, got[0].TargetMilestoneIDs)
	assert.Equal(t, []int64{crossLane.ID}, got[0].SupportedMilestoneIDs)
}

func TestDependencyRepo_ListByDiagram(t *testing.T) {
	database := testutil.NewTestDB(t)
	diagrams := repository.NewSQLiteDiagramRepo(database)
	streams := repository.NewSQLiteWorkstreamRepo(database)
	milestones := repository.NewSQLiteMilestoneRepo(database)
	deps := repository.NewSQLiteDependencyRepo(database)
	ctx := context.Background()

	d := seedDiagram(t, diagrams)
	ws := testutil.NewTestWorkstream(d.ID, "Platform")
	require.NoError(t, streams.Create(ctx, ws))

	a := testutil.NewTestMilestone(ws.ID, "A")
	b := testutil.NewTestMilestone(ws.ID, "B")
	require.NoError(t, milestones.Create(ctx, a))
	require.NoError(t, milestones.Create(ctx, b))

	require.NoError(t, deps.Create(ctx, &domain.Dependency{
		SourceMilestoneID: a.ID,
		TargetMilestoneID: b.ID,
	}))

	got, err := deps.ListByDiagram(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].SourceMilestoneID)
	assert.Equal(t, b.ID, got[0].TargetMilestoneID)
}

func TestDiagramRepo_DeleteCascades(t *testing.T) {
	database := testutil.NewTestDB(t)
	diagrams := repository.NewSQLiteDiagramRepo(database)
	streams := repository.NewSQLiteWorkstreamRepo(database)
	milestones := repository.NewSQLiteMilestoneRepo(database)
	ctx := context.Background()

	d := seedDiagram(t, diagrams)
	ws := testutil.NewTestWorkstream(d.ID, "Platform")
	require.NoError(t, streams.Create(ctx, ws))
	require.NoError(t, milestones.Create(ctx, testutil.NewTestMilestone(ws.ID, "Launch")))

	require.NoError(t, diagrams.Delete(ctx, d.ID))

	remaining, err := milestones.ListByDiagram(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "deleting the diagram should cascade to milestones")
}
