package domain

// FlatPlan is the flattened form of one diagram's plan: every list the
// layout pipeline consumes, with milestones already tagged with their owning
// workstream. The pipeline treats it as read-only.
type FlatPlan struct {
	Diagram      Diagram
	Workstreams  []Workstream
	Milestones   []Milestone
	Activities   []Activity
	Dependencies []Dependency
}

// MilestoneByID builds a lookup of the plan's milestones.
func (p *FlatPlan) MilestoneByID() map[int64]*Milestone {
	m := make(map[int64]*Milestone, len(p.Milestones))
	for i := range p.Milestones {
		m[p.Milestones[i].ID] = &p.Milestones[i]
	}
	return m
}

// WorkstreamByID builds a lookup of the plan's workstreams.
func (p *FlatPlan) WorkstreamByID() map[int64]*Workstream {
	m := make(map[int64]*Workstream, len(p.Workstreams))
	for i := range p.Workstreams {
		m[p.Workstreams[i].ID] = &p.Workstreams[i]
	}
	return m
}
