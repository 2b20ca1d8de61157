package domain

import "time"

// Position is one stored vertical position. NodeID is the duplicate key for
// duplicate milestone placements and the decimal node id otherwise, so the
// two identities share one keyspace.
type Position struct {
	ContainerID    string
	NodeType       NodeType
	NodeID         string
	RelY           float64 // normalized to [0,1] over the diagram content height
	IsDuplicate    bool
	DuplicateKey   string
	OriginalNodeID *int64
	UpdatedAt      time.Time
}
