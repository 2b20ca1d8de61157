package position

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jspahr/laneplan/internal/diagram"
	"github.com/jspahr/laneplan/internal/domain"
	"github.com/jspahr/laneplan/internal/repository"
)

// Backend is the remote end of the position contract.
type Backend interface {
	Fetch(ctx context.Context, containerID string, nodeType domain.NodeType) ([]*domain.Position, error)
	Upsert(ctx context.Context, p *domain.Position) error
	Reset(ctx context.Context, containerID string) error
}

// RetryPolicy controls what happens to a failed remote upsert. The observed
// behavior this reimplements silently dropped failures, so that stays the
// default; reconciliation then happens implicitly on the next load.
type RetryPolicy string

const (
	// RetryNone drops a failed upsert. Memory and local cache keep the
	// optimistic value, so UI and backend may diverge until the next
	// successful write or an explicit reset.
	RetryNone RetryPolicy = "none"
	// RetryReenqueue puts a failed upsert back through the debounce window
	// once.
	RetryReenqueue RetryPolicy = "reenqueue"
)

// Config parameterizes a Store.
type Config struct {
	ContainerID    string
	MarginTop      float64
	ContentHeight  float64
	DebounceWindow time.Duration
	WriteTimeout   time.Duration
	Retry          RetryPolicy
}

const (
	defaultDebounceWindow = 300 * time.Millisecond
	defaultWriteTimeout   = 5 * time.Second
)

// ErrorFunc receives non-fatal store errors (failed cache or remote writes).
type ErrorFunc func(op string, err error)

// Store is the dual-identity position layer: an in-memory absolute-y map
// consulted by the layout engine, mirrored into a local sqlite cache and a
// remote backend with per-node debounced writes.
//
// Map keys are arena keys (diagram.Placement.Key / diagram.WorkstreamKey);
// wire node ids are translated on load and save.
type Store struct {
	cfg     Config
	backend Backend // nil in offline mode
	cache   repository.PositionRepo
	sched   *Scheduler
	onError ErrorFunc

	mu  sync.Mutex
	abs map[string]float64
}

var _ diagram.PositionSource = (*Store)(nil)
var _ diagram.PositionWriter = (*Store)(nil)

// NewStore creates a Store. backend may be nil (offline: local cache only);
// onError may be nil.
func NewStore(cfg Config, backend Backend, cache repository.PositionRepo, onError ErrorFunc) *Store {
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = defaultDebounceWindow
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Retry == "" {
		cfg.Retry = RetryNone
	}
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Store{
		cfg:     cfg,
		backend: backend,
		cache:   cache,
		sched:   NewScheduler(cfg.DebounceWindow),
		onError: onError,
		abs:     make(map[string]float64),
	}
}

// ToRelative normalizes an absolute y into [0,1] over the content height.
func (s *Store) ToRelative(absY float64) float64 {
	return (absY - s.cfg.MarginTop) / s.cfg.ContentHeight
}

// ToAbsolute converts a normalized y back to pixels.
func (s *Store) ToAbsolute(rel float64) float64 {
	return s.cfg.MarginTop + rel*s.cfg.ContentHeight
}

// Load seeds the in-memory map: remote records for both node types when the
// backend is reachable (mirrored into the local cache), the cache otherwise.
func (s *Store) Load(ctx context.Context) error {
	for _, nodeType := range []domain.NodeType{domain.NodeMilestone, domain.NodeWorkstream} {
		records, err := s.fetch(ctx, nodeType)
		if err != nil {
			return fmt.Errorf("loading %s positions: %w", nodeType, err)
		}
		s.seed(records)
	}
	return nil
}

func (s *Store) fetch(ctx context.Context, nodeType domain.NodeType) ([]*domain.Position, error) {
	if s.backend != nil {
		records, err := s.backend.Fetch(ctx, s.cfg.ContainerID, nodeType)
		if err == nil {
			s.mirror(ctx, records)
			return records, nil
		}
		s.onError("fetch", err)
		// Fall through to the cache: a stale layout beats no layout.
	}
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.List(ctx, s.cfg.ContainerID, nodeType)
}

func (s *Store) mirror(ctx context.Context, records []*domain.Position) {
	if s.cache == nil {
		return
	}
	for _, p := range records {
		if err := s.cache.Upsert(ctx, p); err != nil {
			s.onError("cache mirror", err)
		}
	}
}

func (s *Store) seed(records []*domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range records {
		s.abs[arenaKey(p)] = s.ToAbsolute(p.RelY)
	}
}

// arenaKey translates a stored record's wire identity into the coordinate
// arena's keyspace.
func arenaKey(p *domain.Position) string {
	if p.NodeType == domain.NodeWorkstream {
		if id, err := strconv.ParseInt(p.NodeID, 10, 64); err == nil {
			return diagram.WorkstreamKey(id)
		}
	}
	if p.IsDuplicate && p.DuplicateKey != "" {
		return p.DuplicateKey
	}
	return p.NodeID
}

// Lookup returns the stored absolute y for an arena key.
func (s *Store) Lookup(key string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	y, ok := s.abs[key]
	return y, ok
}

// EnqueueWrite records the node's new absolute y: memory and local cache
// immediately, remote after the per-node debounce window. Rapid updates to
// one node coalesce into a single upsert carrying the last value.
func (s *Store) EnqueueWrite(node diagram.PositionNode, absY float64) {
	s.mu.Lock()
	s.abs[node.Key] = absY
	s.mu.Unlock()

	record := s.record(node, absY)

	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		if err := s.cache.Upsert(ctx, record); err != nil {
			s.onError("cache write", err)
		}
		cancel()
	}

	if s.backend == nil {
		return
	}
	s.sched.Schedule(node.Key, func() {
		s.upsertRemote(record, true)
	})
}

func (s *Store) upsertRemote(record *domain.Position, mayRetry bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()
	err := s.backend.Upsert(ctx, record)
	if err == nil {
		return
	}
	s.onError("remote write", err)
	if s.cfg.Retry == RetryReenqueue && mayRetry {
		s.sched.Schedule(arenaKey(record), func() {
			s.upsertRemote(record, false)
		})
	}
}

func (s *Store) record(node diagram.PositionNode, absY float64) *domain.Position {
	p := &domain.Position{
		ContainerID:  s.cfg.ContainerID,
		NodeType:     node.Type,
		NodeID:       node.NodeID,
		RelY:         s.ToRelative(absY),
		IsDuplicate:  node.IsDuplicate,
		DuplicateKey: node.DuplicateKey,
	}
	if node.IsDuplicate {
		id := node.OriginalID
		p.OriginalNodeID = &id
	}
	return p
}

// MaterializeDuplicate persists a default position for a duplicate placement
// that has never been stored, so later loads see a stable node instead of
// recomputing a default each time. No-op when a position already exists.
func (s *Store) MaterializeDuplicate(node diagram.PositionNode, defaultAbsY float64) {
	s.mu.Lock()
	_, exists := s.abs[node.Key]
	s.mu.Unlock()
	if exists {
		return
	}
	s.EnqueueWrite(node, defaultAbsY)
}

// Reset clears remote, local cache and memory together, and drops any
// pending writes; the next layout falls back to computed defaults.
func (s *Store) Reset(ctx context.Context) error {
	s.sched.CancelAll()

	if s.backend != nil {
		if err := s.backend.Reset(ctx, s.cfg.ContainerID); err != nil {
			return fmt.Errorf("resetting remote positions: %w", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.DeleteByContainer(ctx, s.cfg.ContainerID); err != nil {
			return fmt.Errorf("resetting cached positions: %w", err)
		}
	}

	s.mu.Lock()
	s.abs = make(map[string]float64)
	s.mu.Unlock()
	return nil
}

// Flush pushes all pending remote writes immediately.
func (s *Store) Flush() {
	s.sched.Flush()
}

// Close cancels every pending debounce timer without firing it.
func (s *Store) Close() {
	s.sched.CancelAll()
}
