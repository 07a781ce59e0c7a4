package repo

import (
	"context"
	"sync"
	"time"

	"hellomama/internal/core/subreq"
	"hellomama/internal/modkit/repokit"

	"github.com/google/uuid"
)

// Memory is an in-process Repo keyed by idempotency key. It ignores the
// Queryer it is bound to, so writes are not rolled back with a transaction
type Memory struct {
	mu   sync.Mutex
	rows []subreq.Request
	keys map[string]bool
	now  func() time.Time
}

// NewMemory returns an empty in-process repo
func NewMemory() *Memory {
	return &Memory{keys: map[string]bool{}, now: time.Now}
}

// Bind returns m itself
func (m *Memory) Bind(repokit.Queryer) Repo { return m }

// All returns a copy of every stored request in insert order
func (m *Memory) All() []subreq.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]subreq.Request(nil), m.rows...)
}

func (m *Memory) Insert(_ context.Context, reqs []subreq.Request) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rq := range reqs {
		if m.keys[rq.IdempotencyKey] {
			continue
		}
		if rq.ID == "" {
			rq.ID = uuid.NewString()
		}
		rq.CreatedAt = m.now().UTC()
		m.keys[rq.IdempotencyKey] = true
		m.rows = append(m.rows, rq)
		n++
	}
	return n, nil
}

func (m *Memory) CountByOrigin(ctx context.Context, origin subreq.Origin, originID string) (int, error) {
	rs, _ := m.ListByOrigin(ctx, origin, originID)
	return len(rs), nil
}

func (m *Memory) ListByOrigin(_ context.Context, origin subreq.Origin, originID string) ([]subreq.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []subreq.Request
	for _, rq := range m.rows {
		if rq.Origin == origin && rq.OriginID == originID {
			out = append(out, rq)
		}
	}
	return out, nil
}

var _ repokit.Binder[Repo] = (*Memory)(nil)
