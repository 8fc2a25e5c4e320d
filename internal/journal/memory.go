package journal

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory journal, the default when no database is
// configured.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
}

// NewMemStore creates a new in-memory journal.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1}
}

func (s *MemStore) Append(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID
	s.nextID++
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *MemStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !matches(e, f) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemStore) Summarize(ctx context.Context) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := &Summary{ByKind: make(map[string]int)}
	paths := make(map[[2]string]int)
	for _, e := range s.entries {
		sum.Total++
		sum.ByKind[e.Kind]++
		if e.Outcome == "failed" {
			sum.Failures++
		}
		if e.Kind == KindUpgrade && e.Outcome == "upgraded" {
			paths[[2]string{e.From, e.To}]++
		}
	}
	for k, n := range paths {
		sum.Paths = append(sum.Paths, UpgradePath{From: k[0], To: k[1], Count: n})
	}
	sort.Slice(sum.Paths, func(i, j int) bool {
		if sum.Paths[i].Count != sum.Paths[j].Count {
			return sum.Paths[i].Count > sum.Paths[j].Count
		}
		if sum.Paths[i].From != sum.Paths[j].From {
			return sum.Paths[i].From < sum.Paths[j].From
		}
		return sum.Paths[i].To < sum.Paths[j].To
	})
	return sum, nil
}

func (s *MemStore) Close() error { return nil }

func matches(e Entry, f Filter) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Class != "" && e.Class != f.Class {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	return true
}
