package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	metas map[model.ReplayID]*model.ReplayMeta
	lines map[model.ReplayID][]*model.ReplayLine
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		metas: make(map[model.ReplayID]*model.ReplayMeta),
		lines: make(map[model.ReplayID][]*model.ReplayLine),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveReplayMeta(ctx context.Context, meta *model.ReplayMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *meta
	s.metas[meta.ID] = &copied
	return nil
}

func (s *Storage) GetReplayMeta(ctx context.Context, id model.ReplayID) (*model.ReplayMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.metas[id]
	if !ok {
		return nil, model.ErrReplayNotFound
	}
	copied := *meta
	return &copied, nil
}

func (s *Storage) ListReplays(ctx context.Context) ([]*model.ReplayMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.ReplayMeta, 0, len(s.metas))
	for _, meta := range s.metas {
		copied := *meta
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

func (s *Storage) AppendReplayLines(ctx context.Context, id model.ReplayID, lines []*model.ReplayLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.metas[id]; !ok {
		return model.ErrReplayNotFound
	}
	for _, line := range lines {
		copied := *line
		copied.Line = append([]byte(nil), line.Line...)
		s.lines[id] = append(s.lines[id], &copied)
	}
	return nil
}

func (s *Storage) GetReplayLines(ctx context.Context, id model.ReplayID) ([]*model.ReplayLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.metas[id]; !ok {
		return nil, model.ErrReplayNotFound
	}
	stored := s.lines[id]
	out := make([]*model.ReplayLine, 0, len(stored))
	for _, line := range stored {
		copied := *line
		copied.Line = append([]byte(nil), line.Line...)
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Storage) DeleteReplay(ctx context.Context, id model.ReplayID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.metas, id)
	delete(s.lines, id)
	return nil
}
