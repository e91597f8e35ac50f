// Package replay records raw wire traffic so a finished session can be
// listed, inspected and re-rendered later. Lines are stored verbatim;
// playback feeds them back through the normal decode and dispatch path.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tsumogiri/riichi-client/internal/dependencies/clock"
	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/storage"
)

// flushThreshold is how many buffered lines trigger a write to storage.
const flushThreshold = 32

// flushTimeout bounds each background storage write.
const flushTimeout = 5 * time.Second

// Service manages recorded sessions.
type Service struct {
	logger *slog.Logger
	clock  clock.Clock
	store  storage.Storage
}

// NewService creates a replay service over the given storage backend.
func NewService(logger *slog.Logger, clk clock.Clock, store storage.Storage) *Service {
	return &Service{
		logger: logger.With(slog.String("component", "replay-service")),
		clock:  clk,
		store:  store,
	}
}

// List returns metadata for every stored replay.
func (s *Service) List(ctx context.Context) ([]*model.ReplayMeta, error) {
	return s.store.ListReplays(ctx)
}

// Get returns one replay's metadata.
func (s *Service) Get(ctx context.Context, id model.ReplayID) (*model.ReplayMeta, error) {
	return s.store.GetReplayMeta(ctx, id)
}

// Lines returns one replay's raw wire lines in order.
func (s *Service) Lines(ctx context.Context, id model.ReplayID) ([]*model.ReplayLine, error) {
	return s.store.GetReplayLines(ctx, id)
}

// Delete removes a replay.
func (s *Service) Delete(ctx context.Context, id model.ReplayID) error {
	return s.store.DeleteReplay(ctx, id)
}

// StartRecording registers a new replay and returns its recorder.
func (s *Service) StartRecording(ctx context.Context, username, server string, observer bool) (*Recorder, error) {
	meta := model.ReplayMeta{
		ID:        model.ReplayID(uuid.NewString()),
		Username:  username,
		Server:    server,
		Observer:  observer,
		StartedAt: s.clock.Now(),
	}
	if err := s.store.SaveReplayMeta(ctx, &meta); err != nil {
		return nil, fmt.Errorf("registering replay: %w", err)
	}
	return &Recorder{
		logger: s.logger.With(slog.String("replay_id", string(meta.ID))),
		clock:  s.clock,
		store:  s.store,
		meta:   meta,
	}, nil
}

// Recorder captures one session's wire lines. Inbound and Outbound are safe
// to call from the transport goroutines; writes to storage happen in batches.
type Recorder struct {
	logger *slog.Logger
	clock  clock.Clock
	store  storage.Storage

	mu   sync.Mutex
	meta model.ReplayMeta
	seq  int
	buf  []*model.ReplayLine
}

// ID returns the replay's identifier.
func (r *Recorder) ID() model.ReplayID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta.ID
}

// Inbound records one server line.
func (r *Recorder) Inbound(line []byte) {
	r.record(line, false)
}

// Outbound records one client line.
func (r *Recorder) Outbound(line []byte) {
	r.record(line, true)
}

func (r *Recorder) record(line []byte, outbound bool) {
	r.mu.Lock()
	r.seq++
	r.buf = append(r.buf, &model.ReplayLine{
		Seq:        r.seq,
		Outbound:   outbound,
		ReceivedAt: r.clock.Now(),
		Line:       append([]byte(nil), line...),
	})
	var pending []*model.ReplayLine
	if len(r.buf) >= flushThreshold {
		pending = r.buf
		r.buf = nil
	}
	r.mu.Unlock()

	if pending != nil {
		r.flush(pending)
	}
}

func (r *Recorder) flush(lines []*model.ReplayLine) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := r.store.AppendReplayLines(ctx, r.meta.ID, lines); err != nil {
		r.logger.Warn("dropping replay lines", slog.String("error", err.Error()))
	}
}

// Finish flushes buffered lines and marks the replay complete.
func (r *Recorder) Finish(ctx context.Context) error {
	r.mu.Lock()
	pending := r.buf
	r.buf = nil
	r.meta.Finished = true
	r.meta.LineCount = r.seq
	meta := r.meta
	r.mu.Unlock()

	if len(pending) > 0 {
		if err := r.store.AppendReplayLines(ctx, meta.ID, pending); err != nil {
			return fmt.Errorf("flushing replay lines: %w", err)
		}
	}
	if err := r.store.SaveReplayMeta(ctx, &meta); err != nil {
		return fmt.Errorf("finishing replay: %w", err)
	}
	return nil
}
