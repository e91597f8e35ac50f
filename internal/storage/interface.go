package storage

import (
	"context"

	"github.com/tsumogiri/riichi-client/internal/model"
)

// Storage defines the interface for replay persistence
type Storage interface {
	// Replay metadata operations
	SaveReplayMeta(ctx context.Context, meta *model.ReplayMeta) error
	GetReplayMeta(ctx context.Context, id model.ReplayID) (*model.ReplayMeta, error)
	ListReplays(ctx context.Context) ([]*model.ReplayMeta, error)

	// Replay line operations
	AppendReplayLines(ctx context.Context, id model.ReplayID, lines []*model.ReplayLine) error
	GetReplayLines(ctx context.Context, id model.ReplayID) ([]*model.ReplayLine, error)

	// DeleteReplay removes a replay's metadata and lines
	DeleteReplay(ctx context.Context, id model.ReplayID) error
}
