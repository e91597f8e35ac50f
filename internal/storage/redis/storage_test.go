package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/tsumogiri/riichi-client/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.ReplayTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) meta(id model.ReplayID) *model.ReplayMeta {
	return &model.ReplayMeta{
		ID:        id,
		Username:  "alice",
		Server:    "localhost:7777",
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func (s *StorageSuite) TestSaveAndGetMeta() {
	meta := s.meta("replay-1")
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, meta))

	got, err := s.storage.GetReplayMeta(s.ctx, "replay-1")
	s.Require().NoError(err)
	s.Equal(meta.ID, got.ID)
	s.Equal(meta.Username, got.Username)
	s.True(meta.StartedAt.Equal(got.StartedAt))
}

func (s *StorageSuite) TestGetMetaNotFound() {
	_, err := s.storage.GetReplayMeta(s.ctx, "nope")
	s.ErrorIs(err, model.ErrReplayNotFound)
}

func (s *StorageSuite) TestMetaHasTTL() {
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("replay-1")))

	ttl := s.mini.TTL(replayMetaKey("replay-1"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestListReplays() {
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("replay-1")))
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("replay-2")))

	metas, err := s.storage.ListReplays(s.ctx)
	s.Require().NoError(err)
	s.Len(metas, 2)
}

func (s *StorageSuite) TestListSkipsExpiredMetas() {
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("replay-1")))
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("replay-2")))

	// Simulate TTL expiry of one meta while its index entry lingers.
	s.mini.Del(replayMetaKey("replay-1"))

	metas, err := s.storage.ListReplays(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(metas, 1)
	s.Equal(model.ReplayID("replay-2"), metas[0].ID)
}

func (s *StorageSuite) TestAppendAndGetLines() {
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("replay-1")))

	first := []*model.ReplayLine{
		{Seq: 0, Line: []byte(`{"event":"join","status":1}`)},
	}
	second := []*model.ReplayLine{
		{Seq: 1, Outbound: true, Line: []byte(`{"username":"alice"}`)},
	}
	s.Require().NoError(s.storage.AppendReplayLines(s.ctx, "replay-1", first))
	s.Require().NoError(s.storage.AppendReplayLines(s.ctx, "replay-1", second))

	got, err := s.storage.GetReplayLines(s.ctx, "replay-1")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(0, got[0].Seq)
	s.Equal(`{"event":"join","status":1}`, string(got[0].Line))
	s.True(got[1].Outbound)
}

func (s *StorageSuite) TestAppendLinesWithoutMeta() {
	err := s.storage.AppendReplayLines(s.ctx, "nope", []*model.ReplayLine{{Seq: 0}})
	s.ErrorIs(err, model.ErrReplayNotFound)
}

func (s *StorageSuite) TestAppendNoLinesIsNoOp() {
	s.NoError(s.storage.AppendReplayLines(s.ctx, "nope", nil))
}

func (s *StorageSuite) TestDeleteReplay() {
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("replay-1")))
	s.Require().NoError(s.storage.AppendReplayLines(s.ctx, "replay-1",
		[]*model.ReplayLine{{Seq: 0, Line: []byte("{}")}}))

	s.Require().NoError(s.storage.DeleteReplay(s.ctx, "replay-1"))

	_, err := s.storage.GetReplayMeta(s.ctx, "replay-1")
	s.ErrorIs(err, model.ErrReplayNotFound)

	metas, err := s.storage.ListReplays(s.ctx)
	s.Require().NoError(err)
	s.Empty(metas)
}
