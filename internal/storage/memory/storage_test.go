package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tsumogiri/riichi-client/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) meta(id model.ReplayID, startedAt time.Time) *model.ReplayMeta {
	return &model.ReplayMeta{
		ID:        id,
		Username:  "alice",
		Server:    "localhost:7777",
		StartedAt: startedAt,
	}
}

func (s *StorageSuite) TestSaveAndGetMeta() {
	meta := s.meta("replay-1", time.Now())
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, meta))

	got, err := s.storage.GetReplayMeta(s.ctx, "replay-1")
	s.Require().NoError(err)
	s.Equal(meta.Username, got.Username)
	s.Equal(meta.Server, got.Server)
}

func (s *StorageSuite) TestGetMetaNotFound() {
	_, err := s.storage.GetReplayMeta(s.ctx, "nope")
	s.ErrorIs(err, model.ErrReplayNotFound)
}

func (s *StorageSuite) TestSavedMetaIsCopied() {
	meta := s.meta("replay-1", time.Now())
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, meta))
	meta.Username = "mallory"

	got, err := s.storage.GetReplayMeta(s.ctx, "replay-1")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
}

func (s *StorageSuite) TestListReplaysSortedByStart() {
	base := time.Now()
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("later", base.Add(time.Hour))))
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("earlier", base)))

	metas, err := s.storage.ListReplays(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(metas, 2)
	s.Equal(model.ReplayID("earlier"), metas[0].ID)
	s.Equal(model.ReplayID("later"), metas[1].ID)
}

func (s *StorageSuite) TestAppendAndGetLines() {
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("replay-1", time.Now())))

	lines := []*model.ReplayLine{
		{Seq: 0, Line: []byte(`{"event":"join","status":1}`)},
		{Seq: 1, Outbound: true, Line: []byte(`{"username":"alice"}`)},
	}
	s.Require().NoError(s.storage.AppendReplayLines(s.ctx, "replay-1", lines))

	got, err := s.storage.GetReplayLines(s.ctx, "replay-1")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(`{"event":"join","status":1}`, string(got[0].Line))
	s.True(got[1].Outbound)
}

func (s *StorageSuite) TestAppendLinesWithoutMeta() {
	err := s.storage.AppendReplayLines(s.ctx, "nope", []*model.ReplayLine{{Seq: 0}})
	s.ErrorIs(err, model.ErrReplayNotFound)
}

func (s *StorageSuite) TestDeleteReplay() {
	s.Require().NoError(s.storage.SaveReplayMeta(s.ctx, s.meta("replay-1", time.Now())))
	s.Require().NoError(s.storage.AppendReplayLines(s.ctx, "replay-1",
		[]*model.ReplayLine{{Seq: 0, Line: []byte("{}")}}))

	s.Require().NoError(s.storage.DeleteReplay(s.ctx, "replay-1"))

	_, err := s.storage.GetReplayMeta(s.ctx, "replay-1")
	s.ErrorIs(err, model.ErrReplayNotFound)
	_, err = s.storage.GetReplayLines(s.ctx, "replay-1")
	s.ErrorIs(err, model.ErrReplayNotFound)
}

func (s *StorageSuite) TestDeleteMissingReplayIsNoError() {
	s.NoError(s.storage.DeleteReplay(s.ctx, "nope"))
}
