package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/presentation"
	"github.com/tsumogiri/riichi-client/internal/protocol"
	"github.com/tsumogiri/riichi-client/internal/services/dispatch"
	"github.com/tsumogiri/riichi-client/internal/services/session"
)

// Render replays a recorded session through the normal decode and dispatch
// path, driving the given presenter. Outbound lines are skipped; the
// dispatcher runs read-only, so nothing is prompted or sent.
func (s *Service) Render(ctx context.Context, id model.ReplayID, presenter presentation.Presenter) error {
	meta, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	lines, err := s.Lines(ctx, id)
	if err != nil {
		return err
	}

	store := session.New(s.logger)
	store.SetIdentity(meta.Username, true)

	channel := protocol.NewChannel(s.logger)
	go func() {
		defer channel.Close()
		for _, line := range lines {
			if line.Outbound {
				continue
			}
			channel.OnBytes(append(append([]byte(nil), line.Line...), '\n'))
		}
	}()

	dispatcher := dispatch.NewReplay(s.logger, s.clock, store, presenter)
	if err := dispatcher.Run(ctx, channel.Events()); err != nil {
		// A drained stream is the normal end of a replay.
		if errors.Is(err, model.ErrNotConnected) {
			return nil
		}
		return fmt.Errorf("rendering replay: %w", err)
	}
	return nil
}
