package redis

import (
	"fmt"

	"github.com/tsumogiri/riichi-client/internal/model"
)

// Key prefix for all replay data
const keyPrefix = "riichi"

// replayMetaKey returns the Redis key for a replay's metadata
func replayMetaKey(id model.ReplayID) string {
	return fmt.Sprintf("%s:replay:%s", keyPrefix, id)
}

// replayLinesKey returns the Redis key for the LIST of a replay's wire lines
func replayLinesKey(id model.ReplayID) string {
	return fmt.Sprintf("%s:replay_lines:%s", keyPrefix, id)
}

// replayIndexKey returns the Redis key for the SET of all replay ids
func replayIndexKey() string {
	return fmt.Sprintf("%s:idx:replays", keyPrefix)
}
