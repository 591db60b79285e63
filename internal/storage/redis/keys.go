package redis

import (
	"fmt"

	"github.com/mcoot/draftboard/internal/model"
)

// Key prefix for all draft board data
const keyPrefix = "draftboard"

// rosterKey returns the Redis key for the roster index
func rosterKey() string {
	return fmt.Sprintf("%s:roster", keyPrefix)
}

// rankingsKey returns the Redis key for the ranking list
func rankingsKey() string {
	return fmt.Sprintf("%s:rankings", keyPrefix)
}

// sessionKey returns the Redis key for a Session
func sessionKey(code model.SessionCode) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, code)
}

// sessionsIndexKey returns the Redis key for the SET of known session codes
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// snapshotKey returns the Redis key for the latest snapshot of a draft
func snapshotKey(draftID model.DraftID) string {
	return fmt.Sprintf("%s:snapshot:%s", keyPrefix, draftID)
}
