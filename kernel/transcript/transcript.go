// Package transcript persists agent conversations per session.
package transcript

import (
	"context"
	"time"
)

// Entry is one recorded conversation turn.
type Entry struct {
	Seq       int64
	SessionID string
	Role      string
	Text      string
	At        time.Time
}

// Store appends and replays conversation turns. Implementations must keep
// per-session append order stable.
type Store interface {
	Append(ctx context.Context, sessionID, role, text string) error
	List(ctx context.Context, sessionID string) ([]Entry, error)
	Sessions(ctx context.Context) ([]string, error)
	Close() error
}
