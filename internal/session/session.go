package session

import (
	"context"
	"errors"
	"time"

	"github.com/attendai/attendai/internal/service"
)

// ErrNotFound is returned when a conversation has no cached result.
var ErrNotFound = errors.New("no cached result for conversation")

// Entry is the last successful query of a conversation.
type Entry struct {
	Query     string
	Dates     string
	Result    *service.ResultSet
	CreatedAt time.Time
}

// Store keeps at most one Entry per conversation. Put overwrites.
type Store interface {
	Get(ctx context.Context, conversationID string) (*Entry, error)
	Put(ctx context.Context, conversationID string, e *Entry) error
	Delete(ctx context.Context, conversationID string) error
	Ping(ctx context.Context) error
	Close() error
}
