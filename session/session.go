package session

import (
	"context"

	"github.com/hupe1980/askdocs/message"
)

// Store loads and saves conversation histories. A missing session is not an
// error: Load returns a nil history so the caller starts a fresh conversation.
// Save replaces the stored history atomically; implementations must never
// persist a partial write.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]message.Message, error)
	Save(ctx context.Context, sessionID string, history []message.Message) error
}
