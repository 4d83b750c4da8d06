// Package sessions persists conversation sessions and their transcripts,
// and guards each session against concurrent top-level requests.
package sessions

import (
	"context"
	"errors"

	"github.com/oakworth/steward/pkg/models"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Store is the interface for session persistence.
type Store interface {
	// Session CRUD
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]*models.Session, error)

	// Transcript
	AppendMessage(ctx context.Context, sessionID string, msg *models.Message) error
	History(ctx context.Context, sessionID string, limit int) ([]*models.Message, error)
}
