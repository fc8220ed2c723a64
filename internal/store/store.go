// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/dvsk-dev/gamify/internal/models"
)

// ErrNotFound is returned for lookups of unknown room codes.
var ErrNotFound = errors.New("room not found")

// ErrRoomExists is returned when creating a room whose code is taken.
var ErrRoomExists = errors.New("room already exists")

// Store is the transactional holder of room state. Update runs fn under that
// room's exclusive lock for the full read-validate-compute-persist span; fn
// returning an error discards every mutation it made (all-or-nothing).
// Get and Update both return deep copies, so callers can read the result
// without further coordination. Distinct rooms never block each other.
type Store interface {
	Create(ctx context.Context, room *models.Room) error
	Get(ctx context.Context, roomID string) (*models.Room, error)
	Update(ctx context.Context, roomID string, fn func(*models.Room) error) (*models.Room, error)
	Delete(ctx context.Context, roomID string)
}
