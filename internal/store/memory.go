// internal/store/memory.go
package store

import (
	"context"
	"sync"

	"github.com/dvsk-dev/gamify/internal/models"
)

// MemoryStore keeps authoritative room state in process memory with one lock
// per room. The outer map lock is held only for entry lookup, never across a
// room mutation, so operations on different rooms run fully concurrently.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

type roomEntry struct {
	mu   sync.Mutex
	room *models.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*roomEntry)}
}

func (s *MemoryStore) Create(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.RoomID]; exists {
		return ErrRoomExists
	}
	s.rooms[room.RoomID] = &roomEntry{room: room.Clone()}
	return nil
}

func (s *MemoryStore) entry(roomID string) (*roomEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rooms[roomID]
	return e, ok
}

func (s *MemoryStore) Get(ctx context.Context, roomID string) (*models.Room, error) {
	e, ok := s.entry(roomID)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.room.Clone(), nil
}

// Update applies fn to a working copy under the room's lock and swaps it in
// only when fn succeeds, so a failed validation leaves the stored state
// untouched.
func (s *MemoryStore) Update(ctx context.Context, roomID string, fn func(*models.Room) error) (*models.Room, error) {
	e, ok := s.entry(roomID)
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.room.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	e.room = working
	return working.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

// Exists reports whether a room code is taken.
func (s *MemoryStore) Exists(roomID string) bool {
	_, ok := s.entry(roomID)
	return ok
}
