package roomstore

import (
	"sync"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
)

// Store is the in-memory registry of active match rooms. Rooms are
// single-process volatile state: constructed at startup, discarded at
// shutdown, never persisted.
type Store struct {
	mu    sync.RWMutex
	rooms map[model.RoomID]*model.Room
	// byPlayer indexes which room each player currently occupies
	byPlayer map[model.PlayerID]model.RoomID
}

// New creates an empty room store
func New() *Store {
	return &Store{
		rooms:    make(map[model.RoomID]*model.Room),
		byPlayer: make(map[model.PlayerID]model.RoomID),
	}
}

// Save inserts or replaces a room
func (s *Store) Save(room *model.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	for _, p := range room.Players {
		s.byPlayer[p.ID] = room.ID
	}
}

// Get returns the room with the given id
func (s *Store) Get(id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// Exists reports whether a room id is taken
func (s *Store) Exists(id model.RoomID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok
}

// List returns a snapshot of all rooms of the given kind
func (s *Store) List(kind model.RoomKind) []*model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Room
	for _, r := range s.rooms {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// FindByPlayer returns the room containing the given player
func (s *Store) FindByPlayer(playerID model.PlayerID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPlayer[playerID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// AddPlayer records a player's membership in the index
func (s *Store) AddPlayer(roomID model.RoomID, playerID model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPlayer[playerID] = roomID
}

// RemovePlayer drops a player from the membership index
func (s *Store) RemovePlayer(playerID model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byPlayer, playerID)
}

// Delete removes a room and all membership index entries pointing at it
func (s *Store) Delete(id model.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	for pid, rid := range s.byPlayer {
		if rid == id {
			delete(s.byPlayer, pid)
		}
	}
}

// Count returns the number of active rooms
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
