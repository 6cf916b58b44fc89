package store

import (
	"context"
	"sync"

	"itoparty/internal/model"
)

// MemoryStore implements GameStore in process memory. Mutations run under a
// single lock, which gives the same linearizable per-game semantics the Redis
// transactions provide. Used by tests and local runs without Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	games   map[string]*model.Game
	codes   map[string]string
	players map[string]*model.PlayerRecord
}

// NewMemoryStore creates an empty in-memory game store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[string]*model.Game),
		codes:   make(map[string]string),
		players: make(map[string]*model.PlayerRecord),
	}
}

func (s *MemoryStore) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.codes[game.Password]; taken {
		return ErrCodeTaken
	}
	s.codes[game.Password] = game.ID
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *MemoryStore) GetGame(ctx context.Context, id string) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, nil
	}
	return game.Clone(), nil
}

func (s *MemoryStore) UpdateGame(ctx context.Context, id string, mutate func(*model.Game) error) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	next := game.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	if len(next.PlayerState) == 0 {
		delete(s.games, id)
		delete(s.codes, next.Password)
		return next.Clone(), nil
	}
	s.games[id] = next
	return next.Clone(), nil
}

func (s *MemoryStore) DeleteGame(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil
	}
	delete(s.games, id)
	delete(s.codes, game.Password)
	return nil
}

func (s *MemoryStore) ListGameIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) LookupCode(ctx context.Context, code string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codes[code], nil
}

func (s *MemoryStore) DeleteCode(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, code)
	return nil
}

func (s *MemoryStore) ListCodes(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.codes))
	for code, id := range s.codes {
		out[code] = id
	}
	return out, nil
}

func (s *MemoryStore) GetPlayer(ctx context.Context, id string) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.players[id]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (s *MemoryStore) UpdatePlayer(ctx context.Context, id string, mutate func(*model.PlayerRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.players[id]
	if !ok {
		rec = &model.PlayerRecord{ID: id}
		s.players[id] = rec
	}
	mutate(rec)
	return nil
}

func (s *MemoryStore) DeletePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *MemoryStore) ListPlayers(ctx context.Context) ([]*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.PlayerRecord, 0, len(s.players))
	for _, rec := range s.players {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}
