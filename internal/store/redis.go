package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"itoparty/internal/model"
)

// maxTxnRetries bounds the optimistic retry loop before ErrConflict.
const maxTxnRetries = 16

const (
	gameKeyPrefix   = "game:"
	codeKeyPrefix   = "code:"
	playerKeyPrefix = "player:"
)

// RedisStore implements GameStore on Redis. Read-modify-write operations use
// WATCH transactions: the watched key is read, the new value computed, and
// the commit succeeds only if nothing touched the key since the read.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed game store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func gameKey(id string) string   { return gameKeyPrefix + id }
func codeKey(code string) string { return codeKeyPrefix + code }
func playerKey(id string) string { return playerKeyPrefix + id }

// watch runs fn under WATCH on keys, retrying on commit conflicts.
func (s *RedisStore) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxnRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return ErrConflict
}

func (s *RedisStore) CreateGame(ctx context.Context, game *model.Game) error {
	ck := codeKey(game.Password)
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	return s.watch(ctx, func(tx *redis.Tx) error {
		err := tx.Get(ctx, ck).Err()
		if err == nil {
			return ErrCodeTaken
		}
		if err != redis.Nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, ck, game.ID, 0)
			pipe.Set(ctx, gameKey(game.ID), data, 0)
			return nil
		})
		return err
	}, ck)
}

func (s *RedisStore) GetGame(ctx context.Context, id string) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *RedisStore) UpdateGame(ctx context.Context, id string, mutate func(*model.Game) error) (*model.Game, error) {
	key := gameKey(id)
	var out *model.Game
	err := s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrGameNotFound
		}
		if err != nil {
			return err
		}
		var game model.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return err
		}
		if err := mutate(&game); err != nil {
			return err
		}
		if len(game.PlayerState) == 0 {
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.Del(ctx, codeKey(game.Password))
				return nil
			})
			out = &game
			return err
		}
		buf, err := json.Marshal(&game)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf, 0)
			return nil
		})
		out = &game
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) DeleteGame(ctx context.Context, id string) error {
	key := gameKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		var game model.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.Del(ctx, codeKey(game.Password))
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) ListGameIDs(ctx context.Context) ([]string, error) {
	return s.scanIDs(ctx, gameKeyPrefix)
}

func (s *RedisStore) LookupCode(ctx context.Context, code string) (string, error) {
	id, err := s.client.Get(ctx, codeKey(code)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

func (s *RedisStore) DeleteCode(ctx context.Context, code string) error {
	return s.client.Del(ctx, codeKey(code)).Err()
}

func (s *RedisStore) ListCodes(ctx context.Context) (map[string]string, error) {
	codes, err := s.scanIDs(ctx, codeKeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(codes))
	for _, code := range codes {
		id, err := s.LookupCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if id != "" {
			out[code] = id
		}
	}
	return out, nil
}

func (s *RedisStore) GetPlayer(ctx context.Context, id string) (*model.PlayerRecord, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec model.PlayerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdatePlayer upserts the presence record through a transaction so that
// concurrent field updates for the same player never clobber each other.
func (s *RedisStore) UpdatePlayer(ctx context.Context, id string, mutate func(*model.PlayerRecord)) error {
	key := playerKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		rec := model.PlayerRecord{ID: id}
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
		}
		mutate(&rec)
		buf, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf, 0)
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) DeletePlayer(ctx context.Context, id string) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

func (s *RedisStore) ListPlayers(ctx context.Context) ([]*model.PlayerRecord, error) {
	ids, err := s.scanIDs(ctx, playerKeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]*model.PlayerRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetPlayer(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *RedisStore) scanIDs(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), prefix))
	}
	return out, iter.Err()
}
