package store

import (
	"context"
	"errors"

	"itoparty/internal/model"
)

var (
	// ErrGameNotFound is returned by UpdateGame when the game vanished
	// between lookup and transaction.
	ErrGameNotFound = errors.New("game not found")

	// ErrCodeTaken is returned by CreateGame when the join code is already
	// reserved by a live game.
	ErrCodeTaken = errors.New("join code already reserved")

	// ErrConflict is returned when an optimistic transaction still fails
	// after the bounded number of retries.
	ErrConflict = errors.New("transaction retries exhausted")
)

// GameStore is the single shared mutable store. Mutations go through
// optimistic read-modify-write transactions; reads are plain and never block.
//
// UpdateGame applies mutate to a consistent snapshot and commits it only if
// the record did not change since the read, retrying on conflict. An error
// from mutate aborts the transaction without committing and is returned
// unchanged. If the mutation leaves the game with no playerState entries the
// commit instead deletes the game together with its code mapping
// (auto-teardown shares the transaction with the membership removal).
//
// CreateGame reserves the game's join code and writes the record in one
// transaction, so a reserved code never outlives a nonexistent game.
type GameStore interface {
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id string) (*model.Game, error)
	UpdateGame(ctx context.Context, id string, mutate func(*model.Game) error) (*model.Game, error)
	DeleteGame(ctx context.Context, id string) error
	ListGameIDs(ctx context.Context) ([]string, error)

	LookupCode(ctx context.Context, code string) (string, error)
	DeleteCode(ctx context.Context, code string) error
	ListCodes(ctx context.Context) (map[string]string, error)

	GetPlayer(ctx context.Context, id string) (*model.PlayerRecord, error)
	UpdatePlayer(ctx context.Context, id string, mutate func(*model.PlayerRecord)) error
	DeletePlayer(ctx context.Context, id string) error
	ListPlayers(ctx context.Context) ([]*model.PlayerRecord, error)
}
