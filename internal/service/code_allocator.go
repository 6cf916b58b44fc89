package service

import (
	"context"
	"fmt"
	"math/rand"

	"itoparty/internal/apperr"
	"itoparty/internal/model"
	"itoparty/internal/store"
)

// codeAttempts bounds how many random candidates the allocator tries. The
// code space is only 10000 entries, so heavy contention can exhaust this.
const codeAttempts = 10

// CodeAllocator mints unique 4-digit join codes. Reservation and game
// creation happen in one store transaction, so a reserved code never
// outlives a nonexistent game.
type CodeAllocator struct {
	store   store.GameStore
	randInt func(n int) int
}

// NewCodeAllocator creates a new code allocator.
func NewCodeAllocator(st store.GameStore) *CodeAllocator {
	return &CodeAllocator{store: st, randInt: rand.Intn}
}

// CreateWithCode picks a random unreserved code, sets it as the game's
// password and creates the game under it. Retries with a fresh candidate on
// collision; exhausting the attempts reports AlreadyExists.
func (a *CodeAllocator) CreateWithCode(ctx context.Context, game *model.Game) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := fmt.Sprintf("%0*d", model.PasswordLength, a.randInt(model.PasswordMax+1))
		game.Password = code

		err := a.store.CreateGame(ctx, game)
		if err == store.ErrCodeTaken {
			continue
		}
		if err != nil {
			return "", apperr.Wrap(apperr.CodeInternal, "failed to create game", err)
		}
		return code, nil
	}
	return "", apperr.New(apperr.CodeAlreadyExists, "failed to generate a unique join code")
}
