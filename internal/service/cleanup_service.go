package service

import (
	"context"
	"log"

	"itoparty/internal/apperr"
	"itoparty/internal/model"
	"itoparty/internal/repository"
	"itoparty/internal/store"
)

// CleanupService reclaims abandoned state: inactive players, orphaned
// accounts, stale or empty games, and dangling code mappings. Each phase is
// best-effort; one item's failure never aborts the sweep of the others.
type CleanupService struct {
	store    store.GameStore
	accounts repository.AccountRepo
}

// NewCleanupService creates a new cleanup service.
func NewCleanupService(st store.GameStore, accounts repository.AccountRepo) *CleanupService {
	return &CleanupService{store: st, accounts: accounts}
}

// CleanupReport counts what one sweep removed.
type CleanupReport struct {
	PlayersRemoved  int `json:"playersRemoved"`
	AccountsRemoved int `json:"accountsRemoved"`
	GamesRemoved    int `json:"gamesRemoved"`
	CodesRemoved    int `json:"codesRemoved"`
}

// Sweep runs all four reclamation phases against the given time. Only a
// systemic failure (a listing that cannot be read at all) surfaces as an
// error; the partial report is returned either way.
func (s *CleanupService) Sweep(ctx context.Context, nowMS int64) (*CleanupReport, error) {
	report := &CleanupReport{}
	var sweepErr error

	if n, err := s.cleanupPlayers(ctx, nowMS); err != nil {
		sweepErr = err
	} else {
		report.PlayersRemoved = n
	}
	if n, err := s.cleanupAccounts(ctx); err != nil {
		sweepErr = err
	} else {
		report.AccountsRemoved = n
	}
	if n, err := s.cleanupGames(ctx, nowMS); err != nil {
		sweepErr = err
	} else {
		report.GamesRemoved = n
	}
	if n, err := s.cleanupCodes(ctx); err != nil {
		sweepErr = err
	} else {
		report.CodesRemoved = n
	}

	if sweepErr != nil {
		return report, apperr.Wrap(apperr.CodeInternal, "cleanup sweep failed", sweepErr)
	}
	return report, nil
}

// cleanupPlayers removes presence records idle past the player lifespan,
// then their accounts. Record first, account second: the orphan pass relies
// on that order being safe to interrupt.
func (s *CleanupService) cleanupPlayers(ctx context.Context, nowMS int64) (int, error) {
	records, err := s.store.ListPlayers(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := nowMS - model.PlayerLifespanMS
	removed := 0
	for _, rec := range records {
		if rec.LastConnected >= cutoff {
			continue
		}
		if err := s.store.DeletePlayer(ctx, rec.ID); err != nil {
			log.Printf("cleanup: failed to remove player %s: %v", rec.ID, err)
			continue
		}
		removed++
		if err := s.accounts.Delete(ctx, rec.ID); err != nil {
			log.Printf("cleanup: failed to remove account %s: %v", rec.ID, err)
		}
	}
	return removed, nil
}

// cleanupAccounts removes accounts with no presence record left.
func (s *CleanupService) cleanupAccounts(ctx context.Context) (int, error) {
	ids, err := s.accounts.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		rec, err := s.store.GetPlayer(ctx, id)
		if err != nil {
			log.Printf("cleanup: failed to check player %s: %v", id, err)
			continue
		}
		if rec != nil {
			continue
		}
		if err := s.accounts.Delete(ctx, id); err != nil {
			log.Printf("cleanup: failed to remove orphan account %s: %v", id, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// cleanupGames removes games idle past the lifespan or left without members.
// The store deletes the code mapping in the same step.
func (s *CleanupService) cleanupGames(ctx context.Context, nowMS int64) (int, error) {
	ids, err := s.store.ListGameIDs(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		game, err := s.store.GetGame(ctx, id)
		if err != nil {
			log.Printf("cleanup: failed to load game %s: %v", id, err)
			continue
		}
		if game == nil {
			continue
		}
		if !game.ExpiredAt(nowMS) && game.MemberCount() > 0 {
			continue
		}
		if err := s.store.DeleteGame(ctx, id); err != nil {
			log.Printf("cleanup: failed to remove game %s: %v", id, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// cleanupCodes removes reverse-index entries pointing at missing games.
func (s *CleanupService) cleanupCodes(ctx context.Context) (int, error) {
	codes, err := s.store.ListCodes(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for code, gameID := range codes {
		game, err := s.store.GetGame(ctx, gameID)
		if err != nil {
			log.Printf("cleanup: failed to check code %s: %v", code, err)
			continue
		}
		if game != nil {
			continue
		}
		if err := s.store.DeleteCode(ctx, code); err != nil {
			log.Printf("cleanup: failed to remove code %s: %v", code, err)
			continue
		}
		removed++
	}
	return removed, nil
}
