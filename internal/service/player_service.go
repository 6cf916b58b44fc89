package service

import (
	"context"

	"itoparty/internal/apperr"
	"itoparty/internal/model"
	"itoparty/internal/store"
)

// PlayerService mutates per-player fields inside a game. Every mutator runs
// the same gate: the caller must be an admitted, non-kicked member; the write
// and the lastActivity refresh share one transaction.
type PlayerService struct {
	store store.GameStore
	now   func() int64
}

// NewPlayerService creates a new player service.
func NewPlayerService(st store.GameStore) *PlayerService {
	return &PlayerService{store: st, now: nowMillis}
}

// mutate applies a single-field write for the caller. Besides the field
// itself it refreshes the caller's lastConnected and the game's lastActivity.
func (s *PlayerService) mutate(ctx context.Context, callerID, gameID string, apply func(g *model.Game, ps *model.PlayerState) error) error {
	now := s.now()
	_, err := s.store.UpdateGame(ctx, gameID, func(g *model.Game) error {
		ps := g.Member(callerID)
		if ps == nil {
			return apperr.New(apperr.CodeNotFound, "player not in game")
		}
		if ps.Kicked {
			return apperr.New(apperr.CodePermissionDenied, "player has been kicked")
		}
		if err := apply(g, ps); err != nil {
			return err
		}
		ps.LastConnected = now
		g.LastActivity = now
		return nil
	})
	if err != nil {
		return mapStoreErr(err)
	}
	return touchPresence(ctx, s.store, callerID, now)
}

// UpdateName sets the caller's display name in the roster.
func (s *PlayerService) UpdateName(ctx context.Context, callerID, gameID, name string) error {
	return s.mutate(ctx, callerID, gameID, func(g *model.Game, _ *model.PlayerState) error {
		roster := g.Roster()
		info, ok := roster.PlayerInfo[callerID]
		if !ok {
			return apperr.New(apperr.CodeNotFound, "player not in roster")
		}
		info.Name = name
		roster.PlayerInfo[callerID] = info
		return nil
	})
}

// UpdateAvatar sets the caller's avatar, bounded to the available set.
func (s *PlayerService) UpdateAvatar(ctx context.Context, callerID, gameID string, avatar int) error {
	if avatar < model.AvatarMin || avatar > model.AvatarMax {
		return apperr.Newf(apperr.CodeInvalidArgument, "avatar must be between %d and %d", model.AvatarMin, model.AvatarMax)
	}
	return s.mutate(ctx, callerID, gameID, func(g *model.Game, _ *model.PlayerState) error {
		roster := g.Roster()
		info, ok := roster.PlayerInfo[callerID]
		if !ok {
			return apperr.New(apperr.CodeNotFound, "player not in roster")
		}
		info.Avatar = avatar
		roster.PlayerInfo[callerID] = info
		return nil
	})
}

// UpdateHint sets the caller's hint text.
func (s *PlayerService) UpdateHint(ctx context.Context, callerID, gameID, hint string) error {
	return s.mutate(ctx, callerID, gameID, func(_ *model.Game, ps *model.PlayerState) error {
		ps.Hint = hint
		return nil
	})
}

// Submit records the caller's submission timestamp.
func (s *PlayerService) Submit(ctx context.Context, callerID, gameID string) error {
	now := s.now()
	return s.mutate(ctx, callerID, gameID, func(_ *model.Game, ps *model.PlayerState) error {
		ps.Submitted = now
		return nil
	})
}

// Withdraw clears the caller's submission timestamp.
func (s *PlayerService) Withdraw(ctx context.Context, callerID, gameID string) error {
	return s.mutate(ctx, callerID, gameID, func(_ *model.Game, ps *model.PlayerState) error {
		ps.Submitted = 0
		return nil
	})
}

// Heartbeat refreshes only the caller's own lastConnected; it never touches
// other players' records.
func (s *PlayerService) Heartbeat(ctx context.Context, callerID, gameID string) error {
	return s.mutate(ctx, callerID, gameID, func(_ *model.Game, _ *model.PlayerState) error {
		return nil
	})
}
