package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"itoparty/internal/apperr"
	"itoparty/internal/cache"
	"itoparty/internal/model"
	"itoparty/internal/store"
)

// GameService drives the session lifecycle: creation, admission, phase
// transitions and the membership-gated read paths. All mutations run inside
// single store transactions so concurrent callers cannot break the capacity
// bound or observe half-applied phase changes.
type GameService struct {
	store   store.GameStore
	authSvc *AuthService
	limiter cache.RateLimiter
	codes   *CodeAllocator
	now     func() int64
}

// NewGameService creates a new game service.
func NewGameService(st store.GameStore, authSvc *AuthService, limiter cache.RateLimiter, codes *CodeAllocator) *GameService {
	return &GameService{
		store:   st,
		authSvc: authSvc,
		limiter: limiter,
		codes:   codes,
		now:     nowMillis,
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// mapStoreErr translates store sentinels into taxonomy codes. Errors already
// carrying a code (mutator failures) pass through unchanged.
func mapStoreErr(err error) error {
	var coded *apperr.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		return apperr.New(apperr.CodeNotFound, "game not found")
	case errors.Is(err, store.ErrConflict):
		return apperr.Wrap(apperr.CodeInternal, "store contention", err)
	default:
		return apperr.Wrap(apperr.CodeInternal, "store failure", err)
	}
}

// touchPresence refreshes the caller's presence record outside any game.
func touchPresence(ctx context.Context, st store.GameStore, playerID string, nowMS int64) error {
	err := st.UpdatePlayer(ctx, playerID, func(rec *model.PlayerRecord) {
		rec.LastConnected = nowMS
	})
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to update presence", err)
	}
	return nil
}

func requireAdmin(game *model.Game, callerID string) error {
	if game.AdminID != callerID {
		return apperr.New(apperr.CodePermissionDenied, "only the game admin can perform this action")
	}
	return nil
}

// CreateResult is returned by Create.
type CreateResult struct {
	GameID   string `json:"gameId"`
	Password string `json:"password"`
}

// Create makes a new game with the caller as its first member and admin.
func (s *GameService) Create(ctx context.Context, callerID string) (*CreateResult, error) {
	now := s.now()

	if err := s.authSvc.VerifyAccountAge(ctx, callerID, now); err != nil {
		return nil, err
	}

	allowed, err := s.limiter.Allow(ctx, callerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "rate limit check failed", err)
	}
	if !allowed {
		return nil, apperr.New(apperr.CodeResourceExhausted, "game creation rate limit exceeded")
	}

	if err := touchPresence(ctx, s.store, callerID, now); err != nil {
		return nil, err
	}

	game := &model.Game{
		ID:      uuid.New().String(),
		Phase:   model.PhaseMatching,
		AdminID: callerID,
		StagingConfig: &model.GameConfig{
			Topic: "",
			PlayerInfo: map[string]model.PlayerInfo{
				callerID: {Avatar: randAvatar(), Entrance: now},
			},
		},
		PlayerState: map[string]*model.PlayerState{
			callerID: {LastConnected: now},
		},
		LastActivity: now,
	}

	code, err := s.codes.CreateWithCode(ctx, game)
	if err != nil {
		return nil, err
	}

	err = s.store.UpdatePlayer(ctx, callerID, func(rec *model.PlayerRecord) {
		rec.CurrentGameID = game.ID
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to update presence", err)
	}

	return &CreateResult{GameID: game.ID, Password: code}, nil
}

// Enter admits the caller into the game behind the given join code. The
// capacity check and the membership write share one transaction, so two
// racing entries can never push the roster past the limit. Re-entering a
// game the caller already belongs to just refreshes timestamps.
func (s *GameService) Enter(ctx context.Context, callerID, password string) (string, error) {
	now := s.now()

	if err := s.authSvc.VerifyAccountAge(ctx, callerID, now); err != nil {
		return "", err
	}
	if !validPassword(password) {
		return "", apperr.Newf(apperr.CodeInvalidArgument, "password must be a %d-digit string", model.PasswordLength)
	}

	gameID, err := s.store.LookupCode(ctx, password)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "code lookup failed", err)
	}
	if gameID == "" {
		return "", apperr.New(apperr.CodeNotFound, "invalid password")
	}

	_, err = s.store.UpdateGame(ctx, gameID, func(g *model.Game) error {
		if ps := g.Member(callerID); ps != nil {
			ps.LastConnected = now
			if g.Phase == model.PhaseMatching {
				info := g.StagingConfig.PlayerInfo[callerID]
				info.Entrance = now
				g.StagingConfig.PlayerInfo[callerID] = info
			}
			g.LastActivity = now
			return nil
		}
		if g.Phase != model.PhaseMatching {
			return apperr.New(apperr.CodeFailedPrecondition, "new players can only join during the matching phase")
		}
		if g.MemberCount() >= model.MaxPlayers {
			return apperr.New(apperr.CodeResourceExhausted, "game is full")
		}
		g.PlayerState[callerID] = &model.PlayerState{LastConnected: now}
		g.StagingConfig.PlayerInfo[callerID] = model.PlayerInfo{Avatar: randAvatar(), Entrance: now}
		if g.AdminID == "" {
			g.AdminID = callerID
		}
		g.LastActivity = now
		return nil
	})
	if err != nil {
		return "", mapStoreErr(err)
	}

	err = s.store.UpdatePlayer(ctx, callerID, func(rec *model.PlayerRecord) {
		rec.LastConnected = now
		rec.CurrentGameID = gameID
	})
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "failed to update presence", err)
	}
	return gameID, nil
}

// Start moves a matching game to the active phase: it deals every member a
// distinct value, promotes the staging config and flips the phase, all in
// one transaction.
func (s *GameService) Start(ctx context.Context, callerID, gameID string) error {
	now := s.now()
	_, err := s.store.UpdateGame(ctx, gameID, func(g *model.Game) error {
		if err := requireAdmin(g, callerID); err != nil {
			return err
		}
		if g.Phase != model.PhaseMatching {
			return apperr.New(apperr.CodeFailedPrecondition, "game can only be started during the matching phase")
		}

		pool := rand.Perm(model.ValueMax - model.ValueMin + 1)
		g.Values = make(map[string]int, len(g.PlayerState))
		i := 0
		for playerID := range g.PlayerState {
			g.Values[playerID] = pool[i] + model.ValueMin
			i++
		}

		g.Config = g.StagingConfig
		g.StagingConfig = nil
		g.Phase = model.PhaseActive
		g.LastActivity = now
		return nil
	})
	if err != nil {
		return mapStoreErr(err)
	}
	return touchPresence(ctx, s.store, callerID, now)
}

// End moves an active game to the ended phase, revealing all values.
func (s *GameService) End(ctx context.Context, callerID, gameID string) error {
	now := s.now()
	_, err := s.store.UpdateGame(ctx, gameID, func(g *model.Game) error {
		if err := requireAdmin(g, callerID); err != nil {
			return err
		}
		if g.Phase != model.PhaseActive {
			return apperr.New(apperr.CodeFailedPrecondition, "game can only be ended during the active phase")
		}
		g.Phase = model.PhaseEnded
		g.LastActivity = now
		return nil
	})
	if err != nil {
		return mapStoreErr(err)
	}
	return touchPresence(ctx, s.store, callerID, now)
}

// Reset returns an active or ended game to matching: values are discarded,
// hints and submissions cleared, and the config moved back to staging.
func (s *GameService) Reset(ctx context.Context, callerID, gameID string) error {
	now := s.now()
	_, err := s.store.UpdateGame(ctx, gameID, func(g *model.Game) error {
		if err := requireAdmin(g, callerID); err != nil {
			return err
		}
		if g.Phase != model.PhaseActive && g.Phase != model.PhaseEnded {
			return apperr.New(apperr.CodeFailedPrecondition, "game can only be reset from the active or ended phase")
		}
		for _, ps := range g.PlayerState {
			ps.Hint = ""
			ps.Submitted = 0
		}
		g.Values = nil
		g.StagingConfig = g.Config
		g.Config = nil
		g.Phase = model.PhaseMatching
		g.LastActivity = now
		return nil
	})
	if err != nil {
		return mapStoreErr(err)
	}
	return touchPresence(ctx, s.store, callerID, now)
}

// Exit removes the caller from the game. When the last member leaves, the
// store deletes the game and its code mapping in the same transaction.
func (s *GameService) Exit(ctx context.Context, callerID, gameID string) error {
	now := s.now()
	_, err := s.store.UpdateGame(ctx, gameID, func(g *model.Game) error {
		if g.Member(callerID) == nil {
			return apperr.New(apperr.CodeInvalidArgument, "player not in game")
		}
		delete(g.PlayerState, callerID)
		if roster := g.Roster(); roster != nil {
			delete(roster.PlayerInfo, callerID)
		}
		delete(g.Values, callerID)
		g.LastActivity = now
		return nil
	})
	if err != nil {
		return mapStoreErr(err)
	}

	err = s.store.UpdatePlayer(ctx, callerID, func(rec *model.PlayerRecord) {
		rec.LastConnected = now
		if rec.CurrentGameID == gameID {
			rec.CurrentGameID = ""
		}
	})
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to update presence", err)
	}
	return nil
}

// KickPlayer flags the target as kicked. The entry stays in the roster so
// the target's own reads observe the kick instead of a silent vanish; the
// seat it occupies is only freed when the target exits.
func (s *GameService) KickPlayer(ctx context.Context, callerID, gameID, targetID string) error {
	if targetID == callerID {
		return apperr.New(apperr.CodeInvalidArgument, "cannot kick yourself")
	}
	now := s.now()
	_, err := s.store.UpdateGame(ctx, gameID, func(g *model.Game) error {
		if err := requireAdmin(g, callerID); err != nil {
			return err
		}
		target := g.Member(targetID)
		if target == nil {
			return apperr.New(apperr.CodeNotFound, "target player not found in game")
		}
		target.Kicked = true
		g.LastActivity = now
		return nil
	})
	if err != nil {
		return mapStoreErr(err)
	}
	return touchPresence(ctx, s.store, callerID, now)
}

// UpdateTopic sets the staging topic. Admin only, matching phase only.
func (s *GameService) UpdateTopic(ctx context.Context, callerID, gameID, topic string) error {
	now := s.now()
	_, err := s.store.UpdateGame(ctx, gameID, func(g *model.Game) error {
		if err := requireAdmin(g, callerID); err != nil {
			return err
		}
		if g.Phase != model.PhaseMatching {
			return apperr.New(apperr.CodeFailedPrecondition, "topic can only change during the matching phase")
		}
		g.StagingConfig.Topic = topic
		g.LastActivity = now
		return nil
	})
	if err != nil {
		return mapStoreErr(err)
	}
	return touchPresence(ctx, s.store, callerID, now)
}

// InitPlayer resolves the caller's current game, clearing the pointer when
// the game is gone, expired, or no longer includes the caller. Returns the
// empty string when the caller has no live game.
func (s *GameService) InitPlayer(ctx context.Context, callerID string) (string, error) {
	now := s.now()
	if err := touchPresence(ctx, s.store, callerID, now); err != nil {
		return "", err
	}

	rec, err := s.store.GetPlayer(ctx, callerID)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "failed to load presence", err)
	}
	if rec == nil || rec.CurrentGameID == "" {
		return "", nil
	}

	game, err := s.store.GetGame(ctx, rec.CurrentGameID)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "failed to load game", err)
	}

	valid := game != nil && !game.ExpiredAt(now)
	if valid {
		ps := game.Member(callerID)
		valid = ps != nil && !ps.Kicked
	}
	if !valid {
		err := s.store.UpdatePlayer(ctx, callerID, func(rec *model.PlayerRecord) {
			rec.CurrentGameID = ""
		})
		if err != nil {
			return "", apperr.Wrap(apperr.CodeInternal, "failed to update presence", err)
		}
		return "", nil
	}
	return rec.CurrentGameID, nil
}

// GameConfigView is the membership-gated projection returned by GetConfig.
type GameConfigView struct {
	Config *model.GameConfig `json:"config"`
	Phase  model.Phase       `json:"phase"`
	Values map[string]int    `json:"values"`
}

// GetConfig returns the roster plus the value projection: before the ended
// phase the caller sees only their own value, afterwards everyone's.
func (s *GameService) GetConfig(ctx context.Context, callerID, gameID string) (*GameConfigView, error) {
	game, err := s.readGame(ctx, callerID, gameID)
	if err != nil {
		return nil, err
	}

	values := make(map[string]int)
	if game.Phase >= model.PhaseEnded {
		for playerID, v := range game.Values {
			values[playerID] = v
		}
	} else if v, ok := game.Values[callerID]; ok {
		values[callerID] = v
	}

	return &GameConfigView{
		Config: game.Roster(),
		Phase:  game.Phase,
		Values: values,
	}, nil
}

// GameInfo is the id/password pair returned by GetInfo.
type GameInfo struct {
	GameID   string `json:"gameId"`
	Password string `json:"password"`
}

// GetInfo returns the game's id and join code to a member.
func (s *GameService) GetInfo(ctx context.Context, callerID, gameID string) (*GameInfo, error) {
	game, err := s.readGame(ctx, callerID, gameID)
	if err != nil {
		return nil, err
	}
	return &GameInfo{GameID: game.ID, Password: game.Password}, nil
}

// GetValue returns the caller's own assigned value.
func (s *GameService) GetValue(ctx context.Context, callerID, gameID string) (int, error) {
	game, err := s.readGame(ctx, callerID, gameID)
	if err != nil {
		return 0, err
	}
	if game.Phase == model.PhaseMatching {
		return 0, apperr.New(apperr.CodeFailedPrecondition, "values are not available during the matching phase")
	}
	value, ok := game.Values[callerID]
	if !ok {
		return 0, apperr.New(apperr.CodeNotFound, "no value assigned to player")
	}
	return value, nil
}

// readGame is the shared read-path gate: the game must exist, must not have
// expired, and the caller must be a non-kicked member.
func (s *GameService) readGame(ctx context.Context, callerID, gameID string) (*model.Game, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load game", err)
	}
	if game == nil {
		return nil, apperr.New(apperr.CodeNotFound, "game not found")
	}
	now := s.now()
	if game.ExpiredAt(now) {
		return nil, apperr.New(apperr.CodeDeadlineExceeded, "game expired")
	}
	ps := game.Member(callerID)
	if ps == nil {
		return nil, apperr.New(apperr.CodeNotFound, "player not in game")
	}
	if ps.Kicked {
		return nil, apperr.New(apperr.CodePermissionDenied, "player has been kicked")
	}
	if err := touchPresence(ctx, s.store, callerID, now); err != nil {
		return nil, err
	}
	return game, nil
}

func randAvatar() int {
	return model.AvatarMin + rand.Intn(model.AvatarMax-model.AvatarMin+1)
}

func validPassword(password string) bool {
	if len(password) != model.PasswordLength {
		return false
	}
	for _, r := range password {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
