package service

import (
	"context"
	"testing"

	"itoparty/internal/apperr"
	"itoparty/internal/model"
)

func TestUpdateNameAndAvatar(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register("admin", "guest")
	res := e.mustCreate(t, "admin")
	e.mustEnter(t, "guest", res.Password)

	if err := e.players.UpdateName(ctx, "guest", res.GameID, "Nori"); err != nil {
		t.Fatalf("update name failed: %v", err)
	}
	if err := e.players.UpdateAvatar(ctx, "guest", res.GameID, 7); err != nil {
		t.Fatalf("update avatar failed: %v", err)
	}

	game := e.mustGet(t, res.GameID)
	info := game.Roster().PlayerInfo["guest"]
	if info.Name != "Nori" || info.Avatar != 7 {
		t.Fatalf("roster entry not updated: %+v", info)
	}
}

func TestUpdateAvatarBounds(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register("admin")
	res := e.mustCreate(t, "admin")

	err := e.players.UpdateAvatar(ctx, "admin", res.GameID, model.AvatarMax+1)
	wantCode(t, err, apperr.CodeInvalidArgument)
	err = e.players.UpdateAvatar(ctx, "admin", res.GameID, model.AvatarMin-1)
	wantCode(t, err, apperr.CodeInvalidArgument)
}

func TestSubmitAndWithdraw(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register("admin")
	res := e.mustCreate(t, "admin")

	if err := e.players.UpdateHint(ctx, "admin", res.GameID, "cold in winter"); err != nil {
		t.Fatalf("update hint failed: %v", err)
	}
	if err := e.players.Submit(ctx, "admin", res.GameID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	ps := e.mustGet(t, res.GameID).Member("admin")
	if ps.Hint != "cold in winter" {
		t.Fatalf("hint not stored: %q", ps.Hint)
	}
	if ps.Submitted == 0 {
		t.Fatal("submit must record a timestamp")
	}

	if err := e.players.Withdraw(ctx, "admin", res.GameID); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if ps := e.mustGet(t, res.GameID).Member("admin"); ps.Submitted != 0 {
		t.Fatalf("withdraw must clear the timestamp, got %d", ps.Submitted)
	}
}

func TestMutationsRequireMembership(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register("admin", "stranger")
	res := e.mustCreate(t, "admin")

	err := e.players.UpdateHint(ctx, "stranger", res.GameID, "hi")
	wantCode(t, err, apperr.CodeNotFound)
	err = e.players.Heartbeat(ctx, "stranger", res.GameID)
	wantCode(t, err, apperr.CodeNotFound)
}

func TestMutationsRejectedWhenKicked(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register("admin", "guest")
	res := e.mustCreate(t, "admin")
	e.mustEnter(t, "guest", res.Password)

	if err := e.games.KickPlayer(ctx, "admin", res.GameID, "guest"); err != nil {
		t.Fatalf("kick failed: %v", err)
	}

	err := e.players.UpdateHint(ctx, "guest", res.GameID, "let me back in")
	wantCode(t, err, apperr.CodePermissionDenied)
	err = e.players.Submit(ctx, "guest", res.GameID)
	wantCode(t, err, apperr.CodePermissionDenied)
}

func TestHeartbeatRefreshesOnlyCaller(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.register("admin", "guest")
	res := e.mustCreate(t, "admin")
	e.mustEnter(t, "guest", res.Password)

	before := e.mustGet(t, res.GameID)
	adminBefore := before.Member("admin").LastConnected

	e.players.now = func() int64 { return adminBefore + 5000 }
	if err := e.players.Heartbeat(ctx, "guest", res.GameID); err != nil {
		t.Fatalf("heartbeat failed: %v", err)
	}

	after := e.mustGet(t, res.GameID)
	if after.Member("guest").LastConnected != adminBefore+5000 {
		t.Fatal("heartbeat must refresh the caller")
	}
	if after.Member("admin").LastConnected != adminBefore {
		t.Fatal("heartbeat must not touch other members")
	}
	if after.LastActivity != adminBefore+5000 {
		t.Fatal("heartbeat must refresh game activity")
	}
}
