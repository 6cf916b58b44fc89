package service

import (
	"context"
	"testing"
	"time"

	"itoparty/internal/apperr"
	"itoparty/internal/model"
)

func TestRegisterAndValidate(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccounts()
	svc := NewAuthService(accounts, "test-secret")

	res, err := svc.Register(ctx)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.PlayerID == "" || res.Token == "" {
		t.Fatalf("incomplete registration: %+v", res)
	}

	account, err := accounts.GetByID(ctx, res.PlayerID)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account == nil {
		t.Fatal("registration must persist the account")
	}

	claims, err := svc.ValidateToken(res.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.PlayerID != res.PlayerID {
		t.Fatalf("claims carry %q, want %q", claims.PlayerID, res.PlayerID)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewAuthService(newFakeAccounts(), "test-secret")
	_, err := svc.ValidateToken("not-a-token")
	wantCode(t, err, apperr.CodeUnauthenticated)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	other := NewAuthService(newFakeAccounts(), "other-secret")
	res, err := other.Register(ctx)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	svc := NewAuthService(newFakeAccounts(), "test-secret")
	_, err = svc.ValidateToken(res.Token)
	wantCode(t, err, apperr.CodeUnauthenticated)
}

func TestVerifyAccountAge(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccounts()
	svc := NewAuthService(accounts, "test-secret")
	now := time.Now().UnixMilli()

	err := svc.VerifyAccountAge(ctx, "missing", now)
	wantCode(t, err, apperr.CodeFailedPrecondition)

	accounts.accounts["young"] = &model.Account{ID: "young", CreatedAt: now - model.AccountCooldownMS + 1000}
	err = svc.VerifyAccountAge(ctx, "young", now)
	wantCode(t, err, apperr.CodeFailedPrecondition)

	accounts.accounts["settled"] = &model.Account{ID: "settled", CreatedAt: now - model.AccountCooldownMS}
	if err := svc.VerifyAccountAge(ctx, "settled", now); err != nil {
		t.Fatalf("settled account rejected: %v", err)
	}
}
