package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quanty/quanty-backend/pkg/db"
	"github.com/quanty/quanty-backend/pkg/db/dbtest"
	"gorm.io/gorm"
)

func TestRepositoryLifecycle(t *testing.T) {
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Email: "a@b.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Provider != ProviderEmail || !created.IsActive {
		t.Fatalf("unexpected defaults %+v", created)
	}

	found, err := repo.FindByEmail(ctx, "a@b.com")
	if err != nil || found.ID != created.ID {
		t.Fatalf("find by email: %v %+v", err, found)
	}

	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastLogin(ctx, created.ID, at); err != nil {
		t.Fatalf("update last login: %v", err)
	}
	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.LastLoginAt == nil || !byID.LastLoginAt.Equal(at) {
		t.Fatalf("expected last login %v, got %v", at, byID.LastLoginAt)
	}

	if _, err := repo.Create(ctx, CreateUserDTO{Email: "a@b.com", PasswordHash: "x"}); !db.IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "missing@b.com"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFromModelOmitsCredentials(t *testing.T) {
	if FromModel(nil) != nil {
		t.Fatalf("nil model should map to nil dto")
	}
	dto := FromModel(CreateUserDTO{Email: "x@y.z", PasswordHash: "secret", Provider: ProviderGoogle}.ToModel())
	if dto.Email != "x@y.z" || dto.Provider != ProviderGoogle {
		t.Fatalf("unexpected dto %+v", dto)
	}
}
