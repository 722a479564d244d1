package repository

import (
	"context"

	"blogplatform-backend/internal/domains/account/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProfileRepository interface {
	// CreateTx inserts the profile inside the caller's transaction, so
	// registration can create the identity and profile atomically.
	CreateTx(ctx context.Context, tx pgx.Tx, profile *model.Profile) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*model.Profile, int, error)
}
