package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogplatform-backend/internal/domains/account"
	"blogplatform-backend/internal/domains/account/model"
	"blogplatform-backend/pkg/cache"
	"blogplatform-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	profileCacheKeyFmt = "user:%s"
	profileCacheTTL    = 10 * time.Minute
)

type profileRepo struct {
	db    *pgxpool.Pool
	cache cache.Cache
}

func NewProfileRepository(db *pgxpool.Pool, cache cache.Cache) ProfileRepository {
	return &profileRepo{db: db, cache: cache}
}

func (r *profileRepo) CreateTx(ctx context.Context, tx pgx.Tx, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (id, email, first_name, last_name, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		profile.ID,
		profile.Email,
		profile.FirstName,
		profile.LastName,
		profile.IsAdmin,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return account.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// FindByID is cache-aside: Redis first, then Postgres.
func (r *profileRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	cacheKey := fmt.Sprintf(profileCacheKeyFmt, id)

	cached := &model.Profile{}
	found, err := r.cache.Get(ctx, cacheKey, cached)
	if err != nil {
		logger.Error("Profile cache get failed", err)
	}
	if found {
		return cached, nil
	}

	query := `
		SELECT id, email, first_name, last_name, is_admin, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	profile := &model.Profile{}
	err = r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FirstName,
		&profile.LastName,
		&profile.IsAdmin,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, profile, profileCacheTTL); err != nil {
		logger.Error("Profile cache set failed", err)
	}

	return profile, nil
}

func (r *profileRepo) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	query := `
		SELECT id, email, first_name, last_name, is_admin, created_at, updated_at
		FROM profiles
		WHERE email = $1
	`
	profile := &model.Profile{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FirstName,
		&profile.LastName,
		&profile.IsAdmin,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *model.Profile) error {
	query := `
		UPDATE profiles
		SET first_name = $2, last_name = $3, is_admin = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		profile.ID,
		profile.FirstName,
		profile.LastName,
		profile.IsAdmin,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.ErrProfileNotFound
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	r.invalidate(ctx, profile.ID)
	return nil
}

func (r *profileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM profiles WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return account.ErrProfileNotFound
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *profileRepo) List(ctx context.Context, limit, offset int) ([]*model.Profile, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	query := `
		SELECT id, email, first_name, last_name, is_admin, created_at, updated_at
		FROM profiles
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*model.Profile
	for rows.Next() {
		profile := &model.Profile{}
		err := rows.Scan(
			&profile.ID,
			&profile.Email,
			&profile.FirstName,
			&profile.LastName,
			&profile.IsAdmin,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read profiles: %w", err)
	}

	return profiles, total, nil
}

func (r *profileRepo) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, fmt.Sprintf(profileCacheKeyFmt, id)); err != nil {
		logger.Error("Profile cache invalidation failed", err)
	}
}
