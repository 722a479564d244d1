package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Identity is a credential record. It carries no profile data; the
// account domain keeps that in a separate table keyed by the same ID.
type Identity struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Verified     bool
	CreatedAt    time.Time
}

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("identity not found")
)

// Store is the credential backend contract.
type Store interface {
	// SignUpTx creates an unverified identity inside a caller-managed
	// transaction, so the identity and its profile row commit together.
	SignUpTx(ctx context.Context, tx pgx.Tx, email, password string) (*Identity, error)
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	MarkVerified(ctx context.Context, email string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

// ========================================
// SIGN UP
// ========================================

// SignUpTx hashes the password and inserts a new unverified identity.
func (s *postgresStore) SignUpTx(ctx context.Context, tx pgx.Tx, email, password string) (*Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO identities (email, password_hash, verified)
		VALUES ($1, $2, FALSE)
		RETURNING id, email, password_hash, verified, created_at`

	identity := &Identity{}
	err = tx.QueryRow(ctx, query, email, string(hash)).Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.Verified,
		&identity.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return identity, nil
}

// ========================================
// AUTHENTICATE
// ========================================

// Authenticate checks email + password. Unknown email and wrong password
// both return ErrInvalidCredentials so callers cannot tell them apart.
func (s *postgresStore) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return identity, nil
}

func (s *postgresStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	query := `
		SELECT id, email, password_hash, verified, created_at
		FROM identities
		WHERE email = $1`

	identity := &Identity{}
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.Verified,
		&identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	return identity, nil
}

// MarkVerified flips the verified flag after a successful OTP check.
func (s *postgresStore) MarkVerified(ctx context.Context, email string) error {
	query := `UPDATE identities SET verified = TRUE WHERE email = $1`

	result, err := s.pool.Exec(ctx, query, email)
	if err != nil {
		return fmt.Errorf("failed to mark identity verified: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the identity. The profile row goes with it via the
// foreign key cascade.
func (s *postgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM identities WHERE id = $1`

	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
