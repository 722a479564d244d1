package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogplatform-backend/internal/domains/otp"
	"blogplatform-backend/internal/domains/otp/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type otpRepo struct {
	db *pgxpool.Pool
}

func NewOtpRepository(db *pgxpool.Pool) OtpRepository {
	return &otpRepo{db: db}
}

func (r *otpRepo) Create(ctx context.Context, record *model.OtpRecord) error {
	query := `
		INSERT INTO otp_records (email, otp_code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, verified, created_at
	`
	err := r.db.QueryRow(ctx, query,
		record.Email,
		record.Code,
		record.ExpiresAt,
	).Scan(&record.ID, &record.Verified, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create otp record: %w", err)
	}

	return nil
}

func (r *otpRepo) FindLatestByEmail(ctx context.Context, email string) (*model.OtpRecord, error) {
	query := `
		SELECT id, email, otp_code, expires_at, verified, created_at
		FROM otp_records
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	record := &model.OtpRecord{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&record.ID,
		&record.Email,
		&record.Code,
		&record.ExpiresAt,
		&record.Verified,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, otp.ErrOtpNotFound
		}
		return nil, fmt.Errorf("failed to find otp record: %w", err)
	}

	return record, nil
}

// MarkVerified uses a conditional update so only one caller can win when
// two verifications race on the same record.
func (r *otpRepo) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE otp_records SET verified = TRUE WHERE id = $1 AND verified = FALSE`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark otp verified: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *otpRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM otp_records WHERE expires_at < $1`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otp records: %w", err)
	}

	return int(result.RowsAffected()), nil
}
