package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogplatform-backend/internal/config"
	"blogplatform-backend/internal/domains/otp"
	"blogplatform-backend/internal/domains/otp/model"
	"blogplatform-backend/internal/shared"
)

// ---- fakes ----

type fakeOtpRepo struct {
	created []*model.OtpRecord

	latest    *model.OtpRecord
	latestErr error

	markVerifiedOK  bool
	markVerifiedErr error
	markVerifiedID  uuid.UUID

	deletedCount int
	deleteErr    error
}

func (f *fakeOtpRepo) Create(ctx context.Context, record *model.OtpRecord) error {
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	f.created = append(f.created, record)
	return nil
}

func (f *fakeOtpRepo) FindLatestByEmail(ctx context.Context, email string) (*model.OtpRecord, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeOtpRepo) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	f.markVerifiedID = id
	return f.markVerifiedOK, f.markVerifiedErr
}

func (f *fakeOtpRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	return f.deletedCount, f.deleteErr
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func testConfig() config.OTPConfig {
	return config.OTPConfig{
		ExpiryWindow: 10 * time.Minute,
		CodeLength:   6,
	}
}

// ---- Issue ----

func TestIssue_CreatesRecordAndEnqueuesEmail(t *testing.T) {
	repo := &fakeOtpRepo{}
	enq := &fakeEnqueuer{}
	svc := NewOtpService(repo, enq, testConfig())

	record, err := svc.Issue(context.Background(), "alice@example.com")
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "alice@example.com", record.Email)
	assert.Len(t, record.Code, 6)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), record.ExpiresAt, 5*time.Second)

	require.Len(t, enq.tasks, 1)
	assert.Equal(t, shared.TypeSendOTPEmail, enq.tasks[0].Type())

	var payload shared.SendOTPEmailPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, "alice@example.com", payload.Email)
	assert.Equal(t, record.Code, payload.Code)
}

func TestIssue_EnqueueFailureDoesNotFailIssuance(t *testing.T) {
	repo := &fakeOtpRepo{}
	enq := &fakeEnqueuer{err: errors.New("redis down")}
	svc := NewOtpService(repo, enq, testConfig())

	record, err := svc.Issue(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotNil(t, record)
	assert.Len(t, repo.created, 1)
}

func TestIssue_CodesAreZeroPadded(t *testing.T) {
	repo := &fakeOtpRepo{}
	enq := &fakeEnqueuer{}
	svc := NewOtpService(repo, enq, testConfig())

	// Every generated code must have exactly the configured length even
	// when the random value has leading zeros.
	for i := 0; i < 50; i++ {
		record, err := svc.Issue(context.Background(), "bob@example.com")
		require.NoError(t, err)
		require.Len(t, record.Code, 6)
	}
}

// ---- Verify ----

func validRecord() *model.OtpRecord {
	return &model.OtpRecord{
		ID:        uuid.New(),
		Email:     "alice@example.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
		Verified:  false,
	}
}

func TestVerify_Success(t *testing.T) {
	repo := &fakeOtpRepo{latest: validRecord(), markVerifiedOK: true}
	svc := NewOtpService(repo, &fakeEnqueuer{}, testConfig())

	err := svc.Verify(context.Background(), "alice@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, repo.latest.ID, repo.markVerifiedID)
}

func TestVerify_NoRecord(t *testing.T) {
	repo := &fakeOtpRepo{latestErr: otp.ErrOtpNotFound}
	svc := NewOtpService(repo, &fakeEnqueuer{}, testConfig())

	err := svc.Verify(context.Background(), "nobody@example.com", "123456")
	assert.ErrorIs(t, err, otp.ErrOtpNotFound)
}

func TestVerify_Expired(t *testing.T) {
	record := validRecord()
	record.ExpiresAt = time.Now().Add(-time.Minute)

	repo := &fakeOtpRepo{latest: record}
	svc := NewOtpService(repo, &fakeEnqueuer{}, testConfig())

	err := svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, otp.ErrOtpExpired)
}

func TestVerify_Mismatch(t *testing.T) {
	repo := &fakeOtpRepo{latest: validRecord()}
	svc := NewOtpService(repo, &fakeEnqueuer{}, testConfig())

	err := svc.Verify(context.Background(), "alice@example.com", "654321")
	assert.ErrorIs(t, err, otp.ErrOtpMismatch)
}

func TestVerify_Replay(t *testing.T) {
	record := validRecord()
	record.Verified = true

	repo := &fakeOtpRepo{latest: record}
	svc := NewOtpService(repo, &fakeEnqueuer{}, testConfig())

	// Submitting the correct code again after verification must be
	// distinguishable from a mismatch.
	err := svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, otp.ErrOtpAlreadyVerified)
}

func TestVerify_ConcurrentConsumption(t *testing.T) {
	// The conditional update reports the record was already consumed by a
	// racing verification.
	repo := &fakeOtpRepo{latest: validRecord(), markVerifiedOK: false}
	svc := NewOtpService(repo, &fakeEnqueuer{}, testConfig())

	err := svc.Verify(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, otp.ErrOtpAlreadyVerified)
}

// ---- Cleanup ----

func TestCleanupExpired(t *testing.T) {
	repo := &fakeOtpRepo{deletedCount: 7}
	svc := NewOtpService(repo, &fakeEnqueuer{}, testConfig())

	deleted, err := svc.CleanupExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 7, deleted)
}

func TestCleanupExpired_Error(t *testing.T) {
	repo := &fakeOtpRepo{deleteErr: errors.New("db down")}
	svc := NewOtpService(repo, &fakeEnqueuer{}, testConfig())

	_, err := svc.CleanupExpired(context.Background(), time.Now())
	assert.Error(t, err)
}
