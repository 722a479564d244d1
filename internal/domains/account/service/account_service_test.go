package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogplatform-backend/internal/domains/account"
	"blogplatform-backend/internal/domains/account/model"
	"blogplatform-backend/internal/domains/otp"
	otpmodel "blogplatform-backend/internal/domains/otp/model"
	"blogplatform-backend/internal/infrastructure/identity"
	"blogplatform-backend/internal/shared"
	"blogplatform-backend/pkg/jwt"
)

// ---- fakes ----

type fakeIdentityStore struct {
	byEmail map[string]*identity.Identity

	markVerifiedErr error
	deletedIDs      []uuid.UUID
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{byEmail: make(map[string]*identity.Identity)}
}

func (f *fakeIdentityStore) SignUpTx(ctx context.Context, tx pgx.Tx, email, password string) (*identity.Identity, error) {
	return nil, errors.New("not used in tests")
}

func (f *fakeIdentityStore) Authenticate(ctx context.Context, email, password string) (*identity.Identity, error) {
	id, ok := f.byEmail[email]
	if !ok || id.PasswordHash != password {
		return nil, identity.ErrInvalidCredentials
	}
	return id, nil
}

func (f *fakeIdentityStore) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return id, nil
}

func (f *fakeIdentityStore) MarkVerified(ctx context.Context, email string) error {
	if f.markVerifiedErr != nil {
		return f.markVerifiedErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return identity.ErrNotFound
	}
	id.Verified = true
	return nil
}

func (f *fakeIdentityStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.deletedIDs = append(f.deletedIDs, id)
	for email, ident := range f.byEmail {
		if ident.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return identity.ErrNotFound
}

type fakeProfileRepo struct {
	byID map[uuid.UUID]*model.Profile

	deletedIDs []uuid.UUID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: make(map[uuid.UUID]*model.Profile)}
}

func (f *fakeProfileRepo) CreateTx(ctx context.Context, tx pgx.Tx, profile *model.Profile) error {
	f.byID[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, account.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	for _, p := range f.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, account.ErrProfileNotFound
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *model.Profile) error {
	if _, ok := f.byID[profile.ID]; !ok {
		return account.ErrProfileNotFound
	}
	cp := *profile
	f.byID[profile.ID] = &cp
	return nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return account.ErrProfileNotFound
	}
	delete(f.byID, id)
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeProfileRepo) List(ctx context.Context, limit, offset int) ([]*model.Profile, int, error) {
	var out []*model.Profile
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, len(out), nil
}

type fakeOtpService struct {
	issued    []string
	issueErr  error
	verifyErr error
}

func (f *fakeOtpService) Issue(ctx context.Context, email string) (*otpmodel.OtpRecord, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	f.issued = append(f.issued, email)
	return &otpmodel.OtpRecord{Email: email}, nil
}

func (f *fakeOtpService) Verify(ctx context.Context, email, code string) error {
	return f.verifyErr
}

func (f *fakeOtpService) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

type fakeUploadCleaner struct {
	prefixes []string
	err      error
}

func (f *fakeUploadCleaner) DeleteByPrefix(ctx context.Context, prefix string) error {
	f.prefixes = append(f.prefixes, prefix)
	return f.err
}

// ---- fixture ----

type fixture struct {
	identities *fakeIdentityStore
	profiles   *fakeProfileRepo
	otps       *fakeOtpService
	uploads    *fakeUploadCleaner
	svc        AccountService
}

func newFixture() *fixture {
	f := &fixture{
		identities: newFakeIdentityStore(),
		profiles:   newFakeProfileRepo(),
		otps:       &fakeOtpService{},
		uploads:    &fakeUploadCleaner{},
	}
	f.svc = NewAccountService(
		nil, // pool not needed: these tests never reach a transaction
		f.identities,
		f.profiles,
		f.otps,
		jwt.NewManager("test-secret", 60),
		f.uploads,
	)
	return f
}

// seedUser registers a verified user directly in the fakes.
func (f *fixture) seedUser(email, password string, verified, isAdmin bool) uuid.UUID {
	id := uuid.New()
	f.identities.byEmail[email] = &identity.Identity{
		ID:           id,
		Email:        email,
		PasswordHash: password,
		Verified:     verified,
	}
	f.profiles.byID[id] = &model.Profile{
		ID:        id,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		IsAdmin:   isAdmin,
	}
	return id
}

// ---- Register ----

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	f := newFixture()
	f.seedUser("alice@example.com", "password1", true, false)

	_, err := f.svc.Register(context.Background(), account.RegisterRequest{
		Email:     "alice@example.com",
		Password:  "password1",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	assert.ErrorIs(t, err, account.ErrEmailAlreadyExists)
}

func TestRegister_InvalidInput(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name string
		req  account.RegisterRequest
	}{
		{"missing email", account.RegisterRequest{Password: "password1", FirstName: "A", LastName: "B"}},
		{"bad email", account.RegisterRequest{Email: "not-an-email", Password: "password1", FirstName: "A", LastName: "B"}},
		{"short password", account.RegisterRequest{Email: "a@example.com", Password: "abc1", FirstName: "A", LastName: "B"}},
		{"password without digit", account.RegisterRequest{Email: "a@example.com", Password: "passwordonly", FirstName: "A", LastName: "B"}},
		{"missing name", account.RegisterRequest{Email: "a@example.com", Password: "password1", LastName: "B"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tc.req)
			assert.Error(t, err)
		})
	}
}

// ---- VerifyEmail ----

func TestVerifyEmail_MarksIdentityVerified(t *testing.T) {
	f := newFixture()
	f.seedUser("alice@example.com", "password1", false, false)

	err := f.svc.VerifyEmail(context.Background(), account.VerifyEmailRequest{
		Email: "alice@example.com",
		Code:  "123456",
	})
	require.NoError(t, err)
	assert.True(t, f.identities.byEmail["alice@example.com"].Verified)
}

func TestVerifyEmail_OtpErrorsPassThrough(t *testing.T) {
	for _, otpErr := range []error{otp.ErrOtpExpired, otp.ErrOtpMismatch, otp.ErrOtpAlreadyVerified, otp.ErrOtpNotFound} {
		f := newFixture()
		f.seedUser("alice@example.com", "password1", false, false)
		f.otps.verifyErr = otpErr

		err := f.svc.VerifyEmail(context.Background(), account.VerifyEmailRequest{
			Email: "alice@example.com",
			Code:  "123456",
		})
		assert.ErrorIs(t, err, otpErr)
		assert.False(t, f.identities.byEmail["alice@example.com"].Verified)
	}
}

// ---- ResendOTP ----

func TestResendOTP_IssuesFreshCode(t *testing.T) {
	f := newFixture()
	f.seedUser("alice@example.com", "password1", false, false)

	require.NoError(t, f.svc.ResendOTP(context.Background(), "alice@example.com"))
	assert.Equal(t, []string{"alice@example.com"}, f.otps.issued)
}

func TestResendOTP_UnknownEmail(t *testing.T) {
	f := newFixture()

	err := f.svc.ResendOTP(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, account.ErrProfileNotFound)
}

func TestResendOTP_AlreadyVerified(t *testing.T) {
	f := newFixture()
	f.seedUser("alice@example.com", "password1", true, false)

	err := f.svc.ResendOTP(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, otp.ErrOtpAlreadyVerified)
	assert.Empty(t, f.otps.issued)
}

// ---- Login ----

func TestLogin_Success(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	resp, err := f.svc.Login(context.Background(), account.LoginRequest{
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, id, resp.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)
}

func TestLogin_TokenCarriesAdminFlag(t *testing.T) {
	f := newFixture()
	f.seedUser("admin@example.com", "password1", true, true)

	resp, err := f.svc.Login(context.Background(), account.LoginRequest{
		Email:    "admin@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	claims, err := jwt.NewManager("test-secret", 60).ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture()
	f.seedUser("alice@example.com", "password1", true, false)

	_, err := f.svc.Login(context.Background(), account.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Login(context.Background(), account.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password1",
	})
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestLogin_UnverifiedAccount(t *testing.T) {
	f := newFixture()
	f.seedUser("alice@example.com", "password1", false, false)

	_, err := f.svc.Login(context.Background(), account.LoginRequest{
		Email:    "alice@example.com",
		Password: "password1",
	})
	assert.ErrorIs(t, err, account.ErrEmailNotVerified)
}

// ---- Refresh / Logout ----

func TestRefresh_RotatesTokenPair(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	login, err := f.svc.Login(context.Background(), account.LoginRequest{
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	resp, err := f.svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, id, resp.User.ID)

	claims, err := jwt.NewManager("test-secret", 60).ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
}

func TestRefresh_PicksUpAdminPromotion(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	login, err := f.svc.Login(context.Background(), account.LoginRequest{
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	// Promoted after login; the next refresh carries the new flag.
	f.profiles.byID[id].IsAdmin = true

	resp, err := f.svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)

	claims, err := jwt.NewManager("test-secret", 60).ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	accessToken, err := jwt.NewManager("test-secret", 60).GenerateAccessToken(id.String(), "alice@example.com", false)
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), accessToken)
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestRefresh_InvalidToken(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestRefresh_DeletedAccount(t *testing.T) {
	f := newFixture()

	// Token for an account that no longer exists
	token, err := jwt.NewManager("test-secret", 60).GenerateRefreshToken(uuid.NewString())
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	assert.NoError(t, f.svc.Logout(context.Background(), shared.Actor{ID: id, Email: "alice@example.com"}))
}

// ---- Profile ----

func TestUpdateProfile_PartialFields(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	newFirst := "Alicia"
	dto, err := f.svc.UpdateProfile(context.Background(), shared.Actor{ID: id}, id, account.UpdateProfileRequest{
		FirstName: &newFirst,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", dto.FirstName)
	assert.Equal(t, "User", dto.LastName)
}

func TestUpdateProfile_ForbiddenForOtherUsers(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	newFirst := "Hijacked"
	_, err := f.svc.UpdateProfile(context.Background(), shared.Actor{ID: uuid.New()}, id, account.UpdateProfileRequest{
		FirstName: &newFirst,
	})
	assert.ErrorIs(t, err, account.ErrForbidden)
}

func TestUpdateProfile_AdminMayEditAnyUser(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	newFirst := "Moderated"
	dto, err := f.svc.UpdateProfile(context.Background(), shared.Actor{ID: uuid.New(), Admin: true}, id, account.UpdateProfileRequest{
		FirstName: &newFirst,
	})
	require.NoError(t, err)
	assert.Equal(t, "Moderated", dto.FirstName)
}

func TestUpdateProfile_AdminFlagRequiresAdmin(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	// Self-update cannot grant admin rights
	wantAdmin := true
	_, err := f.svc.UpdateProfile(context.Background(), shared.Actor{ID: id}, id, account.UpdateProfileRequest{
		IsAdmin: &wantAdmin,
	})
	assert.ErrorIs(t, err, account.ErrForbidden)
	assert.False(t, f.profiles.byID[id].IsAdmin)

	// An admin can promote
	dto, err := f.svc.UpdateProfile(context.Background(), shared.Actor{ID: uuid.New(), Admin: true}, id, account.UpdateProfileRequest{
		IsAdmin: &wantAdmin,
	})
	require.NoError(t, err)
	assert.True(t, dto.IsAdmin)
	assert.True(t, f.profiles.byID[id].IsAdmin)
}

func TestGetProfile_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, account.ErrProfileNotFound)
}

// ---- Self-deletion ----

func TestDeleteOwnAccount_RemovesEverything(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	err := f.svc.DeleteOwnAccount(context.Background(),
		shared.Actor{ID: id, Email: "alice@example.com"},
		account.DeleteAccountRequest{Password: "password1"},
	)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{id}, f.profiles.deletedIDs)
	assert.Equal(t, []uuid.UUID{id}, f.identities.deletedIDs)
	assert.Equal(t, []string{id.String() + "/"}, f.uploads.prefixes)
}

func TestDeleteOwnAccount_WrongPassword(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	err := f.svc.DeleteOwnAccount(context.Background(),
		shared.Actor{ID: id, Email: "alice@example.com"},
		account.DeleteAccountRequest{Password: "wrong"},
	)
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)

	// Nothing was removed
	assert.Empty(t, f.profiles.deletedIDs)
	assert.Contains(t, f.identities.byEmail, "alice@example.com")
}

func TestDeleteOwnAccount_MissingPassword(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	err := f.svc.DeleteOwnAccount(context.Background(),
		shared.Actor{ID: id, Email: "alice@example.com"},
		account.DeleteAccountRequest{},
	)
	assert.Error(t, err)
	assert.Empty(t, f.profiles.deletedIDs)
}

// ---- Admin panel ----

func TestListUsers_AdminOnly(t *testing.T) {
	f := newFixture()
	f.seedUser("alice@example.com", "password1", true, false)

	_, err := f.svc.ListUsers(context.Background(), shared.Actor{ID: uuid.New()}, account.ListUsersRequest{})
	assert.ErrorIs(t, err, account.ErrForbidden)

	resp, err := f.svc.ListUsers(context.Background(), shared.Actor{ID: uuid.New(), Admin: true}, account.ListUsersRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Users, 1)
}

func TestDeleteUser_AdminOnly(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	err := f.svc.DeleteUser(context.Background(), shared.Actor{ID: uuid.New()}, id)
	assert.ErrorIs(t, err, account.ErrForbidden)
}

func TestDeleteUser_CannotDeleteSelf(t *testing.T) {
	f := newFixture()
	adminID := f.seedUser("admin@example.com", "password1", true, true)

	err := f.svc.DeleteUser(context.Background(), shared.Actor{ID: adminID, Admin: true}, adminID)
	assert.ErrorIs(t, err, account.ErrForbidden)
}

func TestDeleteUser_RemovesProfileIdentityAndUploads(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)

	err := f.svc.DeleteUser(context.Background(), shared.Actor{ID: uuid.New(), Admin: true}, id)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{id}, f.profiles.deletedIDs)
	assert.Equal(t, []uuid.UUID{id}, f.identities.deletedIDs)
	assert.Equal(t, []string{id.String() + "/"}, f.uploads.prefixes)
}

func TestDeleteUser_UploadCleanupFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	id := f.seedUser("alice@example.com", "password1", true, false)
	f.uploads.err = errors.New("minio down")

	err := f.svc.DeleteUser(context.Background(), shared.Actor{ID: uuid.New(), Admin: true}, id)
	assert.NoError(t, err)
}
