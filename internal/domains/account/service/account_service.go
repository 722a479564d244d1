package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogplatform-backend/internal/domains/account"
	"blogplatform-backend/internal/domains/account/model"
	"blogplatform-backend/internal/domains/account/repository"
	"blogplatform-backend/internal/domains/otp"
	otpservice "blogplatform-backend/internal/domains/otp/service"
	"blogplatform-backend/internal/infrastructure/identity"
	"blogplatform-backend/internal/shared"
	"blogplatform-backend/pkg/database"
	"blogplatform-backend/pkg/jwt"
	"blogplatform-backend/pkg/logger"
)

// UploadCleaner removes a user's uploads when the account goes away.
type UploadCleaner interface {
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type AccountService interface {
	// Register creates an unverified identity plus its profile and
	// issues the first OTP. Duplicate email fails with
	// account.ErrEmailAlreadyExists so the caller can suggest login.
	Register(ctx context.Context, req account.RegisterRequest) (*account.ProfileDTO, error)

	// VerifyEmail consumes the OTP and marks the identity verified.
	VerifyEmail(ctx context.Context, req account.VerifyEmailRequest) error

	// ResendOTP issues a fresh code for an unverified account.
	ResendOTP(ctx context.Context, email string) error

	Login(ctx context.Context, req account.LoginRequest) (*account.LoginResponse, error)

	// Refresh exchanges a valid refresh token for a fresh token pair.
	Refresh(ctx context.Context, refreshToken string) (*account.LoginResponse, error)

	// Logout records the event; the handler clears the refresh cookie.
	Logout(ctx context.Context, actor shared.Actor) error

	GetProfile(ctx context.Context, id uuid.UUID) (*account.ProfileDTO, error)

	// UpdateProfile edits the profile with the given ID. Permitted for
	// the profile owner and for admins; only admins may change is_admin.
	UpdateProfile(ctx context.Context, actor shared.Actor, id uuid.UUID, req account.UpdateProfileRequest) (*account.ProfileDTO, error)

	// DeleteOwnAccount removes the caller's account after re-checking
	// their password.
	DeleteOwnAccount(ctx context.Context, actor shared.Actor, req account.DeleteAccountRequest) error

	// Admin panel operations
	ListUsers(ctx context.Context, actor shared.Actor, req account.ListUsersRequest) (*account.ListUsersResponse, error)
	CreateUser(ctx context.Context, actor shared.Actor, req account.AdminCreateUserRequest) (*account.ProfileDTO, error)
	DeleteUser(ctx context.Context, actor shared.Actor, id uuid.UUID) error
}

type accountService struct {
	pool        *pgxpool.Pool
	identities  identity.Store
	profileRepo repository.ProfileRepository
	otpService  otpservice.OtpService
	jwtManager  *jwt.Manager
	uploads     UploadCleaner
}

func NewAccountService(
	pool *pgxpool.Pool,
	identities identity.Store,
	profileRepo repository.ProfileRepository,
	otpService otpservice.OtpService,
	jwtManager *jwt.Manager,
	uploads UploadCleaner,
) AccountService {
	return &accountService{
		pool:        pool,
		identities:  identities,
		profileRepo: profileRepo,
		otpService:  otpService,
		jwtManager:  jwtManager,
		uploads:     uploads,
	}
}

// ========================================
// REGISTRATION
// ========================================

func (s *accountService) Register(ctx context.Context, req account.RegisterRequest) (*account.ProfileDTO, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. BUSINESS RULE: duplicate email is a Conflict, not a generic
	// failure, so the handler can tell the user to log in instead.
	if _, err := s.identities.FindByEmail(ctx, req.Email); err == nil {
		return nil, account.ErrEmailAlreadyExists
	} else if !errors.Is(err, identity.ErrNotFound) {
		return nil, fmt.Errorf("check existing identity: %w", err)
	}

	// 3. CREATE IDENTITY + PROFILE atomically. The unique index still
	// backs us up if two registrations race past the check above.
	profile := &model.Profile{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsAdmin:   false,
	}

	err := database.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		id, err := s.identities.SignUpTx(ctx, tx, req.Email, req.Password)
		if err != nil {
			return err
		}

		profile.ID = id.ID
		return s.profileRepo.CreateTx(ctx, tx, profile)
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, account.ErrEmailAlreadyExists
		}
		return nil, err
	}

	// 4. ISSUE VERIFICATION CODE
	// Failure here is not fatal: the account exists and the user can
	// request a resend.
	if _, err := s.otpService.Issue(ctx, req.Email); err != nil {
		logger.Error("Failed to issue registration otp", err)
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": profile.ID,
		"email":   profile.Email,
	})

	dto := account.ToDTO(profile)
	return &dto, nil
}

func (s *accountService) VerifyEmail(ctx context.Context, req account.VerifyEmailRequest) error {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return err
	}

	// 2. CONSUME THE CODE
	if err := s.otpService.Verify(ctx, req.Email, req.Code); err != nil {
		return err
	}

	// 3. MARK IDENTITY VERIFIED
	if err := s.identities.MarkVerified(ctx, req.Email); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return account.ErrProfileNotFound
		}
		return err
	}

	logger.Info("Email verified", map[string]interface{}{
		"email": req.Email,
	})

	return nil
}

func (s *accountService) ResendOTP(ctx context.Context, email string) error {
	// 1. ACCOUNT MUST EXIST
	id, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return account.ErrProfileNotFound
		}
		return err
	}

	// 2. ALREADY VERIFIED: nothing to resend
	if id.Verified {
		return otp.ErrOtpAlreadyVerified
	}

	// 3. ISSUE A FRESH CODE (previous codes become dead)
	_, err = s.otpService.Issue(ctx, email)
	return err
}

// ========================================
// LOGIN
// ========================================

func (s *accountService) Login(ctx context.Context, req account.LoginRequest) (*account.LoginResponse, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. CHECK CREDENTIALS
	id, err := s.identities.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, account.ErrInvalidCredentials
		}
		return nil, err
	}

	// 3. UNVERIFIED ACCOUNTS CANNOT LOG IN
	if !id.Verified {
		return nil, account.ErrEmailNotVerified
	}

	// 4. LOAD PROFILE (carries the admin flag)
	profile, err := s.profileRepo.FindByID(ctx, id.ID)
	if err != nil {
		return nil, err
	}

	// 5. GENERATE TOKENS
	accessToken, err := s.jwtManager.GenerateAccessToken(profile.ID.String(), profile.Email, profile.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(profile.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": profile.ID,
	})

	return &account.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.jwtManager.AccessExpiry()),
		User:         account.ToDTO(profile),
	}, nil
}

// Refresh rotates the token pair. Every failure maps to
// ErrInvalidCredentials; the caller never learns why the exchange
// was refused.
func (s *accountService) Refresh(ctx context.Context, refreshToken string) (*account.LoginResponse, error) {
	// 1. VALIDATE THE REFRESH TOKEN (access tokens are rejected)
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, account.ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, account.ErrInvalidCredentials
	}

	// 2. ACCOUNT MAY BE GONE since the token was minted
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrProfileNotFound) {
			return nil, account.ErrInvalidCredentials
		}
		return nil, err
	}

	// 3. MINT A FRESH PAIR (admin flag re-read from the profile, so a
	// promotion or demotion takes effect on the next refresh)
	accessToken, err := s.jwtManager.GenerateAccessToken(profile.ID.String(), profile.Email, profile.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(profile.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &account.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresAt:    time.Now().Add(s.jwtManager.AccessExpiry()),
		User:         account.ToDTO(profile),
	}, nil
}

// Logout logs the event for security monitoring. The refresh cookie is
// cleared by the handler; tokens are stateless and expire on their own.
func (s *accountService) Logout(ctx context.Context, actor shared.Actor) error {
	logger.Info("User logged out", map[string]interface{}{
		"user_id": actor.ID,
	})
	return nil
}

// ========================================
// PROFILE
// ========================================

func (s *accountService) GetProfile(ctx context.Context, id uuid.UUID) (*account.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := account.ToDTO(profile)
	return &dto, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, actor shared.Actor, id uuid.UUID, req account.UpdateProfileRequest) (*account.ProfileDTO, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. AUTHORIZE: self-update or admin. The admin flag itself may
	// only be changed by an admin.
	if actor.ID != id && !actor.Admin {
		return nil, account.ErrForbidden
	}
	if req.IsAdmin != nil && !actor.Admin {
		return nil, account.ErrForbidden
	}

	// 3. LOAD TARGET PROFILE
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 4. APPLY FIELDS
	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.IsAdmin != nil {
		profile.IsAdmin = *req.IsAdmin
	}

	// 5. PERSIST
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	dto := account.ToDTO(profile)
	return &dto, nil
}

// DeleteOwnAccount is the self-service counterpart of DeleteUser. The
// password is re-checked before anything is removed.
func (s *accountService) DeleteOwnAccount(ctx context.Context, actor shared.Actor, req account.DeleteAccountRequest) error {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return err
	}

	// 2. CONFIRM THE PASSWORD
	if _, err := s.identities.Authenticate(ctx, actor.Email, req.Password); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return account.ErrInvalidCredentials
		}
		return err
	}

	// 3. CASCADE DELETE
	if err := s.removeAccount(ctx, actor.ID); err != nil {
		return err
	}

	logger.Info("Account deleted by owner", map[string]interface{}{
		"user_id": actor.ID,
	})

	return nil
}

// ========================================
// ADMIN PANEL
// ========================================

func (s *accountService) ListUsers(ctx context.Context, actor shared.Actor, req account.ListUsersRequest) (*account.ListUsersResponse, error) {
	if !actor.Admin {
		return nil, account.ErrForbidden
	}

	req.SetDefaults()

	profiles, total, err := s.profileRepo.List(ctx, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return nil, err
	}

	users := make([]account.ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, account.ToDTO(p))
	}

	return &account.ListUsersResponse{
		Users:      users,
		Pagination: account.NewPaginationMeta(req.Page, req.Limit, total),
	}, nil
}

// CreateUser creates a pre-verified account without the OTP flow.
func (s *accountService) CreateUser(ctx context.Context, actor shared.Actor, req account.AdminCreateUserRequest) (*account.ProfileDTO, error) {
	if !actor.Admin {
		return nil, account.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile := &model.Profile{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsAdmin:   req.IsAdmin,
	}

	err := database.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		id, err := s.identities.SignUpTx(ctx, tx, req.Email, req.Password)
		if err != nil {
			return err
		}

		profile.ID = id.ID
		return s.profileRepo.CreateTx(ctx, tx, profile)
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, account.ErrEmailAlreadyExists
		}
		return nil, err
	}

	if err := s.identities.MarkVerified(ctx, req.Email); err != nil {
		return nil, err
	}

	logger.Info("User created by admin", map[string]interface{}{
		"user_id":  profile.ID,
		"admin_id": actor.ID,
		"is_admin": profile.IsAdmin,
	})

	dto := account.ToDTO(profile)
	return &dto, nil
}

// DeleteUser removes the account, its posts (via cascade) and its
// uploads. Admins cannot delete themselves to avoid locking the panel.
func (s *accountService) DeleteUser(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	if !actor.Admin {
		return account.ErrForbidden
	}
	if actor.ID == id {
		return account.ErrForbidden
	}

	if err := s.removeAccount(ctx, id); err != nil {
		return err
	}

	logger.Info("User deleted by admin", map[string]interface{}{
		"user_id":  id,
		"admin_id": actor.ID,
	})

	return nil
}

// removeAccount drops the profile, the identity and the user's uploads.
// Shared by admin deletion and self-deletion.
func (s *accountService) removeAccount(ctx context.Context, id uuid.UUID) error {
	// Profile first (invalidates cache), then identity. The FK cascade
	// would remove the profile anyway; deleting explicitly keeps the
	// cache consistent.
	if err := s.profileRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.identities.Delete(ctx, id); err != nil && !errors.Is(err, identity.ErrNotFound) {
		return err
	}

	// Uploads are best-effort cleanup
	if err := s.uploads.DeleteByPrefix(ctx, id.String()+"/"); err != nil {
		logger.Error("Failed to delete user uploads", err)
	}

	return nil
}
