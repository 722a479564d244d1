package handler

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blogplatform-backend/internal/domains/account"
	"blogplatform-backend/internal/domains/account/service"
	"blogplatform-backend/internal/domains/otp"
	"blogplatform-backend/internal/shared/middleware"
	"blogplatform-backend/internal/shared/response"
)

// AccountHandler translates HTTP requests into account service calls.
type AccountHandler struct {
	service service.AccountService
}

func NewAccountHandler(service service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register handles POST /auth/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	dto, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/users/"+dto.ID.String())
	response.Success(c, http.StatusCreated, gin.H{
		"user":    dto,
		"message": "Registration successful. Check your email for the verification code.",
	})
}

// VerifyEmail handles POST /auth/verify
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	var req account.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verified": true})
}

// ResendOTP handles POST /auth/resend
func (h *AccountHandler) ResendOTP(c *gin.Context) {
	var req account.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.service.ResendOTP(c.Request.Context(), req.Email); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "A new verification code has been sent."})
}

// Login handles POST /auth/login. The refresh token goes into an
// httpOnly cookie, not the response body.
func (h *AccountHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setRefreshCookie(c, resp.RefreshToken)
	resp.RefreshToken = ""

	response.Success(c, http.StatusOK, resp)
}

// Refresh handles POST /auth/refresh. The refresh token comes from the
// httpOnly cookie set at login, never from the request body.
func (h *AccountHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		response.Unauthorized(c, "missing refresh token")
		return
	}

	resp, err := h.service.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// Rotate the cookie with the new refresh token
	h.setRefreshCookie(c, resp.RefreshToken)
	resp.RefreshToken = ""

	response.Success(c, http.StatusOK, resp)
}

// Logout handles POST /auth/logout, clearing the refresh cookie.
func (h *AccountHandler) Logout(c *gin.Context) {
	if actor, ok := middleware.GetActor(c); ok {
		if err := h.service.Logout(c.Request.Context(), actor); err != nil {
			h.handleError(c, err)
			return
		}
	}

	h.clearRefreshCookie(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

func (h *AccountHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(
		"refresh_token",
		token,
		3*24*3600,
		"/",
		"",
		true,
		true,
	)
}

func (h *AccountHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie("refresh_token", "", -1, "/", "", true, true)
}

// ========================================
// PROFILE ENDPOINTS
// ========================================

// GetMe handles GET /users/me
func (h *AccountHandler) GetMe(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	dto, err := h.service.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// UpdateMe handles PUT /users/me
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req account.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	dto, err := h.service.UpdateProfile(c.Request.Context(), actor, actor.ID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// DeleteMe handles DELETE /users/me (password-confirmed self-deletion)
func (h *AccountHandler) DeleteMe(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req account.DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.DeleteOwnAccount(c.Request.Context(), actor, req); err != nil {
		h.handleError(c, err)
		return
	}

	// The session is gone with the account
	h.clearRefreshCookie(c)
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ListUsers handles GET /admin/users
func (h *AccountHandler) ListUsers(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req account.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid pagination parameters")
		return
	}

	resp, err := h.service.ListUsers(c.Request.Context(), actor, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// CreateUser handles POST /admin/users
func (h *AccountHandler) CreateUser(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req account.AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	dto, err := h.service.CreateUser(c.Request.Context(), actor, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// UpdateUser handles PUT /admin/users/:id. Same service call as
// UpdateMe, but aimed at an arbitrary profile and allowed to change
// the admin flag.
func (h *AccountHandler) UpdateUser(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	var req account.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	dto, err := h.service.UpdateProfile(c.Request.Context(), actor, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// DeleteUser handles DELETE /admin/users/:id
func (h *AccountHandler) DeleteUser(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), actor, id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ========================================
// HELPERS
// ========================================

func (h *AccountHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors

	switch {
	// 400 Bad Request - validation failure or wrong code
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed", validationErrs)
	case errors.Is(err, otp.ErrOtpMismatch):
		response.BadRequest(c, err.Error())

	// 401 Unauthorized - authentication failed
	case errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, account.ErrEmailNotVerified):
		response.Unauthorized(c, err.Error())

	// 403 Forbidden
	case errors.Is(err, account.ErrForbidden):
		response.Forbidden(c, err.Error())

	// 404 Not Found
	case errors.Is(err, account.ErrProfileNotFound),
		errors.Is(err, otp.ErrOtpNotFound):
		response.NotFound(c, err.Error())

	// 409 Conflict - duplicate email, or a replayed verification
	case errors.Is(err, account.ErrEmailAlreadyExists),
		errors.Is(err, otp.ErrOtpAlreadyVerified):
		response.Conflict(c, err.Error())

	// 410 Gone - expired code
	case errors.Is(err, otp.ErrOtpExpired):
		response.Gone(c, err.Error())

	// 500 Internal Server Error
	default:
		response.InternalServerError(c, "Internal server error")
	}
}
