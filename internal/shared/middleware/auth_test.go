package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogplatform-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(manager *jwt.Manager) *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(manager), func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, actor)
	})
	r.GET("/open", OptionalAuth(manager), func(c *gin.Context) {
		if actor, ok := GetActor(c); ok {
			c.JSON(http.StatusOK, actor)
			return
		}
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
	})
	r.GET("/admin", AuthMiddleware(manager), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	manager := jwt.NewManager("secret", 60)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID.String(), "user@example.com", false)
	require.NoError(t, err)

	w := do(newAuthRouter(manager), "/protected", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	w := do(newAuthRouter(jwt.NewManager("secret", 60)), "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := newAuthRouter(jwt.NewManager("secret", 60))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	w := do(newAuthRouter(jwt.NewManager("secret", 60)), "/protected", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	manager := jwt.NewManager("secret", 60)

	refresh, err := manager.GenerateRefreshToken(uuid.NewString())
	require.NoError(t, err)

	w := do(newAuthRouter(manager), "/protected", refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	w := do(newAuthRouter(jwt.NewManager("secret", 60)), "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")
}

func TestOptionalAuth_InvalidTokenTreatedAsAnonymous(t *testing.T) {
	w := do(newAuthRouter(jwt.NewManager("secret", 60)), "/open", "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")
}

func TestOptionalAuth_ValidTokenSetsActor(t *testing.T) {
	manager := jwt.NewManager("secret", 60)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID.String(), "user@example.com", false)
	require.NoError(t, err)

	w := do(newAuthRouter(manager), "/open", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestAdminMiddleware(t *testing.T) {
	manager := jwt.NewManager("secret", 60)

	userToken, err := manager.GenerateAccessToken(uuid.NewString(), "user@example.com", false)
	require.NoError(t, err)
	adminToken, err := manager.GenerateAccessToken(uuid.NewString(), "admin@example.com", true)
	require.NoError(t, err)

	r := newAuthRouter(manager)

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", userToken).Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", adminToken).Code)
}

func TestGetActor_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetActor(c)
	assert.False(t, ok)
}
