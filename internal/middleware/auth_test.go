package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/cfptracker/internal/entity"
	userRepo "anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, subject, key string, ttl time.Duration) string {
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func newRouter(t *testing.T) (*gin.Engine, *entity.User, *entity.User) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	member := testutil.CreateUser(t, db, "member")
	admin := testutil.CreateUser(t, db, "admin")
	require.NoError(t, db.Model(admin).Update("role", entity.RoleAdmin).Error)

	m := NewAuthMiddleware(userRepo.NewUserRepository(db), secret)
	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	r.GET("/admin", m.RequireAuth(), m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, member, admin
}

func get(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, member, _ := newRouter(t)

	w := get(r, "/me", "Bearer "+sign(t, member.ID.String(), secret, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, member.ID.String(), w.Body.String())

	w = get(r, "/me?token="+sign(t, member.ID.String(), secret, time.Hour), "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer "+sign(t, member.ID.String(), "other", time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer "+sign(t, member.ID.String(), secret, -time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer "+sign(t, "not-a-uuid", secret, time.Hour)).Code)
}

func TestRequireAdmin(t *testing.T) {
	r, member, admin := newRouter(t)

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", "Bearer "+sign(t, member.ID.String(), secret, time.Hour)).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", "Bearer "+sign(t, admin.ID.String(), secret, time.Hour)).Code)
}
