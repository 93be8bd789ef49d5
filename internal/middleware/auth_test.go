package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/modules/auth"
	"github.com/santiyer/core/internal/pkg/jwt"
	"github.com/santiyer/core/internal/store"
)

func adminTestRouter(t *testing.T) (*gin.Engine, *auth.Service, *store.MemoryDatabase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := store.NewMemoryDatabase()
	svc := auth.NewService(db, nil)
	guard := auth.NewGuard(db, svc, nil)

	r := gin.New()
	r.GET("/admin/ping", Admin(svc, guard), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": auth.IdentityFromContext(c).Email})
	})
	return r, svc, db
}

func signedInToken(t *testing.T, svc *auth.Service, email string) string {
	t.Helper()
	_, err := svc.CreateAdmin(context.Background(), email, "Yonetici", "parola-123")
	require.NoError(t, err)
	token, _, err := svc.SignIn(context.Background(), email, "parola-123", "127.0.0.1", "test")
	require.NoError(t, err)
	return token
}

func TestAdminRejectsMissingOrGarbageToken(t *testing.T) {
	r, _, _ := adminTestRouter(t)

	for _, header := range []string{"", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAdminAcceptsSignedInAdmin(t *testing.T) {
	r, svc, _ := adminTestRouter(t)
	token := signedInToken(t, svc, "yonetici@santiyer.example.com")

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "yonetici@santiyer.example.com")
}

func TestAdminForbidsDeletedAdminAndRevokesSession(t *testing.T) {
	r, svc, db := adminTestRouter(t)
	token := signedInToken(t, svc, "eski@santiyer.example.com")

	// The admin record disappears while the token is still outstanding.
	admins := db.Mem(models.AdminModel{}.CollectionName())
	var stored []models.AdminModel
	require.NoError(t, admins.Find(context.Background(), nil, store.FindOptions{}, &stored))
	require.Len(t, stored, 1)
	require.NoError(t, admins.DeleteByID(context.Background(), stored[0].ID))

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The denial revoked the session, so the next attempt is a plain 401.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRejectsSignedOutSession(t *testing.T) {
	r, svc, _ := adminTestRouter(t)
	token := signedInToken(t, svc, "cikan@santiyer.example.com")

	claims, err := jwt.Parse(token)
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(context.Background(), claims.SessionID))

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthNeverBlocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := store.NewMemoryDatabase()
	svc := auth.NewService(db, nil)

	r := gin.New()
	r.GET("/public", OptionalAuth(svc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authed": IsAuthenticated(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "false")
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "abc", NormalizeToken("Bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("  bearer abc  "))
	assert.Equal(t, "", NormalizeToken("   "))
}
