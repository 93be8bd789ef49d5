package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/pkg/jwt"
	"github.com/santiyer/core/internal/store"
)

func newTestAuth(t *testing.T) (*Service, *Guard, *store.MemoryDatabase) {
	t.Helper()
	db := store.NewMemoryDatabase()
	svc := NewService(db, nil)
	return svc, NewGuard(db, svc, nil), db
}

func TestSignInIssuesSessionBoundToken(t *testing.T) {
	svc, _, db := newTestAuth(t)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, "yonetici@santiyer.com", "Yönetici", "parola123")
	require.NoError(t, err)

	token, got, err := svc.SignIn(ctx, "yonetici@santiyer.com", "parola123", "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	claims, err := jwt.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, admin.Email, claims.Email)
	require.NotEmpty(t, claims.SessionID)

	var session models.SessionModel
	require.NoError(t, db.Mem("sessions").FindByID(ctx, claims.SessionID, &session))
	assert.Equal(t, admin.ID, session.AdminID)
	assert.True(t, session.Active(time.Now()))
}

func TestSignInFailuresAreUniform(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "yonetici@santiyer.com", "Yönetici", "parola123")
	require.NoError(t, err)

	_, _, unknownErr := svc.SignIn(ctx, "yok@santiyer.com", "parola123", "", "")
	_, _, wrongErr := svc.SignIn(ctx, "yonetici@santiyer.com", "yanlis", "", "")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestSignOutRevokesSession(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "a@b.com", "A", "parola123")
	require.NoError(t, err)
	token, _, err := svc.SignIn(ctx, "a@b.com", "parola123", "", "")
	require.NoError(t, err)
	claims, err := jwt.Parse(token)
	require.NoError(t, err)

	active, err := svc.SessionActive(ctx, claims.SessionID)
	require.NoError(t, err)
	require.True(t, active)

	require.NoError(t, svc.SignOut(ctx, claims.SessionID))

	active, err = svc.SessionActive(ctx, claims.SessionID)
	require.NoError(t, err)
	assert.False(t, active)

	// Revoking again is a no-op, as is revoking an unknown session.
	require.NoError(t, svc.SignOut(ctx, claims.SessionID))
	require.NoError(t, svc.SignOut(ctx, "yok"))
}

func TestAuthorizeByStableKey(t *testing.T) {
	svc, guard, _ := newTestAuth(t)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, "a@b.com", "A", "parola123")
	require.NoError(t, err)

	assert.NoError(t, guard.Authorize(ctx, Identity{UserID: admin.ID}))
}

func TestAuthorizeFallsBackToEmail(t *testing.T) {
	svc, guard, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "eski@santiyer.com", "Eski", "parola123")
	require.NoError(t, err)

	// Identity key unknown to the admin collection, but the email matches a
	// record created before identity keys existed.
	assert.NoError(t, guard.Authorize(ctx, Identity{
		UserID: "harici-saglayici-id",
		Email:  "eski@santiyer.com",
	}))
}

func TestDeniedIdentityGetsSessionRevoked(t *testing.T) {
	svc, guard, db := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "gercek@santiyer.com", "Gerçek", "parola123")
	require.NoError(t, err)

	// A session exists for an identity that has no admin record.
	session := models.SessionModel{AdminID: "davetsiz", ExpiresAt: time.Now().Add(time.Hour)}
	session.Touch()
	require.NoError(t, db.Mem("sessions").InsertOne(ctx, &session))

	err = guard.Authorize(ctx, Identity{
		UserID:    "davetsiz",
		Email:     "davetsiz@baskasi.com",
		SessionID: session.ID,
	})
	assert.ErrorIs(t, err, ErrDenied)

	active, err := svc.SessionActive(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, active, "denied identity must not keep an active session")
}
