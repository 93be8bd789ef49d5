// Package auth implements admin sign-in with revocable sessions and the
// access guard that gates every mutating route.
package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/pkg/jwt"
	"github.com/santiyer/core/internal/store"
)

const sessionTTL = 7 * 24 * time.Hour

// ErrInvalidCredentials covers both unknown email and wrong password, so the
// two cases are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

type Service struct {
	admins   store.Collection
	sessions store.Collection
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(db store.Database, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		admins:   db.Collection(models.AdminModel{}.CollectionName()),
		sessions: db.Collection(models.SessionModel{}.CollectionName()),
		logger:   logger,
		now:      time.Now,
	}
}

// SignIn verifies the password, records a session and returns a JWT bound to
// it. Every failure path returns ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password, ip, ua string) (string, *models.AdminModel, error) {
	var admins []models.AdminModel
	if err := s.admins.Find(ctx, store.Filter{"email": email}, store.FindOptions{Limit: 1}, &admins); err != nil {
		return "", nil, err
	}
	if len(admins) == 0 {
		// Burn a comparison anyway so the timing matches the found case.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return "", nil, ErrInvalidCredentials
	}
	admin := admins[0]

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("failed sign-in attempt", zap.String("email", email), zap.String("ip", ip))
		return "", nil, ErrInvalidCredentials
	}

	session := models.SessionModel{
		AdminID:   admin.ID,
		IP:        ip,
		UA:        ua,
		ExpiresAt: s.now().Add(sessionTTL),
	}
	session.Touch()
	if err := s.sessions.InsertOne(ctx, &session); err != nil {
		return "", nil, err
	}

	token, err := jwt.Sign(admin.ID, admin.Email, session.ID, sessionTTL)
	if err != nil {
		return "", nil, err
	}
	return token, &admin, nil
}

// SignOut revokes the session; revoking an already revoked or unknown
// session is not an error.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	return s.RevokeSession(ctx, sessionID)
}

func (s *Service) RevokeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	err := s.sessions.UpdateByID(ctx, sessionID, map[string]interface{}{
		"revoked_at": s.now().UTC(),
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// SessionActive loads the session and checks it is neither revoked nor
// expired.
func (s *Service) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	var session models.SessionModel
	if err := s.sessions.FindByID(ctx, sessionID, &session); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return session.Active(s.now()), nil
}

// CreateAdmin registers an administrator with a bcrypt password hash. Used
// by the bootstrap path and tests.
func (s *Service) CreateAdmin(ctx context.Context, email, name, password string) (*models.AdminModel, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := models.AdminModel{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	admin.Touch()
	if err := s.admins.InsertOne(ctx, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}
