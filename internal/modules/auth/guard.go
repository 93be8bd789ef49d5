package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/santiyer/core/internal/models"
	"github.com/santiyer/core/internal/store"
)

// ErrDenied means the identity has no administrator record. By the time the
// caller sees it, the identity's session has already been revoked.
var ErrDenied = errors.New("auth: administrator access denied")

// Identity is the authenticated caller as decoded from its token.
type Identity struct {
	UserID    string
	Email     string
	SessionID string
}

const identityKey = "auth.identity"

// SetIdentity stores the identity on the request context. Called by the
// auth middleware after token validation.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// IdentityFromContext returns the identity the middleware stored, or the
// zero value on unauthenticated requests.
func IdentityFromContext(c *gin.Context) Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}
	}
	id, _ := v.(Identity)
	return id
}

// Guard decides whether an authenticated identity is an administrator.
type Guard struct {
	admins  store.Collection
	service *Service
	logger  *zap.Logger
}

func NewGuard(db store.Database, service *Service, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		admins:  db.Collection(models.AdminModel{}.CollectionName()),
		service: service,
		logger:  logger,
	}
}

// Authorize looks the identity up by its stable key first and by email on a
// miss (records created before identity keys were issued carry only the
// email). A denied identity must not stay signed in, so its session is
// revoked before the denial is reported.
func (g *Guard) Authorize(ctx context.Context, id Identity) error {
	var admin models.AdminModel
	err := g.admins.FindByID(ctx, id.UserID, &admin)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if id.Email != "" {
		var admins []models.AdminModel
		if err := g.admins.Find(ctx, store.Filter{"email": id.Email}, store.FindOptions{Limit: 1}, &admins); err != nil {
			return err
		}
		if len(admins) > 0 {
			return nil
		}
	}

	if err := g.service.RevokeSession(ctx, id.SessionID); err != nil {
		g.logger.Warn("could not revoke session of denied identity",
			zap.String("session_id", id.SessionID), zap.Error(err))
	}
	g.logger.Warn("admin access denied", zap.String("user_id", id.UserID), zap.String("email", id.Email))
	return ErrDenied
}
