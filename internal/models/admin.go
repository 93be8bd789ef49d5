package models

import "time"

// AdminModel is an administrator record. The document ID is the stable
// identity key; Email is kept as a legacy lookup key for records created
// before identity keys were issued.
type AdminModel struct {
	Base         `bson:",inline"`
	Email        string `bson:"email" json:"email"`
	Name         string `bson:"name"  json:"name"`
	PasswordHash string `bson:"password_hash" json:"-"`
}

func (AdminModel) CollectionName() string { return "admins" }

// SessionModel is an issued admin session bound to a JWT via its ID.
type SessionModel struct {
	Base      `bson:",inline"`
	AdminID   string     `bson:"admin_id"   json:"admin_id"`
	IP        string     `bson:"ip"         json:"ip"`
	UA        string     `bson:"ua"         json:"ua"`
	ExpiresAt time.Time  `bson:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty" json:"revoked_at,omitempty"`
}

func (SessionModel) CollectionName() string { return "sessions" }

// Active reports whether the session is usable at instant now.
func (s SessionModel) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
