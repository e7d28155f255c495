package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessCode represents the structure of an access code document in MongoDB.
// Codes are bearer credentials gating dashboard login; the plaintext code is
// stored and redisplayed, which is an accepted simplification for this
// single-tenant trust model.
type AccessCode struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Code        string             `json:"code" bson:"code"`
	GeneratedBy string             `json:"generatedBy" bson:"generatedBy"`
	GeneratedAt time.Time          `json:"generatedAt" bson:"generatedAt"`
	ExpiresAt   time.Time          `json:"expiresAt" bson:"expiresAt"`
	IsOneTime   bool               `json:"isOneTime" bson:"isOneTime"`
	IsUsed      bool               `json:"isUsed" bson:"isUsed"`
	UsedAt      *time.Time         `json:"usedAt,omitempty" bson:"usedAt,omitempty"`
	UsedBy      string             `json:"usedBy,omitempty" bson:"usedBy,omitempty"`
	UseCount    int                `json:"useCount" bson:"useCount"`
	LastUsedAt  *time.Time         `json:"lastUsedAt,omitempty" bson:"lastUsedAt,omitempty"`
}

// IsExpired reports whether the code's expiry timestamp has passed
func (c *AccessCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// IsActive reports whether the code can still gate a login: never consumed
// and not yet expired
func (c *AccessCode) IsActive(now time.Time) bool {
	return !c.IsUsed && now.Before(c.ExpiresAt)
}
