package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BootstrapEvent records a successful use of the recovery bootstrap code.
type BootstrapEvent struct {
	ID         primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UsedAt     time.Time          `json:"usedAt" bson:"usedAt"`
	RemoteAddr string             `json:"remoteAddr" bson:"remoteAddr"`
	UserAgent  string             `json:"userAgent" bson:"userAgent"`
}
