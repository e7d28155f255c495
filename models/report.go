package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report statuses for the moderation queue
const (
	ReportStatusOpen      = "open"
	ReportStatusDismissed = "dismissed"
	ReportStatusResolved  = "resolved"
)

// Report holds the structure for the reports collection in mongo
type Report struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	PostID     primitive.ObjectID `json:"postId" bson:"postId"`
	ReporterID string             `json:"reporterId" bson:"reporterId"`
	Reason     string             `json:"reason" bson:"reason"`
	Status     string             `json:"status" bson:"status"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
	ResolvedAt interface{}        `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	ResolvedBy string             `json:"resolvedBy,omitempty" bson:"resolvedBy,omitempty"`
}
