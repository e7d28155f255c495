package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment statuses
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment holds the structure for the appointments collection in mongo
type Appointment struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID         string             `json:"userId" bson:"userId"`
	ProfessionalID string             `json:"professionalId" bson:"professionalId"`
	ScheduledAt    primitive.DateTime `json:"scheduledAt" bson:"scheduledAt"`
	DurationMins   int                `json:"durationMins,omitempty" bson:"durationMins,omitempty"`
	Status         string             `json:"status" bson:"status"`
	Notes          string             `json:"notes,omitempty" bson:"notes,omitempty"`
	AdminNotes     string             `json:"adminNotes,omitempty" bson:"adminNotes,omitempty"`
	CreatedAt      interface{}        `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt      interface{}        `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
