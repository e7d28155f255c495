package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verification request statuses. A request starts pending and moves to
// approved or rejected exactly once; both are terminal.
const (
	VerificationStatusPending  = "pending"
	VerificationStatusApproved = "approved"
	VerificationStatusRejected = "rejected"
)

// VerificationRequest holds the structure for the verificationRequests
// collection in MongoDB
type VerificationRequest struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID         string             `json:"userId" bson:"userId"`
	WorkEmail      string             `json:"workEmail" bson:"workEmail"`
	Profession     string             `json:"profession" bson:"profession"`
	Affiliation    string             `json:"affiliation" bson:"affiliation"`
	LicenseNumber  string             `json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"`
	TrustedDomain  bool               `json:"trustedDomain" bson:"trustedDomain"`
	DocumentURL    string             `json:"documentUrl,omitempty" bson:"documentUrl,omitempty"`
	Status         string             `json:"status" bson:"status"`
	SubmittedAt    time.Time          `json:"submittedAt" bson:"submittedAt"`
	ProcessedAt    *time.Time         `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	AdminNotes     string             `json:"adminNotes,omitempty" bson:"adminNotes,omitempty"`
	IsAutoVerified bool               `json:"isAutoVerified,omitempty" bson:"isAutoVerified,omitempty"`
}

// VerificationRequestWithUser is a verification request joined with the
// referenced user document for the review detail view
type VerificationRequestWithUser struct {
	VerificationRequest `bson:",inline"`
	User                *User `json:"user,omitempty" bson:"user,omitempty"`
}
