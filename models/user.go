package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User holds the structure for the user collection in mongo. The admin
// dashboard reads the whole document; the verification workflow writes the
// professional fields as a side effect of approval or rejection.
type User struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email              string             `json:"email" bson:"email"`
	Name               string             `json:"name" bson:"name"`
	Username           string             `json:"username" bson:"username"`
	ProfilePicture     string             `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	AccountType        string             `json:"accountType,omitempty" bson:"accountType,omitempty"`
	IsVerified         bool               `json:"isVerified" bson:"isVerified"`
	VerificationStatus string             `json:"verificationStatus,omitempty" bson:"verificationStatus,omitempty"`
	VerifiedAt         interface{}        `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	RejectedAt         interface{}        `json:"rejectedAt,omitempty" bson:"rejectedAt,omitempty"`
	RejectionReason    string             `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	Profession         string             `json:"profession,omitempty" bson:"profession,omitempty"`
	Affiliation        string             `json:"affiliation,omitempty" bson:"affiliation,omitempty"`
	LicenseNumber      string             `json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"`
	IsSuspended        bool               `json:"isSuspended,omitempty" bson:"isSuspended,omitempty"`
	CreatedAt          interface{}        `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt          interface{}        `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
