package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post holds the structure for the posts collection in mongo
type Post struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	AuthorID    string             `json:"authorId" bson:"authorId"`
	Content     string             `json:"content" bson:"content"`
	ImageURL    string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	IsHidden    bool               `json:"isHidden" bson:"isHidden"`
	ReportCount int                `json:"reportCount" bson:"reportCount"`
	CreatedAt   interface{}        `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt   interface{}        `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// ReportedPost joins a post with its open reports for the moderation queue
type ReportedPost struct {
	Post    Post     `json:"post" bson:"post"`
	Reports []Report `json:"reports" bson:"reports"`
}
