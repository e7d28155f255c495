package databases

// go generate: mockery --name PostDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamlexia/admin-api/models"
)

const postName = "posts"

// PostDatabase contains the methods to use with the post database
type PostDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Post, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Post, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type postDatabase struct {
	db DatabaseHelper
}

// NewPostDatabase initializes a new instance of post database with the provided db connection
func NewPostDatabase(db DatabaseHelper) PostDatabase {
	return &postDatabase{
		db: db,
	}
}

func (p *postDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Post, error) {
	post := &models.Post{}
	err := p.db.Collection(postName).FindOne(ctx, filter, opts...).Decode(&post)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (p *postDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Post, error) {
	var posts []models.Post
	cur := p.db.Collection(postName).Find(ctx, filter, opts...)
	err := cur.Decode(&posts)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (p *postDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return p.db.Collection(postName).CountDocuments(ctx, filter, opts...)
}

func (p *postDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return p.db.Collection(postName).UpdateOne(ctx, filter, update, opts...)
}

func (p *postDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return p.db.Collection(postName).DeleteOne(ctx, filter, opts...)
}
