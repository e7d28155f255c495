package databases

// go generate: mockery --name AccessCodeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamlexia/admin-api/models"
)

const accessCodeName = "accessCodes"

// AccessCodeDatabase contains the methods to use with the accessCode database
type AccessCodeDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AccessCode, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AccessCode, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, accessCode models.AccessCode, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type accessCodeDatabase struct {
	db DatabaseHelper
}

// NewAccessCodeDatabase initializes a new instance of accessCode database with the provided db connection
func NewAccessCodeDatabase(db DatabaseHelper) AccessCodeDatabase {
	return &accessCodeDatabase{
		db: db,
	}
}

func (c *accessCodeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AccessCode, error) {
	accessCode := &models.AccessCode{}
	err := c.db.Collection(accessCodeName).FindOne(ctx, filter, opts...).Decode(&accessCode)
	if err != nil {
		return nil, err
	}
	return accessCode, nil
}

func (c *accessCodeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AccessCode, error) {
	var accessCodes []models.AccessCode
	cur := c.db.Collection(accessCodeName).Find(ctx, filter, opts...)
	err := cur.Decode(&accessCodes)
	if err != nil {
		return nil, err
	}
	return accessCodes, nil
}

func (c *accessCodeDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(accessCodeName).CountDocuments(ctx, filter, opts...)
}

func (c *accessCodeDatabase) InsertOne(ctx context.Context, accessCode models.AccessCode, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(accessCodeName).InsertOne(ctx, accessCode, opts...)
}

func (c *accessCodeDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return c.db.Collection(accessCodeName).UpdateOne(ctx, filter, update, opts...)
}

func (c *accessCodeDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(accessCodeName).DeleteOne(ctx, filter, opts...)
}

func (c *accessCodeDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(accessCodeName).DeleteMany(ctx, filter, opts...)
}
