package databases

// go generate: mockery --name VerificationRequestDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamlexia/admin-api/models"
)

const verificationRequestName = "verificationRequests"

// VerificationRequestDatabase contains the methods to use with the verificationRequest database
type VerificationRequestDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.VerificationRequest, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.VerificationRequest, error)
	InsertOne(ctx context.Context, request models.VerificationRequest, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type verificationRequestDatabase struct {
	db DatabaseHelper
}

// NewVerificationRequestDatabase initializes a new instance of verificationRequest database with the provided db connection
func NewVerificationRequestDatabase(db DatabaseHelper) VerificationRequestDatabase {
	return &verificationRequestDatabase{
		db: db,
	}
}

func (v *verificationRequestDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.VerificationRequest, error) {
	request := &models.VerificationRequest{}
	err := v.db.Collection(verificationRequestName).FindOne(ctx, filter, opts...).Decode(&request)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (v *verificationRequestDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.VerificationRequest, error) {
	var requests []models.VerificationRequest
	cur := v.db.Collection(verificationRequestName).Find(ctx, filter, opts...)
	err := cur.Decode(&requests)
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (v *verificationRequestDatabase) InsertOne(ctx context.Context, request models.VerificationRequest, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return v.db.Collection(verificationRequestName).InsertOne(ctx, request, opts...)
}

func (v *verificationRequestDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return v.db.Collection(verificationRequestName).UpdateOne(ctx, filter, update, opts...)
}

func (v *verificationRequestDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return v.db.Collection(verificationRequestName).DeleteOne(ctx, filter, opts...)
}
