package databases

// go generate: mockery --name BootstrapEventDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamlexia/admin-api/models"
)

const bootstrapEventName = "bootstrapEvents"

// BootstrapEventDatabase contains the methods to use with the bootstrapEvent database
type BootstrapEventDatabase interface {
	InsertOne(ctx context.Context, event models.BootstrapEvent, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type bootstrapEventDatabase struct {
	db DatabaseHelper
}

// NewBootstrapEventDatabase initializes a new instance of bootstrapEvent database with the provided db connection
func NewBootstrapEventDatabase(db DatabaseHelper) BootstrapEventDatabase {
	return &bootstrapEventDatabase{
		db: db,
	}
}

func (b *bootstrapEventDatabase) InsertOne(ctx context.Context, event models.BootstrapEvent, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return b.db.Collection(bootstrapEventName).InsertOne(ctx, event, opts...)
}
