package databases

// go generate: mockery --name ReportDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamlexia/admin-api/models"
)

const reportName = "reports"

// ReportDatabase contains the methods to use with the report database
type ReportDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Report, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Report, error)
	InsertOne(ctx context.Context, report models.Report, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type reportDatabase struct {
	db DatabaseHelper
}

// NewReportDatabase initializes a new instance of report database with the provided db connection
func NewReportDatabase(db DatabaseHelper) ReportDatabase {
	return &reportDatabase{
		db: db,
	}
}

func (r *reportDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Report, error) {
	report := &models.Report{}
	err := r.db.Collection(reportName).FindOne(ctx, filter, opts...).Decode(&report)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Report, error) {
	var reports []models.Report
	cur := r.db.Collection(reportName).Find(ctx, filter, opts...)
	err := cur.Decode(&reports)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportDatabase) InsertOne(ctx context.Context, report models.Report, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return r.db.Collection(reportName).InsertOne(ctx, report, opts...)
}

func (r *reportDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return r.db.Collection(reportName).UpdateOne(ctx, filter, update, opts...)
}

func (r *reportDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return r.db.Collection(reportName).UpdateMany(ctx, filter, update, opts...)
}

func (r *reportDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return r.db.Collection(reportName).DeleteMany(ctx, filter, opts...)
}
