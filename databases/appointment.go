package databases

// go generate: mockery --name AppointmentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamlexia/admin-api/models"
)

const appointmentName = "appointments"

// AppointmentDatabase contains the methods to use with the appointment database
type AppointmentDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Appointment, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Appointment, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type appointmentDatabase struct {
	db DatabaseHelper
}

// NewAppointmentDatabase initializes a new instance of appointment database with the provided db connection
func NewAppointmentDatabase(db DatabaseHelper) AppointmentDatabase {
	return &appointmentDatabase{
		db: db,
	}
}

func (a *appointmentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Appointment, error) {
	appointment := &models.Appointment{}
	err := a.db.Collection(appointmentName).FindOne(ctx, filter, opts...).Decode(&appointment)
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

func (a *appointmentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Appointment, error) {
	var appointments []models.Appointment
	cur := a.db.Collection(appointmentName).Find(ctx, filter, opts...)
	err := cur.Decode(&appointments)
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (a *appointmentDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(appointmentName).CountDocuments(ctx, filter, opts...)
}

func (a *appointmentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (UpdateResultHelper, error) {
	return a.db.Collection(appointmentName).UpdateOne(ctx, filter, update, opts...)
}

func (a *appointmentDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return a.db.Collection(appointmentName).DeleteOne(ctx, filter, opts...)
}
