package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teamlexia/admin-api/api/handlers"
	"github.com/teamlexia/admin-api/databases"
	mocksdb "github.com/teamlexia/admin-api/databases/mocks"
	"github.com/teamlexia/admin-api/models"
)

func TestAppointment_SetAppointmentStatusHandlerInvalidStatus(t *testing.T) {
	appointmentID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"status": "postponed"}`)
	req, err := http.NewRequest("PATCH", "/api/v1/appointments/"+appointmentID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"appointment_id": appointmentID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}

	a := handlers.Appointment{DB: databases.NewAppointmentDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.SetAppointmentStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	db.AssertNotCalled(t, "Collection", "appointments")
}

func TestAppointment_SetAppointmentStatusHandlerCancel(t *testing.T) {
	appointmentID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"status": "cancelled", "adminNotes": "family asked to reschedule"}`)
	req, err := http.NewRequest("PATCH", "/api/v1/appointments/"+appointmentID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"appointment_id": appointmentID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	updateResult.On("MatchedCount").Return(int64(1))

	var capturedUpdate interface{}
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil).Run(func(args mock.Arguments) {
		capturedUpdate = args.Get(2)
	})
	db.On("Collection", "appointments").Return(conn)

	a := handlers.Appointment{DB: databases.NewAppointmentDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.SetAppointmentStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	updateJSON, _ := json.Marshal(capturedUpdate)
	assert.Contains(t, string(updateJSON), models.AppointmentStatusCancelled)
	assert.Contains(t, string(updateJSON), "family asked to reschedule")
}

func TestAppointment_ListAppointmentsHandlerStatusFilter(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/appointments?status=scheduled", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Appointment)
		*arg = []models.Appointment{{Status: models.AppointmentStatusScheduled}}
	})

	var capturedFilter interface{}
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor).Run(func(args mock.Arguments) {
		capturedFilter = args.Get(1)
	})
	db.On("Collection", "appointments").Return(conn)

	a := handlers.Appointment{DB: databases.NewAppointmentDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ListAppointmentsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	filterJSON, _ := json.Marshal(capturedFilter)
	assert.Contains(t, string(filterJSON), "scheduled")
}

func TestAppointment_DeleteAppointmentHandlerNotFound(t *testing.T) {
	appointmentID := primitive.NewObjectID()
	req, err := http.NewRequest("DELETE", "/api/v1/appointments/"+appointmentID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"appointment_id": appointmentID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(0), nil)
	db.On("Collection", "appointments").Return(conn)

	a := handlers.Appointment{DB: databases.NewAppointmentDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.DeleteAppointmentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
