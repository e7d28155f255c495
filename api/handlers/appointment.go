package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/teamlexia/admin-api/api"
	"github.com/teamlexia/admin-api/config"
	"github.com/teamlexia/admin-api/databases"
	"github.com/teamlexia/admin-api/models"
)

// Appointment handles appointment oversight requests
type Appointment struct {
	DB databases.AppointmentDatabase
}

func validAppointmentStatus(status string) bool {
	switch status {
	case models.AppointmentStatusScheduled, models.AppointmentStatusCompleted, models.AppointmentStatusCancelled:
		return true
	}
	return false
}

// ListAppointmentsHandler returns appointments with paging, filterable by
// status, user and professional
func (a Appointment) ListAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10 // Default limit
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1 // Default page
	}
	skip := int64((page - 1) * limit)
	limit64 := int64(limit)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if userID := r.URL.Query().Get("userId"); userID != "" {
		filter["userId"] = userID
	}
	if professionalID := r.URL.Query().Get("professionalId"); professionalID != "" {
		filter["professionalId"] = professionalID
	}

	dbResp, err := a.DB.Find(ctx, filter, options.Find().SetSkip(skip).SetLimit(limit64))
	if err != nil {
		config.ErrorStatus("failed to get appointments", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.Appointment{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AppointmentByIDHandler returns an appointment by ID
func (a Appointment) AppointmentByIDHandler(w http.ResponseWriter, r *http.Request) {
	appointmentID := mux.Vars(r)["appointment_id"]

	aID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := a.DB.FindOne(ctx, bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get appointment by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SetAppointmentStatusHandler updates an appointment's status and the
// reviewer notes attached to the change
func (a Appointment) SetAppointmentStatusHandler(w http.ResponseWriter, r *http.Request) {
	appointmentID := mux.Vars(r)["appointment_id"]

	aID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var requestBody struct {
		Status     string `json:"status"`
		AdminNotes string `json:"adminNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if !validAppointmentStatus(requestBody.Status) {
		config.ErrorStatus("status must be scheduled, completed or cancelled", http.StatusBadRequest, w, fmt.Errorf("got %q", requestBody.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := a.DB.UpdateOne(ctx, bson.M{"_id": aID}, bson.M{"$set": bson.M{
		"status":     requestBody.Status,
		"adminNotes": requestBody.AdminNotes,
		"updatedAt":  time.Now(),
	}})
	if err != nil {
		config.ErrorStatus("failed to update appointment", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount() == 0 {
		config.ErrorStatus("appointment not found", http.StatusNotFound, w, fmt.Errorf("no appointment with id %s", appointmentID))
		return
	}

	zap.S().Infow("appointment status updated", "appointmentId", appointmentID, "status", requestBody.Status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// DeleteAppointmentHandler deletes an appointment by ID
func (a Appointment) DeleteAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	appointmentID := mux.Vars(r)["appointment_id"]

	aID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := a.DB.DeleteOne(ctx, bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to delete appointment", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("appointment not found", http.StatusNotFound, w, fmt.Errorf("no appointment with id %s", appointmentID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}
