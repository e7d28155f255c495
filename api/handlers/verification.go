package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/teamlexia/admin-api/api"
	"github.com/teamlexia/admin-api/config"
	"github.com/teamlexia/admin-api/databases"
	"github.com/teamlexia/admin-api/models"
	templates "github.com/teamlexia/admin-api/templates/html"
)

// Verification handles professional verification request reviews
type Verification struct {
	VRDB databases.VerificationRequestDatabase
	UDB  databases.UserDatabase
}

// ListRequestsHandler returns verification requests, filterable by status,
// profession, affiliation, work email and user ID
func (v Verification) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	q := r.URL.Query()

	filter := bson.M{}
	if status := q.Get("status"); status != "" {
		filter["status"] = status
	}

	dbResp, err := v.VRDB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get verification requests", http.StatusNotFound, w, err)
		return
	}

	// The free-text filters are substring matches, applied in process so
	// reviewers can search without worrying about exact casing
	dbResp = filterRequests(dbResp, q.Get("profession"), q.Get("affiliation"), q.Get("workEmail"), q.Get("userId"))

	if len(dbResp) == 0 {
		dbResp = []models.VerificationRequest{}
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

func filterRequests(requests []models.VerificationRequest, profession, affiliation, workEmail, userID string) []models.VerificationRequest {
	if profession == "" && affiliation == "" && workEmail == "" && userID == "" {
		return requests
	}

	var out []models.VerificationRequest
	for _, req := range requests {
		if profession != "" && !containsFold(req.Profession, profession) {
			continue
		}
		if affiliation != "" && !containsFold(req.Affiliation, affiliation) {
			continue
		}
		if workEmail != "" && !containsFold(req.WorkEmail, workEmail) {
			continue
		}
		if userID != "" && !containsFold(req.UserID, userID) {
			continue
		}
		out = append(out, req)
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// RequestByIDHandler returns a verification request by ID, optionally joined
// with the submitting user
func (v Verification) RequestByIDHandler(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["request_id"]

	rID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := v.VRDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get verification request by ID", http.StatusNotFound, w, err)
		return
	}

	var payload interface{} = dbResp
	if r.URL.Query().Get("include_user") == "true" {
		joined := models.VerificationRequestWithUser{VerificationRequest: *dbResp}
		if uID, err := primitive.ObjectIDFromHex(dbResp.UserID); err == nil {
			user, err := v.UDB.FindOne(ctx, bson.M{"_id": uID})
			if err != nil {
				zap.S().Warnw("failed to join user on verification request",
					"requestId", requestID,
					"userId", dbResp.UserID,
					"error", err,
				)
			} else {
				joined.User = user
			}
		}
		payload = joined
	}

	b, err := json.Marshal(payload)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SetStatusHandler approves or rejects a verification request. Approved and
// rejected are terminal, repeating the same decision only saves the notes.
func (v Verification) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["request_id"]

	rID, err := primitive.ObjectIDFromHex(requestID)
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

	if requestBody.Status != models.VerificationStatusApproved && requestBody.Status != models.VerificationStatusRejected {
		config.ErrorStatus("status must be approved or rejected", http.StatusBadRequest, w, fmt.Errorf("got %q", requestBody.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	request, err := v.VRDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("verification request not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get verification request", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now()

	if request.Status != models.VerificationStatusPending {
		if request.Status != requestBody.Status {
			config.ErrorStatus("verification request already processed", http.StatusConflict, w, fmt.Errorf("request is %s", request.Status))
			return
		}

		// Same decision again, only the reviewer notes change
		_, err := v.VRDB.UpdateOne(ctx, bson.M{"_id": rID}, bson.M{"$set": bson.M{
			"adminNotes":  requestBody.AdminNotes,
			"processedAt": now,
		}})
		if err != nil {
			config.ErrorStatus("failed to update verification request", http.StatusInternalServerError, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true}`))
		return
	}

	set := bson.M{
		"status":      requestBody.Status,
		"adminNotes":  requestBody.AdminNotes,
		"processedAt": now,
	}
	if requestBody.Status == models.VerificationStatusApproved {
		set["isAutoVerified"] = true
	}

	_, err = v.VRDB.UpdateOne(ctx, bson.M{"_id": rID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update verification request", http.StatusInternalServerError, w, err)
		return
	}

	// The user document sync is best effort, a failure leaves the decision
	// recorded on the request and gets retried by re-submitting the decision
	v.syncUser(ctx, request, requestBody.Status, requestBody.AdminNotes, now)

	go v.sendDecisionEmail(request, requestBody.Status, requestBody.AdminNotes)

	zap.S().Infow("verification request processed",
		"requestId", requestID,
		"status", requestBody.Status,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// syncUser pushes the verification decision onto the user document
func (v Verification) syncUser(ctx context.Context, request *models.VerificationRequest, status, notes string, now time.Time) {
	uID, err := primitive.ObjectIDFromHex(request.UserID)
	if err != nil {
		zap.S().Warnw("verification request has malformed user id, skipping user sync",
			"requestId", request.ID.Hex(),
			"userId", request.UserID,
		)
		return
	}

	var update bson.M
	if status == models.VerificationStatusApproved {
		update = bson.M{"$set": bson.M{
			"isVerified":         true,
			"verificationStatus": "verified",
			"verifiedAt":         now,
			"profession":         request.Profession,
			"affiliation":        request.Affiliation,
			"licenseNumber":      request.LicenseNumber,
			"updatedAt":          now,
		}}
	} else {
		// Rejection never strips an existing verified badge
		update = bson.M{"$set": bson.M{
			"verificationStatus": "rejected",
			"rejectedAt":         now,
			"rejectionReason":    notes,
			"updatedAt":          now,
		}}
	}

	if _, err := v.UDB.UpdateOne(ctx, bson.M{"_id": uID}, update); err != nil {
		zap.S().Warnw("failed to sync verification decision to user",
			"requestId", request.ID.Hex(),
			"userId", request.UserID,
			"error", err,
		)
	}
}

// sendDecisionEmail notifies the professional about the decision, in the
// background so a slow mail provider never blocks the review
func (v Verification) sendDecisionEmail(request *models.VerificationRequest, status, notes string) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Errorw("panic in sendDecisionEmail", "requestId", request.ID.Hex(), "panic", rec)
		}
	}()

	if request.WorkEmail == "" {
		return
	}

	sendgridAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sendgridAPIKey == "" {
		zap.S().Errorw("SENDGRID_API_KEY not set, cannot send email", "email", request.WorkEmail)
		return
	}

	var subject, htmlContent, plainText string
	if status == models.VerificationStatusApproved {
		subject = "Your TeamLexia Professional Verification is Approved"
		htmlContent = templates.RenderVerificationApprovedEmail()
		plainText = "Your professional verification request has been approved."
	} else {
		subject = "Update on Your TeamLexia Professional Verification"
		htmlContent = templates.RenderVerificationRejectedEmail(notes)
		plainText = "Your professional verification request was not approved."
	}

	from := mail.NewEmail("TeamLexia", "no-reply@teamlexia.com")
	to := mail.NewEmail("", request.WorkEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	client := sendgrid.NewSendClient(sendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send decision email", "email", request.WorkEmail, "error", err)
		return
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		zap.S().Infow("decision email sent", "email", request.WorkEmail, "statusCode", response.StatusCode)
	} else {
		zap.S().Warnw("decision email sent with non-2xx status", "email", request.WorkEmail, "statusCode", response.StatusCode, "body", response.Body)
	}
}

// DeleteRequestHandler deletes a verification request by ID
func (v Verification) DeleteRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["request_id"]

	rID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := v.VRDB.DeleteOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to delete verification request", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("verification request not found", http.StatusNotFound, w, fmt.Errorf("no request with id %s", requestID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}
