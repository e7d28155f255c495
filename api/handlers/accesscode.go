package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/teamlexia/admin-api/api"
	"github.com/teamlexia/admin-api/config"
	"github.com/teamlexia/admin-api/databases"
	"github.com/teamlexia/admin-api/models"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 8

// AccessCode handles access code related requests
type AccessCode struct {
	DB databases.AccessCodeDatabase
}

func newCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeCharset[rand.Intn(len(codeCharset))]
	}
	return string(b)
}

// GenerateCodeHandler creates a new access code
func (a AccessCode) GenerateCodeHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		GeneratedBy    string `json:"generatedBy"`
		ExpiresInHours int    `json:"expiresInHours"`
		IsOneTime      bool   `json:"isOneTime"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if requestBody.ExpiresInHours <= 0 {
		config.ErrorStatus("expiresInHours must be greater than zero", http.StatusBadRequest, w, fmt.Errorf("got %d", requestBody.ExpiresInHours))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := time.Now()
	accessCode := models.AccessCode{
		ID:          primitive.NewObjectID(),
		Code:        newCode(),
		GeneratedBy: requestBody.GeneratedBy,
		GeneratedAt: now,
		ExpiresAt:   now.Add(time.Duration(requestBody.ExpiresInHours) * time.Hour),
		IsOneTime:   requestBody.IsOneTime,
	}

	_, err := a.DB.InsertOne(ctx, accessCode)
	if err != nil {
		config.ErrorStatus("failed to create access code", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("access code generated",
		"codeId", accessCode.ID.Hex(),
		"generatedBy", accessCode.GeneratedBy,
		"oneTime", accessCode.IsOneTime,
	)

	b, err := json.Marshal(accessCode)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ListCodesHandler returns all access codes, optionally only the active ones
func (a AccessCode) ListCodesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{}
	if r.URL.Query().Get("active") == "true" {
		filter = bson.M{
			"isUsed":    false,
			"expiresAt": bson.M{"$gt": time.Now()},
		}
	}

	dbResp, err := a.DB.Find(ctx, filter, options.Find().SetSort(bson.M{"generatedAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to get access codes", http.StatusNotFound, w, err)
		return
	}

	// Because the frontend requires that the data elements inside models.AccessCodes exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.AccessCode{}
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

// CodeByIDHandler returns an access code by ID
func (a AccessCode) CodeByIDHandler(w http.ResponseWriter, r *http.Request) {
	codeID := mux.Vars(r)["code_id"]

	cID, err := primitive.ObjectIDFromHex(codeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := a.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get access code by ID", http.StatusNotFound, w, err)
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

// ValidateCodeHandler checks whether a submitted code can be used to log in.
// It never mutates the code, consumption happens separately.
func (a AccessCode) ValidateCodeHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Code string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := a.validate(ctx, requestBody.Code)
	if err != nil {
		config.ErrorStatus("failed to get access code", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// validate runs the read-only code checks shared by the validate endpoint
// and the login flow
func (a AccessCode) validate(ctx context.Context, code string) (models.ValidateCodeResponse, error) {
	dbResp, err := a.DB.FindOne(ctx, bson.M{"code": code, "isUsed": false})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ValidateCodeResponse{Valid: false, Reason: "Invalid or already used code"}, nil
		}
		return models.ValidateCodeResponse{}, err
	}

	if dbResp.IsExpired(time.Now()) {
		return models.ValidateCodeResponse{Valid: false, Reason: "Code has expired"}, nil
	}

	return models.ValidateCodeResponse{Valid: true, CodeID: dbResp.ID.Hex()}, nil
}

// ConsumeCodeHandler marks a one-time code as used or records another use of
// a reusable code
func (a AccessCode) ConsumeCodeHandler(w http.ResponseWriter, r *http.Request) {
	codeID := mux.Vars(r)["code_id"]

	cID, err := primitive.ObjectIDFromHex(codeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var requestBody struct {
		UsedBy string `json:"usedBy"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	accessCode, err := a.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("access code not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get access code", http.StatusInternalServerError, w, err)
		return
	}

	if accessCode.IsExpired(time.Now()) {
		config.ErrorStatus("code has expired", http.StatusGone, w, fmt.Errorf("code %s expired at %v", accessCode.ID.Hex(), accessCode.ExpiresAt))
		return
	}

	now := time.Now()
	if accessCode.IsOneTime {
		// Conditional update so two concurrent logins cannot both consume
		// the same one-time code
		res, err := a.DB.UpdateOne(ctx,
			bson.M{"_id": accessCode.ID, "isUsed": false},
			bson.M{"$set": bson.M{
				"isUsed":     true,
				"usedAt":     now,
				"usedBy":     requestBody.UsedBy,
				"lastUsedAt": now,
			}, "$inc": bson.M{"useCount": 1}},
		)
		if err != nil {
			config.ErrorStatus("failed to consume access code", http.StatusInternalServerError, w, err)
			return
		}
		if res.MatchedCount() == 0 {
			config.ErrorStatus("code already used", http.StatusConflict, w, fmt.Errorf("code %s is already used", accessCode.ID.Hex()))
			return
		}
	} else {
		// Reusable codes record every use and stay active until expiry
		_, err := a.DB.UpdateOne(ctx,
			bson.M{"_id": accessCode.ID},
			bson.M{"$set": bson.M{
				"usedAt":     now,
				"usedBy":     requestBody.UsedBy,
				"lastUsedAt": now,
			}, "$inc": bson.M{"useCount": 1}},
		)
		if err != nil {
			config.ErrorStatus("failed to record access code use", http.StatusInternalServerError, w, err)
			return
		}
	}

	zap.S().Infow("access code consumed",
		"codeId", accessCode.ID.Hex(),
		"oneTime", accessCode.IsOneTime,
		"usedBy", requestBody.UsedBy,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// DeleteCodeHandler revokes an access code by ID
func (a AccessCode) DeleteCodeHandler(w http.ResponseWriter, r *http.Request) {
	codeID := mux.Vars(r)["code_id"]

	cID, err := primitive.ObjectIDFromHex(codeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := a.DB.DeleteOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to delete access code", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("access code not found", http.StatusNotFound, w, fmt.Errorf("no code with id %s", codeID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// CleanupCodesHandler purges expired codes along with consumed one-time codes
func (a AccessCode) CleanupCodesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"expiresAt": bson.M{"$lt": time.Now()}},
			{"isOneTime": true, "isUsed": true},
		},
	}

	deleted, err := a.DB.DeleteMany(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to clean up access codes", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("access code cleanup complete", "deleted", deleted)

	b, err := json.Marshal(models.CleanupResponse{Deleted: deleted})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
