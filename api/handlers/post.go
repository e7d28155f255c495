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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/teamlexia/admin-api/api"
	"github.com/teamlexia/admin-api/config"
	"github.com/teamlexia/admin-api/databases"
	"github.com/teamlexia/admin-api/models"
)

// Post handles content moderation requests
type Post struct {
	PDB databases.PostDatabase
	RDB databases.ReportDatabase
}

// ListPostsHandler returns posts with paging, filterable by author and
// hidden state
func (p Post) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
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
	if authorID := r.URL.Query().Get("authorId"); authorID != "" {
		filter["authorId"] = authorID
	}
	if hidden := r.URL.Query().Get("hidden"); hidden != "" {
		filter["isHidden"] = hidden == "true"
	}

	dbResp, err := p.PDB.Find(ctx, filter, options.Find().SetSkip(skip).SetLimit(limit64))
	if err != nil {
		config.ErrorStatus("failed to get posts", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.Post{}
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

// PostByIDHandler returns a post by ID
func (p Post) PostByIDHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["post_id"]

	pID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := p.PDB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to get post by ID", http.StatusNotFound, w, err)
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

// SetPostVisibilityHandler hides or unhides a post
func (p Post) SetPostVisibilityHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["post_id"]

	pID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var requestBody struct {
		Hidden bool `json:"hidden"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := p.PDB.UpdateOne(ctx, bson.M{"_id": pID}, bson.M{"$set": bson.M{
		"isHidden":  requestBody.Hidden,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		config.ErrorStatus("failed to update post visibility", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount() == 0 {
		config.ErrorStatus("post not found", http.StatusNotFound, w, fmt.Errorf("no post with id %s", postID))
		return
	}

	zap.S().Infow("post visibility updated", "postId", postID, "hidden", requestBody.Hidden)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// DeletePostHandler removes a post and resolves any open reports against it
func (p Post) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["post_id"]

	pID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := p.PDB.DeleteOne(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to delete post", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("post not found", http.StatusNotFound, w, fmt.Errorf("no post with id %s", postID))
		return
	}

	// Open reports against a deleted post are settled, not orphaned
	_, err = p.RDB.UpdateMany(ctx,
		bson.M{"postId": pID, "status": models.ReportStatusOpen},
		bson.M{"$set": bson.M{
			"status":     models.ReportStatusResolved,
			"resolvedAt": time.Now(),
			"resolvedBy": "post-deletion",
		}},
	)
	if err != nil {
		zap.S().Warnw("failed to resolve reports for deleted post", "postId", postID, "error", err)
	}

	zap.S().Infow("post deleted", "postId", postID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// ReportedPostsHandler returns the moderation queue, every post that still
// has open reports together with those reports
func (p Post) ReportedPostsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reports, err := p.RDB.Find(ctx, bson.M{"status": models.ReportStatusOpen})
	if err != nil {
		config.ErrorStatus("failed to get open reports", http.StatusNotFound, w, err)
		return
	}

	byPost := make(map[primitive.ObjectID][]models.Report)
	var order []primitive.ObjectID
	for _, report := range reports {
		if _, seen := byPost[report.PostID]; !seen {
			order = append(order, report.PostID)
		}
		byPost[report.PostID] = append(byPost[report.PostID], report)
	}

	queue := []models.ReportedPost{}
	for _, postID := range order {
		post, err := p.PDB.FindOne(ctx, bson.M{"_id": postID})
		if err != nil {
			zap.S().Warnw("reported post no longer exists", "postId", postID.Hex())
			continue
		}
		queue = append(queue, models.ReportedPost{Post: *post, Reports: byPost[postID]})
	}

	b, err := json.Marshal(queue)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateReportHandler files a report against a post
func (p Post) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["post_id"]

	pID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var requestBody struct {
		ReporterID string `json:"reporterId"`
		Reason     string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if requestBody.Reason == "" {
		config.ErrorStatus("reason is required", http.StatusBadRequest, w, fmt.Errorf("reason is required"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err = p.PDB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("post not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get post", http.StatusInternalServerError, w, err)
		return
	}

	report := models.Report{
		ID:         primitive.NewObjectID(),
		PostID:     pID,
		ReporterID: requestBody.ReporterID,
		Reason:     requestBody.Reason,
		Status:     models.ReportStatusOpen,
		CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}
	_, err = p.RDB.InsertOne(ctx, report)
	if err != nil {
		config.ErrorStatus("failed to create report", http.StatusInternalServerError, w, err)
		return
	}

	_, err = p.PDB.UpdateOne(ctx, bson.M{"_id": pID}, bson.M{"$inc": bson.M{"reportCount": 1}})
	if err != nil {
		zap.S().Warnw("failed to bump report count", "postId", postID, "error", err)
	}

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// DismissReportHandler closes a report without touching the post
func (p Post) DismissReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := p.RDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get report", http.StatusInternalServerError, w, err)
		return
	}

	if report.Status != models.ReportStatusOpen {
		config.ErrorStatus("report already handled", http.StatusConflict, w, fmt.Errorf("report is %s", report.Status))
		return
	}

	_, err = p.RDB.UpdateOne(ctx, bson.M{"_id": rID}, bson.M{"$set": bson.M{
		"status":     models.ReportStatusDismissed,
		"resolvedAt": time.Now(),
		"resolvedBy": "admin",
	}})
	if err != nil {
		config.ErrorStatus("failed to dismiss report", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}
