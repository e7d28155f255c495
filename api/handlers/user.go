package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
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

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the bearer middleware already gates this route
	},
}

// userWatchHub tracks dashboard connections subscribed to user changes
type userWatchHub struct {
	clients map[*websocket.Conn]struct{}
	mutex   sync.Mutex
}

var watchHub = &userWatchHub{
	clients: make(map[*websocket.Conn]struct{}),
}

// User handles user management requests
type User struct {
	DB databases.UserDatabase
}

// fields the dashboard is allowed to patch on a user document
var patchableUserFields = map[string]bool{
	"name":               true,
	"username":           true,
	"profilePicture":     true,
	"accountType":        true,
	"isVerified":         true,
	"verificationStatus": true,
	"profession":         true,
	"affiliation":        true,
	"licenseNumber":      true,
	"isSuspended":        true,
}

// ListUsersHandler returns users with paging and an optional case-insensitive
// search across name, username and email
func (u User) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
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
	if q := r.URL.Query().Get("q"); q != "" {
		regex := bson.M{"$regex": q, "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": regex},
			{"username": regex},
			{"email": regex},
		}
	}
	if accountType := r.URL.Query().Get("accountType"); accountType != "" {
		filter["accountType"] = accountType
	}
	if r.URL.Query().Get("verified") == "true" {
		filter["isVerified"] = true
	}

	dbResp, err := u.DB.Find(ctx, filter, options.Find().SetSkip(skip).SetLimit(limit64))
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.User{}
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

// UserByIDHandler returns a user by ID
func (u User) UserByIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
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

// UpdateUserFieldHandler patches the allowed fields on a user document
func (u User) UpdateUserFieldHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var requestBody map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{}
	for field, value := range requestBody {
		if !patchableUserFields[field] {
			config.ErrorStatus("field is not editable", http.StatusBadRequest, w, fmt.Errorf("field %q", field))
			return
		}
		set[field] = value
	}
	if len(set) == 0 {
		config.ErrorStatus("no fields to update", http.StatusBadRequest, w, fmt.Errorf("empty body"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := u.DB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update user", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount() == 0 {
		config.ErrorStatus("user not found", http.StatusNotFound, w, fmt.Errorf("no user with id %s", userID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// DeleteUserHandler deletes a user by ID
func (u User) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := u.DB.DeleteOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to delete user", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("user not found", http.StatusNotFound, w, fmt.Errorf("no user with id %s", userID))
		return
	}

	zap.S().Infow("user deleted", "userId", userID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// WatchUsersHandler streams user document changes to the dashboard over a
// websocket, backed by a change stream
func (u User) WatchUsersHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade error", "error", err)
		return
	}

	watchHub.mutex.Lock()
	watchHub.clients[conn] = struct{}{}
	watchHub.mutex.Unlock()
	zap.S().Infow("dashboard connected to user watch", "remoteAddr", r.RemoteAddr)

	defer func() {
		watchHub.mutex.Lock()
		delete(watchHub.clients, conn)
		watchHub.mutex.Unlock()
		conn.Close()
		zap.S().Infow("dashboard disconnected from user watch", "remoteAddr", r.RemoteAddr)
	}()

	ctx := r.Context()

	stream, err := u.DB.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		zap.S().Errorw("failed to open user change stream", "error", err)
		conn.WriteJSON(map[string]string{"error": "change stream unavailable"})
		return
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		users, err := u.DB.Find(ctx, bson.M{}, options.Find().SetLimit(50))
		if err != nil {
			zap.S().Warnw("failed to refresh users after change event", "error", err)
			continue
		}
		if err := conn.WriteJSON(map[string]interface{}{
			"event": "users_changed",
			"data":  users,
		}); err != nil {
			zap.S().Warnw("failed to push user change to dashboard", "error", err)
			return
		}
	}

	if err := stream.Err(); err != nil {
		zap.S().Errorw("user change stream closed with error", "error", err)
	}
}
