package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamlexia/admin-api/api"
	"github.com/teamlexia/admin-api/config"
	"github.com/teamlexia/admin-api/databases"
	"github.com/teamlexia/admin-api/models"
)

// bootstrapConsumed flips once per process, the recovery code can never
// grant a second session without a restart
var bootstrapConsumed atomic.Bool

// Auth handles admin session requests
type Auth struct {
	CodeDB databases.AccessCodeDatabase
	BootDB databases.BootstrapEventDatabase
	Config config.Config
}

type loginRequest struct {
	Code   string `json:"code"`
	UsedBy string `json:"usedBy"`
}

// LoginHandler exchanges an access code (or the operator passphrase) for a
// signed session token
func (h Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Code == "" {
		config.ErrorStatus("code is required", http.StatusBadRequest, w, fmt.Errorf("code is required"))
		return
	}

	// The operator passphrase is checked first so it keeps working even when
	// every access code has expired
	if h.Config.AdminSecretHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(h.Config.AdminSecretHash), []byte(req.Code)); err == nil {
			signed, expiresAt, err := h.signSession()
			if err != nil {
				config.ErrorStatus("failed to sign session token", http.StatusInternalServerError, w, err)
				return
			}
			h.writeSession(w, signed, expiresAt, "")
			return
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	accessCode, err := h.CodeDB.FindOne(ctx, bson.M{"code": req.Code, "isUsed": false})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("Invalid or already used code", http.StatusUnauthorized, w, err)
			return
		}
		config.ErrorStatus("failed to get access code", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now()
	if accessCode.IsExpired(now) {
		config.ErrorStatus("Code has expired", http.StatusUnauthorized, w, fmt.Errorf("code %s expired at %v", accessCode.ID.Hex(), accessCode.ExpiresAt))
		return
	}

	// Sign first so a signing failure can never burn a one-time code
	signed, expiresAt, err := h.signSession()
	if err != nil {
		config.ErrorStatus("failed to sign session token", http.StatusInternalServerError, w, err)
		return
	}

	usedBy := req.UsedBy
	if usedBy == "" {
		usedBy = "admin-dashboard"
	}

	if err := h.consume(ctx, accessCode, usedBy, now); err != nil {
		config.ErrorStatus("code already used", http.StatusConflict, w, err)
		return
	}

	h.writeSession(w, signed, expiresAt, accessCode.ID.Hex())
}

// consume records the use of a code, with a conditional write for one-time
// codes so concurrent logins cannot share one
func (h Auth) consume(ctx context.Context, accessCode *models.AccessCode, usedBy string, now time.Time) error {
	set := bson.M{
		"usedAt":     now,
		"usedBy":     usedBy,
		"lastUsedAt": now,
	}

	filter := bson.M{"_id": accessCode.ID}
	if accessCode.IsOneTime {
		filter["isUsed"] = false
		set["isUsed"] = true
	}

	res, err := h.CodeDB.UpdateOne(ctx, filter, bson.M{"$set": set, "$inc": bson.M{"useCount": 1}})
	if err != nil {
		return err
	}
	if accessCode.IsOneTime && res.MatchedCount() == 0 {
		return fmt.Errorf("code %s is already used", accessCode.ID.Hex())
	}
	return nil
}

// signSession issues a signed token for a new admin session
func (h Auth) signSession() (string, time.Time, error) {
	expiresAt := time.Now().Add(api.SessionDuration)

	claims := jwt.MapClaims{
		"sub": "admin",
		"jti": uuid.New().String(),
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.Config.JWTSecret))
	return signed, expiresAt, err
}

// writeSession writes the login response for an already signed token
func (h Auth) writeSession(w http.ResponseWriter, signed string, expiresAt time.Time, codeID string) {
	b, err := json.Marshal(models.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt.Unix(),
		CodeID:    codeID,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// BootstrapHandler grants a single recovery session per process using the
// configured bootstrap code. It never touches the database to decide.
func (h Auth) BootstrapHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if h.Config.BootstrapCode == "" {
		config.ErrorStatus("bootstrap is not configured", http.StatusNotFound, w, fmt.Errorf("no bootstrap code set"))
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Code), []byte(h.Config.BootstrapCode)) != 1 {
		config.ErrorStatus("invalid bootstrap code", http.StatusUnauthorized, w, fmt.Errorf("bootstrap code mismatch"))
		return
	}

	// Sign before flipping the one-shot flag, a signing failure must not
	// spend the only recovery attempt
	signed, expiresAt, err := h.signSession()
	if err != nil {
		config.ErrorStatus("failed to sign session token", http.StatusInternalServerError, w, err)
		return
	}

	if !bootstrapConsumed.CompareAndSwap(false, true) {
		config.ErrorStatus("bootstrap code already used", http.StatusConflict, w, fmt.Errorf("bootstrap already consumed this process"))
		return
	}

	// Audit trail is best effort, losing it must not block recovery
	go func(remoteAddr, userAgent string) {
		defer func() {
			if rec := recover(); rec != nil {
				zap.S().Errorw("panic recording bootstrap event", "panic", rec)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := h.BootDB.InsertOne(ctx, models.BootstrapEvent{
			ID:         primitive.NewObjectID(),
			UsedAt:     time.Now(),
			RemoteAddr: remoteAddr,
			UserAgent:  userAgent,
		})
		if err != nil {
			zap.S().Warnw("failed to record bootstrap event", "error", err)
		}
	}(r.RemoteAddr, r.UserAgent())

	zap.S().Infow("bootstrap session granted", "remoteAddr", r.RemoteAddr)

	h.writeSession(w, signed, expiresAt, "")
}
