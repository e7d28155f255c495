package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teamlexia/admin-api/api/handlers"
	"github.com/teamlexia/admin-api/databases"
	mocksdb "github.com/teamlexia/admin-api/databases/mocks"
	"github.com/teamlexia/admin-api/models"
)

func TestAccessCode_GenerateCodeHandlerRejectsZeroExpiry(t *testing.T) {
	body := bytes.NewBufferString(`{"generatedBy": "admin", "expiresInHours": 0, "isOneTime": true}`)
	req, err := http.NewRequest("POST", "/api/v1/access-codes", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.GenerateCodeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	db.AssertNotCalled(t, "Collection", "accessCodes")
}

func TestAccessCode_GenerateCodeHandler(t *testing.T) {
	body := bytes.NewBufferString(`{"generatedBy": "admin", "expiresInHours": 24, "isOneTime": true}`)
	req, err := http.NewRequest("POST", "/api/v1/access-codes", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	insertResult := &mocksdb.InsertOneResultHelper{}

	var inserted models.AccessCode
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(models.AccessCode)
	})
	db.On("Collection", "accessCodes").Return(conn)

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.GenerateCodeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Len(t, inserted.Code, 8)
	assert.True(t, inserted.IsOneTime)
	assert.False(t, inserted.IsUsed)
	assert.Equal(t, "admin", inserted.GeneratedBy)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), inserted.ExpiresAt, time.Minute)

	var resp models.AccessCode
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, inserted.Code, resp.Code)
}

func TestAccessCode_ValidateCodeHandlerUnknownCode(t *testing.T) {
	body := bytes.NewBufferString(`{"code": "NOPE1234"}`)
	req, err := http.NewRequest("POST", "/api/v1/access-codes/validate", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "accessCodes").Return(conn)

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ValidateCodeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.ValidateCodeResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, "Invalid or already used code", resp.Reason)
}

func TestAccessCode_ValidateCodeHandlerLookupFailure(t *testing.T) {
	body := bytes.NewBufferString(`{"code": "GOOD1234"}`)
	req, err := http.NewRequest("POST", "/api/v1/access-codes/validate", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	// A transport error must not masquerade as an invalid code
	singleResultHelper.On("Decode", mock.Anything).Return(errors.New("connection reset by peer"))
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "accessCodes").Return(conn)

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ValidateCodeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Invalid or already used code")
}

func TestAccessCode_ValidateCodeHandlerExpiredCode(t *testing.T) {
	body := bytes.NewBufferString(`{"code": "OLD12345"}`)
	req, err := http.NewRequest("POST", "/api/v1/access-codes/validate", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.AccessCode)
		(*arg).ID = primitive.NewObjectID()
		(*arg).Code = "OLD12345"
		(*arg).ExpiresAt = time.Now().Add(-time.Hour)
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "accessCodes").Return(conn)

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ValidateCodeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.ValidateCodeResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, "Code has expired", resp.Reason)
}

func TestAccessCode_ValidateCodeHandlerActiveCode(t *testing.T) {
	body := bytes.NewBufferString(`{"code": "GOOD1234"}`)
	req, err := http.NewRequest("POST", "/api/v1/access-codes/validate", body)
	if err != nil {
		t.Fatal(err)
	}

	codeID := primitive.NewObjectID()

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.AccessCode)
		(*arg).ID = codeID
		(*arg).Code = "GOOD1234"
		(*arg).ExpiresAt = time.Now().Add(time.Hour)
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "accessCodes").Return(conn)

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ValidateCodeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.ValidateCodeResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, codeID.Hex(), resp.CodeID)
	assert.Empty(t, resp.Reason)
}

func TestAccessCode_ConsumeCodeHandlerOneTimeConflict(t *testing.T) {
	codeID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"usedBy": "dr-lopez"}`)
	req, err := http.NewRequest("POST", "/api/v1/access-codes/"+codeID.Hex()+"/consume", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"code_id": codeID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.AccessCode)
		(*arg).ID = codeID
		(*arg).Code = "ONCE1234"
		(*arg).IsOneTime = true
		(*arg).ExpiresAt = time.Now().Add(time.Hour)
	})
	// Another login consumed the code between the read and the write
	updateResult.On("MatchedCount").Return(int64(0))
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)
	db.On("Collection", "accessCodes").Return(conn)

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ConsumeCodeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAccessCode_ConsumeCodeHandlerReusable(t *testing.T) {
	codeID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"usedBy": "dr-lopez"}`)
	req, err := http.NewRequest("POST", "/api/v1/access-codes/"+codeID.Hex()+"/consume", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"code_id": codeID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.AccessCode)
		(*arg).ID = codeID
		(*arg).Code = "TEAM5678"
		(*arg).IsOneTime = false
		(*arg).ExpiresAt = time.Now().Add(time.Hour)
	})
	updateResult.On("MatchedCount").Return(int64(1))

	var capturedFilter, capturedUpdate interface{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil).Run(func(args mock.Arguments) {
		capturedFilter = args.Get(1)
		capturedUpdate = args.Get(2)
	})
	db.On("Collection", "accessCodes").Return(conn)

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ConsumeCodeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	// A reusable code must never be flagged used, it only records the use
	filterJSON, _ := json.Marshal(capturedFilter)
	updateJSON, _ := json.Marshal(capturedUpdate)
	assert.NotContains(t, string(filterJSON), "isUsed")
	assert.NotContains(t, string(updateJSON), "isUsed")
	assert.Contains(t, string(updateJSON), "useCount")
	assert.Contains(t, string(updateJSON), "lastUsedAt")
}

func TestAccessCode_CleanupCodesHandler(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/access-codes/cleanup", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	var capturedFilter interface{}
	conn.On("DeleteMany", mock.Anything, mock.Anything).Return(int64(3), nil).Run(func(args mock.Arguments) {
		capturedFilter = args.Get(1)
	})
	db.On("Collection", "accessCodes").Return(conn)

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.CleanupCodesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.CleanupResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Deleted)

	// One query covers both expired codes and consumed one-time codes
	filterJSON, _ := json.Marshal(capturedFilter)
	assert.Contains(t, string(filterJSON), "$or")
	assert.Contains(t, string(filterJSON), "expiresAt")
	assert.Contains(t, string(filterJSON), "isOneTime")
}

func TestAccessCode_DeleteCodeHandlerNotFound(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("DELETE", "/api/v1/access-codes/"+id, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"code_id": id})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(0), nil)
	db.On("Collection", "accessCodes").Return(conn)

	a := handlers.AccessCode{DB: databases.NewAccessCodeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.DeleteCodeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
