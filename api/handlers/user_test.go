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

func TestUser_UpdateUserFieldHandlerRejectsUnknownField(t *testing.T) {
	userID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"email": "new@x.example"}`)
	req, err := http.NewRequest("PATCH", "/api/v1/users/"+userID.Hex(), body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": userID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateUserFieldHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	db.AssertNotCalled(t, "Collection", "users")
}

func TestUser_UpdateUserFieldHandlerSuspends(t *testing.T) {
	userID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"isSuspended": true}`)
	req, err := http.NewRequest("PATCH", "/api/v1/users/"+userID.Hex(), body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": userID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	updateResult.On("MatchedCount").Return(int64(1))

	var capturedUpdate interface{}
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil).Run(func(args mock.Arguments) {
		capturedUpdate = args.Get(2)
	})
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateUserFieldHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	updateJSON, _ := json.Marshal(capturedUpdate)
	assert.Contains(t, string(updateJSON), `"isSuspended":true`)
}

func TestUser_UserByIDHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/users/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "1234"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "failed to get objectID from Hex, the provided hex string is not a valid ObjectID"}`, rr.Body.String())
}

func TestUser_ListUsersHandlerSearchFilter(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/users?q=lopez&page=1&limit=5", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.User)
		*arg = []models.User{{Name: "Dr Lopez", Email: "lopez@x.example"}}
	})

	var capturedFilter interface{}
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor).Run(func(args mock.Arguments) {
		capturedFilter = args.Get(1)
	})
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.ListUsersHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	filterJSON, _ := json.Marshal(capturedFilter)
	assert.Contains(t, string(filterJSON), "$or")
	assert.Contains(t, string(filterJSON), "lopez")

	var resp []models.User
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}
