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

func TestPost_ReportedPostsHandlerGroupsByPost(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/posts/reported", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	postA := primitive.NewObjectID()
	postB := primitive.NewObjectID()

	db := &mocksdb.DatabaseHelper{}
	reportConn := &mocksdb.CollectionHelper{}
	postConn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = []models.Report{
			{ID: primitive.NewObjectID(), PostID: postA, Reason: "spam", Status: models.ReportStatusOpen},
			{ID: primitive.NewObjectID(), PostID: postB, Reason: "abuse", Status: models.ReportStatusOpen},
			{ID: primitive.NewObjectID(), PostID: postA, Reason: "spam again", Status: models.ReportStatusOpen},
		}
	})
	reportConn.On("Find", mock.Anything, mock.Anything).Return(cursor)

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Post)
		(*arg).Content = "some post"
	})
	postConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)

	db.On("Collection", "reports").Return(reportConn)
	db.On("Collection", "posts").Return(postConn)

	p := handlers.Post{
		PDB: databases.NewPostDatabase(db),
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(p.ReportedPostsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp []models.ReportedPost
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Len(t, resp[0].Reports, 2)
	assert.Len(t, resp[1].Reports, 1)
}

func TestPost_DismissReportHandlerAlreadyHandled(t *testing.T) {
	reportID := primitive.NewObjectID()
	req, err := http.NewRequest("PATCH", "/api/v1/reports/"+reportID.Hex()+"/dismiss", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).ID = reportID
		(*arg).Status = models.ReportStatusResolved
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "reports").Return(conn)

	p := handlers.Post{
		PDB: databases.NewPostDatabase(db),
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(p.DismissReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	conn.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestPost_DeletePostHandlerResolvesReports(t *testing.T) {
	postID := primitive.NewObjectID()
	req, err := http.NewRequest("DELETE", "/api/v1/posts/"+postID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"post_id": postID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	postConn := &mocksdb.CollectionHelper{}
	reportConn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	postConn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(1), nil)

	var capturedUpdate interface{}
	reportConn.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil).Run(func(args mock.Arguments) {
		capturedUpdate = args.Get(2)
	})

	db.On("Collection", "posts").Return(postConn)
	db.On("Collection", "reports").Return(reportConn)

	p := handlers.Post{
		PDB: databases.NewPostDatabase(db),
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(p.DeletePostHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	updateJSON, _ := json.Marshal(capturedUpdate)
	assert.Contains(t, string(updateJSON), models.ReportStatusResolved)
}

func TestPost_CreateReportHandlerRequiresReason(t *testing.T) {
	postID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"reporterId": "u1", "reason": ""}`)
	req, err := http.NewRequest("POST", "/api/v1/posts/"+postID.Hex()+"/reports", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"post_id": postID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}

	p := handlers.Post{
		PDB: databases.NewPostDatabase(db),
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(p.CreateReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	db.AssertNotCalled(t, "Collection", "posts")
}

func TestPost_SetPostVisibilityHandlerNotFound(t *testing.T) {
	postID := primitive.NewObjectID()
	body := bytes.NewBufferString(`{"hidden": true}`)
	req, err := http.NewRequest("PATCH", "/api/v1/posts/"+postID.Hex()+"/visibility", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"post_id": postID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	updateResult.On("MatchedCount").Return(int64(0))
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)
	db.On("Collection", "posts").Return(conn)

	p := handlers.Post{
		PDB: databases.NewPostDatabase(db),
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(p.SetPostVisibilityHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
