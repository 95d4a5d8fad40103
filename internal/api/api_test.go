package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/revocab/internal/database"
	"github.com/example/revocab/pkg/models"
)

func setupAPI(t *testing.T) (*echo.Echo, *APIV1Service) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	e := echo.New()
	svc := NewAPIV1Service()
	svc.RegisterRoutes(e)
	return e, svc
}

func doJSON(e *echo.Echo, method, target, user, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createListAndWord(t *testing.T, e *echo.Echo, user string) (listID, wordID int64) {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/v1/lists", user, `{"name":"core"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var list models.WordList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))

	body := fmt.Sprintf(`{"list_id":%d,"term":"ephemeral","definition":"lasting a very short time","hint":"think mayfly"}`, list.ID)
	rec = doJSON(e, http.MethodPost, "/api/v1/words", user, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var word models.Word
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &word))

	return list.ID, word.ID
}

func TestQueueRequiresUserHeader(t *testing.T) {
	e, _ := setupAPI(t)
	rec := doJSON(e, http.MethodGet, "/api/v1/review/queue", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueLimitValidation(t *testing.T) {
	e, _ := setupAPI(t)

	for _, limit := range []string{"0", "-5", "501", "abc"} {
		rec := doJSON(e, http.MethodGet, "/api/v1/review/queue?limit="+limit, "1", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/review/queue?limit=500", "1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionLimitAndModeValidation(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/session?limit=101", "1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/session?mode=cram", "1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/session?mode=learn", "1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "learn mode without list_id must fail")
}

func TestApplyRatingValidation(t *testing.T) {
	e, _ := setupAPI(t)

	// Unknown rating value is rejected before touching storage.
	rec := doJSON(e, http.MethodPost, "/api/v1/review/rate", "1", `{"item_id":1,"rating":"meh"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/review/rate", "1", `{"item_id":0,"rating":"good"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyRatingRecordNotFound(t *testing.T) {
	e, _ := setupAPI(t)
	_, wordID := createListAndWord(t, e, "1")

	// Another user has no record for this word.
	body := fmt.Sprintf(`{"item_id":%d,"rating":"good"}`, wordID)
	rec := doJSON(e, http.MethodPost, "/api/v1/review/rate", "2", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollectRateAndDrainQueue(t *testing.T) {
	e, _ := setupAPI(t)
	_, wordID := createListAndWord(t, e, "1")

	// Collecting the word provisioned a due record.
	rec := doJSON(e, http.MethodGet, "/api/v1/review/queue", "1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var queueResp ReviewQueueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queueResp))
	require.Len(t, queueResp.Queue, 1)
	assert.Equal(t, wordID, queueResp.Queue[0].ItemID)
	assert.Equal(t, 1, queueResp.Stats.Total)
	assert.Equal(t, 1, queueResp.Stats.DueToday)

	// A good rating schedules it days out.
	body := fmt.Sprintf(`{"item_id":%d,"rating":"good"}`, wordID)
	rec = doJSON(e, http.MethodPost, "/api/v1/review/rate", "1", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rateResp ApplyRatingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rateResp))
	assert.Equal(t, 6.75, rateResp.UpdatedRecord.Stability)
	assert.Equal(t, models.StateReview, rateResp.UpdatedRecord.State)

	// The queue is empty again.
	rec = doJSON(e, http.MethodGet, "/api/v1/review/queue", "1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queueResp))
	assert.Empty(t, queueResp.Queue)
	assert.Equal(t, 0, queueResp.Stats.DueToday)
}

func TestEnsureRecordIdempotent(t *testing.T) {
	e, _ := setupAPI(t)
	_, wordID := createListAndWord(t, e, "1")

	body := fmt.Sprintf(`{"item_id":%d}`, wordID)
	rec := doJSON(e, http.MethodPost, "/api/v1/review/ensure", "2", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first models.ReviewRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = doJSON(e, http.MethodPost, "/api/v1/review/ensure", "2", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var second models.ReviewRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureRecordUnknownWord(t *testing.T) {
	e, _ := setupAPI(t)
	rec := doJSON(e, http.MethodPost, "/api/v1/review/ensure", "1", `{"item_id":9999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLearnSessionReturnsQuizzes(t *testing.T) {
	e, _ := setupAPI(t)
	listID, wordID := createListAndWord(t, e, "1")

	target := fmt.Sprintf("/api/v1/session?mode=learn&list_id=%d", listID)
	rec := doJSON(e, http.MethodGet, target, "1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session struct {
		ID      string        `json:"id"`
		Mode    string        `json:"mode"`
		Quizzes []models.Quiz `json:"quizzes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "learn", session.Mode)
	require.Len(t, session.Quizzes, 1)
	assert.Equal(t, wordID, session.Quizzes[0].ItemID)
	assert.Equal(t, "ephemeral", session.Quizzes[0].Prompt)
	assert.Equal(t, "think mayfly", session.Quizzes[0].Hint)
}

func TestDeleteListKeepsHistory(t *testing.T) {
	e, svc := setupAPI(t)
	listID, wordID := createListAndWord(t, e, "1")

	rec := doJSON(e, http.MethodDelete, fmt.Sprintf("/api/v1/lists/%d", listID), "1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The review record survives, detached from the list.
	stored, err := svc.records.GetByUserAndItem(context.Background(), 1, wordID)
	require.NoError(t, err)
	assert.Nil(t, stored.ListID)

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/v1/lists/%d", listID), "1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
