package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/repository"
	"github.com/schooldesk/substitute-api/internal/service"
	"github.com/schooldesk/substitute-api/internal/store"
	"github.com/schooldesk/substitute-api/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	return st
}

func newJSONContext(t *testing.T, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, target, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestTeacherHandlerListFiltersSubstitutes(t *testing.T) {
	roster := service.NewRosterService(repository.NewTeacherRepository(newTestStore(t)), nil, nil)
	ctx := context.Background()
	_, err := roster.FindOrCreate(ctx, "Regular One", "", false, 0)
	require.NoError(t, err)
	_, err = roster.FindOrCreate(ctx, "Sub One", "", true, 0)
	require.NoError(t, err)
	h := NewTeacherHandler(roster)

	c, rec := newJSONContext(t, http.MethodGet, "/api/teachers?substitute=true", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Data []models.Teacher `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "Sub One", payload.Data[0].Name)
}

func TestTeacherHandlerCreate(t *testing.T) {
	roster := service.NewRosterService(repository.NewTeacherRepository(newTestStore(t)), nil, nil)
	h := NewTeacherHandler(roster)

	c, rec := newJSONContext(t, http.MethodPost, "/api/teachers", service.CreateTeacherRequest{
		Name: "sana ahmed", PhoneNumber: "0300123", IsSubstitute: true,
	})
	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var payload struct {
		Data models.Teacher `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Sana Ahmed", payload.Data.Name)
	assert.Equal(t, 1, payload.Data.ID)
}

func TestTeacherHandlerCreateInvalidPayload(t *testing.T) {
	roster := service.NewRosterService(repository.NewTeacherRepository(newTestStore(t)), nil, nil)
	h := NewTeacherHandler(roster)

	c, rec := newJSONContext(t, http.MethodPost, "/api/teachers", nil)
	h.Create(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}
