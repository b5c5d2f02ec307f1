package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arhub/ar-hub-backend/database"
	"github.com/arhub/ar-hub-backend/errs"
	"github.com/arhub/ar-hub-backend/models"
	"github.com/arhub/ar-hub-backend/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubValidator maps fixed bearer tokens onto sessions.
type stubValidator struct {
	sessions map[string]*services.Session
}

func (s stubValidator) Validate(ctx context.Context, token string) (*services.Session, error) {
	if session, ok := s.sessions[token]; ok {
		return session, nil
	}
	return nil, errs.NewInvalidTokenError()
}

type testEnv struct {
	db      *gorm.DB
	repos   database.Database
	handler http.Handler
}

// newTestEnv wires the full route table against an in-memory database, a
// stub session provider and the local URL signer. Tokens "alice-token",
// "bob-token" and "admin-token" resolve to their respective users.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	repos := database.New(db)

	validator := stubValidator{sessions: map[string]*services.Session{
		"alice-token": {Email: "alice@example.com", Name: "Alice", Role: models.RoleUser},
		"bob-token":   {Email: "bob@example.com", Name: "Bob", Role: models.RoleUser},
		"admin-token": {Email: "root@example.com", Name: "Root", Role: models.RoleAdmin},
	}}

	signer := services.NewLocalSigner("test-secret", "http://localhost:8080")

	router := chi.NewRouter()
	handlers := initializeHandlers(repos, ExternalServices{
		Auth:    validator,
		URLs:    signer,
		Uploads: signer,
	})
	setupRoutes(router, handlers, newAuthMiddleware(validator, repos.UserRepo()), nil)

	return &testEnv{db: db, repos: repos, handler: router}
}

// user resolves (creating on first use) the db row behind a stub token.
func (e *testEnv) user(t *testing.T, email, name, role string) *models.User {
	t.Helper()
	user, err := e.repos.UserRepo().FindOrCreateByEmail(email, name, role)
	require.NoError(t, err)
	return user
}

func (e *testEnv) createProject(t *testing.T, owner *models.User, title, visibility string) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:      title,
		Category:   "demo",
		Visibility: visibility,
		OwnerID:    owner.ID,
	}
	require.NoError(t, e.db.Create(project).Error)
	return project
}

// do performs a request against the route table and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope unpacks the response envelope and asserts the success flag.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, wantSuccess bool, data any) {
	t.Helper()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   json.RawMessage `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, wantSuccess, env.Success, "body: %s", rec.Body.String())
	if data != nil && env.Data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
}
