package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/portfolio-service/pkg/session"
)

func issueToken(t *testing.T, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "admin-1",
		"email": "admin@example.com",
		"name":  "Admin",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.MemoryStore) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	sessions := session.NewManager(store, session.NewJWTDecoder())
	t.Cleanup(sessions.Close)

	return New(server.URL, sessions), store
}

func TestClientLoginStoresToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	token := issueToken(t, time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "admin@example.com", req["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user": map[string]string{"id": "admin-1", "name": "Admin", "email": "admin@example.com"},
				"auth": map[string]any{"token": token, "expires_at": time.Now().Add(time.Hour)},
			},
		})
	})

	c, store := newTestClient(t, mux)

	user, err := c.Login(ctx, "admin@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "admin-1", user.ID)

	cred, err := store.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, token, cred.AccessToken)
	require.Equal(t, token, c.Session().AccessToken(ctx))
}

func TestClientAttachesBearer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	token := issueToken(t, time.Hour)

	var sawHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		sawHeader = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"id": "admin-1", "name": "Admin", "email": "admin@example.com"},
		})
	})

	c, _ := newTestClient(t, mux)
	require.NoError(t, c.Session().SetAuthToken(ctx, token))

	user, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "admin-1", user.ID)
	require.Equal(t, "Bearer "+token, sawHeader)
}

func TestClientClearsTokenOn401(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	token := issueToken(t, time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects/p-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "UNAUTHORIZED", "message": "invalid token"},
		})
	})

	c, store := newTestClient(t, mux)
	require.NoError(t, c.Session().SetAuthToken(ctx, token))

	_, err := c.GetProject(ctx, "p-1")
	require.Error(t, err)
	require.True(t, IsUnauthorized(err))

	cred, readErr := store.Read(ctx)
	require.NoError(t, readErr)
	require.Nil(t, cred, "401 must clear the stored credential")
}

func TestClientProjectCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	token := issueToken(t, time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /projects", func(w http.ResponseWriter, r *http.Request) {
		var req ProjectInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": Project{ID: "p-1", Title: req.Title, Description: req.Description, Tags: req.Tags},
		})
	})
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "go", r.URL.Query().Get("tag"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []Project{{ID: "p-1", Title: "Portfolio"}},
		})
	})
	mux.HandleFunc("DELETE /projects/p-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c, _ := newTestClient(t, mux)
	require.NoError(t, c.Session().SetAuthToken(ctx, token))

	created, err := c.CreateProject(ctx, ProjectInput{
		Title:       "Portfolio",
		Description: "Personal site",
		Tags:        []string{"go"},
	})
	require.NoError(t, err)
	require.Equal(t, "p-1", created.ID)
	require.Equal(t, "Portfolio", created.Title)

	listed, err := c.ListProjects(ctx, ListQuery{Tag: "go"})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, c.DeleteProject(ctx, "p-1"))
}
