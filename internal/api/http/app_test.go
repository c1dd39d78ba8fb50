package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/portfolio-service/internal/api/http"
	"github.com/spec-kit/portfolio-service/internal/api/http/handlers"
	"github.com/spec-kit/portfolio-service/internal/auth"
	"github.com/spec-kit/portfolio-service/internal/config"
	"github.com/spec-kit/portfolio-service/internal/domain"
	"github.com/spec-kit/portfolio-service/internal/events"
	"github.com/spec-kit/portfolio-service/internal/repository"
	"github.com/spec-kit/portfolio-service/internal/service"
	"github.com/spec-kit/portfolio-service/pkg/session"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type fakeProjectRepo struct {
	projects map[string]*domain.Project
	order    []string
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*domain.Project{}}
}

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	project.ID = uuid.NewString()
	r.projects[project.ID] = project
	r.order = append(r.order, project.ID)
	return nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project *domain.Project) error {
	if _, ok := r.projects[project.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *project
	return &copied, nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.projects[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) List(_ context.Context, _ repository.ProjectFilter) ([]domain.Project, error) {
	result := make([]domain.Project, 0, len(r.order))
	for _, id := range r.order {
		if project, ok := r.projects[id]; ok {
			result = append(result, *project)
		}
	}
	return result, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		Auth:  config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
		Admin: config.AdminConfig{Name: "Admin", Email: "admin@example.com", Password: "hunter2"},
	}

	userRepo := newFakeUserRepo()
	projectRepo := newFakeProjectRepo()
	sessions := session.NewManager(session.NewMemoryStore(), session.NewJWTDecoder())
	t.Cleanup(sessions.Close)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Sessions:   sessions,
		Dispatcher: dispatcher,
	})
	_, err := authService.EnsureAdmin(context.Background(), cfg.Admin)
	require.NoError(t, err)

	projectService := service.NewProjectService(projectRepo, dispatcher)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Projects:       handlers.NewProjectsHandler(projectService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager(), userRepo),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*nethttp.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp, body := doJSON(t, app, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "hunter2",
	})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	token := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLogin(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	t.Run("succeeds with valid credentials", func(t *testing.T) {
		login(t, app)
	})

	t.Run("rejects bad password", func(t *testing.T) {
		resp, body := doJSON(t, app, nethttp.MethodPost, "/auth/login", "", map[string]string{
			"email":    "admin@example.com",
			"password": "wrong",
		})
		require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "UNAUTHORIZED", body["error"].(map[string]any)["code"])
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		resp, _ := doJSON(t, app, nethttp.MethodPost, "/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "hunter2",
		})
		require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMe(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	token := login(t, app)

	t.Run("returns the authenticated identity", func(t *testing.T) {
		resp, body := doJSON(t, app, nethttp.MethodGet, "/auth/me", token, nil)
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		require.Equal(t, "admin@example.com", body["data"].(map[string]any)["email"])
	})

	t.Run("rejects missing token", func(t *testing.T) {
		resp, _ := doJSON(t, app, nethttp.MethodGet, "/auth/me", "", nil)
		require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		resp, _ := doJSON(t, app, nethttp.MethodGet, "/auth/me", "not-a-token", nil)
		require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	})
}

func TestProjectCRUD(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	token := login(t, app)

	input := map[string]any{
		"title":       "Portfolio",
		"description": "Personal site",
		"version":     "1.0.0",
		"link":        "https://example.com",
		"tags":        []string{"go", "web"},
	}

	resp, body := doJSON(t, app, nethttp.MethodPost, "/projects", token, input)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	created := body["data"].(map[string]any)
	id := created["id"].(string)
	require.NotEmpty(t, id)
	require.Equal(t, "Portfolio", created["title"])

	t.Run("reads are public", func(t *testing.T) {
		resp, body := doJSON(t, app, nethttp.MethodGet, "/projects/"+id, "", nil)
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		require.Equal(t, "Portfolio", body["data"].(map[string]any)["title"])

		resp, body = doJSON(t, app, nethttp.MethodGet, "/projects", "", nil)
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		require.Len(t, body["data"].([]any), 1)
	})

	t.Run("writes require auth", func(t *testing.T) {
		resp, _ := doJSON(t, app, nethttp.MethodPost, "/projects", "", input)
		require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

		resp, _ = doJSON(t, app, nethttp.MethodDelete, "/projects/"+id, "", nil)
		require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("update replaces fields", func(t *testing.T) {
		updated := map[string]any{
			"title":       "Portfolio v2",
			"description": "Personal site, rebuilt",
			"version":     "2.0.0",
		}
		resp, body := doJSON(t, app, nethttp.MethodPut, "/projects/"+id, token, updated)
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		require.Equal(t, "Portfolio v2", body["data"].(map[string]any)["title"])
	})

	t.Run("validation failures are 400", func(t *testing.T) {
		resp, body := doJSON(t, app, nethttp.MethodPost, "/projects", token, map[string]any{"title": ""})
		require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"])
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, nethttp.MethodGet, "/projects/"+uuid.NewString(), "", nil)
		require.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	})

	t.Run("delete then 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, nethttp.MethodDelete, "/projects/"+id, token, nil)
		require.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

		resp, _ = doJSON(t, app, nethttp.MethodGet, "/projects/"+id, "", nil)
		require.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	token := login(t, app)

	resp, _ := doJSON(t, app, nethttp.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, nethttp.StatusNoContent, resp.StatusCode)
}
