package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/portfolio-service/internal/auth"
	"github.com/spec-kit/portfolio-service/internal/config"
	"github.com/spec-kit/portfolio-service/internal/domain"
	"github.com/spec-kit/portfolio-service/internal/events"
	"github.com/spec-kit/portfolio-service/internal/repository"
	"github.com/spec-kit/portfolio-service/pkg/session"
)

// AuthService coordinates admin login and the server-side session mirror.
// The mirror holds the one issued credential the same way the browser holds
// it, so the service always knows whether an admin session is live and can
// observe its natural expiry through the session watchdog.
type AuthService struct {
	users      repository.UserRepository
	sessions   *session.Manager
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   *session.Manager
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// EnsureAdmin creates the configured administrator account when no users
// exist yet. Subsequent startups leave the stored account untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, admin config.AdminConfig) (*domain.User, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}
	if admin.Password == "" {
		return nil, errors.New("ADMIN_PASSWORD required to bootstrap the admin account")
	}

	hash, err := auth.HashPassword(admin.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates the admin and issues a bearer token. The issued
// credential is mirrored into the session store and the expiry watchdog is
// re-armed against it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, errors.New("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", time.Time{}, errors.New("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errors.New("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if err := s.sessions.SetAuthToken(ctx, token); err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.sessions.SetLogoutIfExpiredHandler(ctx, s.onSessionExpired); err != nil {
		return nil, "", time.Time{}, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAdminLoggedIn,
		ActorID:   user.ID,
		Timestamp: time.Now(),
		Payload:   events.LoginPayload{Email: user.Email, ExpiresAt: exp},
	})

	return user, token, exp, nil
}

// Logout clears the mirrored credential. Stateless JWTs stay verifiable
// until expiry; the mirror is what marks the session ended server-side.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.RemoveAuthToken(ctx)
}

// CurrentSessionUser returns the identity of the mirrored credential when it
// is still active, evicting it when stale.
func (s *AuthService) CurrentSessionUser(ctx context.Context) *session.Identity {
	return s.sessions.CurrentUser(ctx)
}

func (s *AuthService) onSessionExpired(_ *session.Identity) {
	_ = s.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSessionExpired,
		Timestamp: time.Now(),
	})
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
