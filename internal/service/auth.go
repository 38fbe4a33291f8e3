package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/catalog-server/internal/auth"
	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/ratelimit"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// AuthService handles accounts and sessions: first-run setup, login, logout
// and token verification. A session is live while its username is listed
// in the active users.
type AuthService struct {
	store     *store.Store
	hasher    *auth.Hasher
	tokens    *auth.TokenService
	limiter   *ratelimit.KeyedRateLimiter
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       clock

	mu sync.Mutex
}

// NewAuthService creates a new authentication service. limiter and m may be
// nil.
func NewAuthService(
	st *store.Store,
	hasher *auth.Hasher,
	tokens *auth.TokenService,
	limiter *ratelimit.KeyedRateLimiter,
	v *validation.Validator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     st,
		hasher:    hasher,
		tokens:    tokens,
		limiter:   limiter,
		validator: v,
		metrics:   m,
		logger:    orDiscard(logger),
		now:       time.Now,
	}
}

// SetupRequest contains the initial admin account.
type SetupRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=1024"`
	ClientIP string `json:"-"` // Extracted from request by handler
}

// AddUserRequest creates an account.
type AddUserRequest struct {
	Username string      `json:"username" validate:"required,username"`
	Password string      `json:"password" validate:"required,min=8,max=1024"`
	Role     domain.Role `json:"role" validate:"required,oneof=admin student"`
}

// AuthResponse contains the access token and the signed-in user.
type AuthResponse struct {
	User        domain.User `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// IsSetupRequired reports whether no account exists yet.
func (s *AuthService) IsSetupRequired(ctx context.Context) (bool, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return false, fmt.Errorf("load users: %w", err)
	}
	return len(users) == 0, nil
}

// Setup creates the first account as an admin and signs it in. It can only
// be used while no account exists.
func (s *AuthService) Setup(ctx context.Context, req SetupRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := domain.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
		CreatedAt:    s.now(),
	}
	err = s.store.UpdateUsers(ctx, func(users store.Users) error {
		if len(users) > 0 {
			return domainerrors.AlreadyConfigured("server is already configured")
		}
		users[user.Username] = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("server setup complete", slog.String("username", user.Username))
	return s.startSession(ctx, user)
}

// Login verifies credentials and starts a session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	limitKey := req.ClientIP
	if limitKey == "" {
		limitKey = "user:" + req.Username
	}
	if s.limiter != nil && !s.limiter.Allow(limitKey) {
		s.logger.Warn("login rate limited", slog.String("key", limitKey))
		return nil, domainerrors.RateLimited("too many login attempts, try again later")
	}

	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	user, ok := users[req.Username]
	// Don't leak whether the username exists
	if !ok || !s.hasher.Verify(user.PasswordHash, req.Password) {
		s.metrics.RecordLogin(false)
		s.logger.Info("login failed", slog.String("username", req.Username))
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLogin(true)
	return resp, nil
}

// Logout ends username's session. Tokens issued earlier stop working.
func (s *AuthService) Logout(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.UpdateActiveUsers(ctx, func(active domain.ActiveUsers) error {
		delete(active, username)
		return nil
	})
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	s.logger.Info("user logged out", slog.String("username", username))
	return nil
}

// Authenticate verifies an access token and checks that its session is
// still active.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}

	active, err := s.store.ActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active users: %w", err)
	}
	if _, ok := active[claims.Username]; !ok {
		return nil, domainerrors.Unauthorized("session has ended")
	}
	return claims, nil
}

// ActiveUsers returns every signed-in username with its login time.
func (s *AuthService) ActiveUsers(ctx context.Context) (domain.ActiveUsers, error) {
	active, err := s.store.ActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active users: %w", err)
	}
	return active, nil
}

// AddUser creates an account. Usernames are unique.
func (s *AuthService) AddUser(ctx context.Context, req AddUserRequest) (domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return domain.User{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := domain.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         req.Role,
		CreatedAt:    s.now(),
	}
	err = s.store.UpdateUsers(ctx, func(users store.Users) error {
		if _, exists := users[user.Username]; exists {
			return domainerrors.AlreadyExistsf("user %q already exists", user.Username)
		}
		users[user.Username] = user
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user created",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)))
	return user.Sanitized(), nil
}

// FindUser returns the account named username.
func (s *AuthService) FindUser(ctx context.Context, username string) (domain.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("load users: %w", err)
	}
	user, ok := users[username]
	if !ok {
		return domain.User{}, domainerrors.NotFoundf("user %q not found", username)
	}
	return user.Sanitized(), nil
}

// startSession issues a token and records the login. Callers hold s.mu.
func (s *AuthService) startSession(ctx context.Context, user domain.User) (*AuthResponse, error) {
	token, claims, err := s.tokens.Issue(&user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	err = s.store.UpdateActiveUsers(ctx, func(active domain.ActiveUsers) error {
		active[user.Username] = claims.IssuedAt
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	s.logger.Info("user logged in", slog.String("username", user.Username))
	return &AuthResponse{
		User:        user.Sanitized(),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}
