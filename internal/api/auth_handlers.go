package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/service"
)

var bearerSecurity = []map[string][]string{{"bearer": {}}}

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/setup",
		Summary:     "Initial server setup",
		Description: "Creates the first admin user. Can only be called once.",
		Tags:        []string{"Authentication"},
	}, s.handleSetup)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns an access token",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Ends the caller's session; existing tokens stop working",
		Tags:        []string{"Authentication"},
		Security:    bearerSecurity,
	}, s.handleLogout)
}

// === DTOs ===

// CredentialsRequest is the request body for setup and login.
type CredentialsRequest struct {
	Username string `json:"username" maxLength:"32" doc:"Username"`
	Password string `json:"password" maxLength:"1024" doc:"Password"`
}

// CredentialsInput wraps the credentials for Huma.
type CredentialsInput struct {
	Body CredentialsRequest
}

// UserResponse contains user information in API responses.
type UserResponse struct {
	Username  string    `json:"username" doc:"Username"`
	Role      string    `json:"role" doc:"Role: admin or student"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// AuthResponse contains the access token and user info.
type AuthResponse struct {
	AccessToken string       `json:"access_token" doc:"PASETO access token"`
	TokenType   string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresAt   time.Time    `json:"expires_at" doc:"Token expiry"`
	User        UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleSetup(ctx context.Context, input *CredentialsInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Setup(ctx, service.SetupRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *CredentialsInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
		ClientIP: clientIP(ctx),
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	username, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Auth.Logout(ctx, username); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresAt:   resp.ExpiresAt,
		User:        mapUser(resp.User),
	}
}
