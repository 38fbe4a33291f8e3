package api

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBorrowedLedger",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/borrowed",
		Summary:     "Borrowed ledger",
		Description: "Lists every borrowed record across users, by username (admin only)",
		Tags:        []string{"Admin"},
		Security:    bearerSecurity,
	}, s.handleGetBorrowedLedger)

	huma.Register(s.api, huma.Operation{
		OperationID: "getActiveUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/active-users",
		Summary:     "Active users",
		Description: "Lists signed-in users with their login time (admin only)",
		Tags:        []string{"Admin"},
		Security:    bearerSecurity,
	}, s.handleGetActiveUsers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/users",
		Summary:       "Create user",
		Description:   "Creates an account (admin only)",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users/{username}",
		Summary:     "Get user",
		Description: "Returns an account by username (admin only)",
		Tags:        []string{"Admin"},
		Security:    bearerSecurity,
	}, s.handleGetUser)
}

// === DTOs ===

// BorrowedLedgerResponse lists borrowed records with their owners.
type BorrowedLedgerResponse struct {
	Entries []domain.BorrowedEntry `json:"entries" doc:"Borrowed records ordered by username, then by time"`
}

// BorrowedLedgerOutput wraps the ledger for Huma.
type BorrowedLedgerOutput struct {
	Body BorrowedLedgerResponse
}

// ActiveUser is a signed-in user.
type ActiveUser struct {
	Username   string    `json:"username" doc:"Username"`
	LoggedInAt time.Time `json:"logged_in_at" doc:"Login time"`
}

// ActiveUsersResponse lists signed-in users.
type ActiveUsersResponse struct {
	Users []ActiveUser `json:"users" doc:"Signed-in users ordered by username"`
}

// ActiveUsersOutput wraps the active users for Huma.
type ActiveUsersOutput struct {
	Body ActiveUsersResponse
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Username string `json:"username" maxLength:"32" doc:"Username"`
	Password string `json:"password" maxLength:"1024" doc:"Initial password"`
	Role     string `json:"role" enum:"admin,student" doc:"Role"`
}

// CreateUserInput wraps the create user request for Huma.
type CreateUserInput struct {
	Body CreateUserRequest
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body UserResponse
}

// GetUserInput identifies a user.
type GetUserInput struct {
	Username string `path:"username" maxLength:"32" doc:"Username"`
}

// === Handlers ===

func (s *Server) handleGetBorrowedLedger(ctx context.Context, _ *struct{}) (*BorrowedLedgerOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	ledger, err := s.services.Library.BorrowedLedger(ctx)
	if err != nil {
		return nil, err
	}
	return &BorrowedLedgerOutput{Body: BorrowedLedgerResponse{Entries: ledger}}, nil
}

func (s *Server) handleGetActiveUsers(ctx context.Context, _ *struct{}) (*ActiveUsersOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	active, err := s.services.Auth.ActiveUsers(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]ActiveUser, 0, len(active))
	for username, at := range active {
		users = append(users, ActiveUser{Username: username, LoggedInAt: at})
	}
	slices.SortFunc(users, func(a, b ActiveUser) int { return cmp.Compare(a.Username, b.Username) })
	return &ActiveUsersOutput{Body: ActiveUsersResponse{Users: users}}, nil
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	user, err := s.services.Auth.AddUser(ctx, service.AddUserRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
		Role:     domain.Role(input.Body.Role),
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	user, err := s.services.Auth.FindUser(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func mapUser(u domain.User) UserResponse {
	return UserResponse{Username: u.Username, Role: string(u.Role), CreatedAt: u.CreatedAt}
}
