package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/service"
)

func (s *Server) registerMeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getInventory",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/inventory",
		Summary:     "Get inventory",
		Description: "Returns the caller's borrow and reserve history, oldest first",
		Tags:        []string{"Me"},
		Security:    bearerSecurity,
	}, s.handleGetInventory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/preferences",
		Summary:     "Get preferences",
		Description: "Returns the caller's recommendation preferences",
		Tags:        []string{"Me"},
		Security:    bearerSecurity,
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPreferences",
		Method:      http.MethodPut,
		Path:        "/api/v1/me/preferences",
		Summary:     "Set preferences",
		Description: "Replaces the caller's recommendation preferences",
		Tags:        []string{"Me"},
		Security:    bearerSecurity,
	}, s.handleSetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNotifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/notifications",
		Summary:     "Get notifications",
		Description: "Returns the caller's notifications, oldest first",
		Tags:        []string{"Me"},
		Security:    bearerSecurity,
	}, s.handleGetNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations",
		Summary:     "Get recommendations",
		Description: "Returns up to five books scored against the caller's preferences. Query parameters override stored preferences for this request.",
		Tags:        []string{"Recommendations"},
		Security:    bearerSecurity,
	}, s.handleGetRecommendations)
}

// === DTOs ===

// InventoryResponse lists inventory records.
type InventoryResponse struct {
	Records []domain.InventoryRecord `json:"records" doc:"Records in the order they were made"`
}

// InventoryOutput wraps the inventory response for Huma.
type InventoryOutput struct {
	Body InventoryResponse
}

// PreferencesBody is the request and response body for preferences.
type PreferencesBody struct {
	Genre  string `json:"genre" required:"false" maxLength:"64" doc:"Preferred genre, exact match"`
	Author string `json:"author" required:"false" maxLength:"256" doc:"Preferred author, exact match"`
}

// PreferencesInput wraps the preferences request for Huma.
type PreferencesInput struct {
	Body PreferencesBody
}

// PreferencesOutput wraps the preferences for Huma.
type PreferencesOutput struct {
	Body PreferencesBody
}

// NotificationsResponse lists notifications.
type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications" doc:"Notifications, oldest first"`
}

// NotificationsOutput wraps the notifications response for Huma.
type NotificationsOutput struct {
	Body NotificationsResponse
}

// RecommendationsInput contains optional preference overrides.
type RecommendationsInput struct {
	Genre  string `query:"genre" doc:"Override the stored genre"`
	Author string `query:"author" doc:"Override the stored author"`
}

// RecommendationsOutput wraps the recommendation for Huma.
type RecommendationsOutput struct {
	Body *service.Recommendation
}

// === Handlers ===

func (s *Server) handleGetInventory(ctx context.Context, _ *struct{}) (*InventoryOutput, error) {
	username, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.services.Library.Inventory(ctx, username)
	if err != nil {
		return nil, err
	}
	return &InventoryOutput{Body: InventoryResponse{Records: records}}, nil
}

func (s *Server) handleGetPreferences(ctx context.Context, _ *struct{}) (*PreferencesOutput, error) {
	username, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.services.Recommend.Preferences(ctx, username)
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: PreferencesBody{Genre: prefs.Genre, Author: prefs.Author}}, nil
}

func (s *Server) handleSetPreferences(ctx context.Context, input *PreferencesInput) (*PreferencesOutput, error) {
	username, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.services.Recommend.SetPreferences(ctx, username, service.PreferencesRequest{
		Genre:  input.Body.Genre,
		Author: input.Body.Author,
	})
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: PreferencesBody{Genre: prefs.Genre, Author: prefs.Author}}, nil
}

func (s *Server) handleGetNotifications(ctx context.Context, _ *struct{}) (*NotificationsOutput, error) {
	username, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	notes, err := s.services.Notifications.Notifications(ctx, username)
	if err != nil {
		return nil, err
	}
	return &NotificationsOutput{Body: NotificationsResponse{Notifications: notes}}, nil
}

func (s *Server) handleGetRecommendations(ctx context.Context, input *RecommendationsInput) (*RecommendationsOutput, error) {
	username, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.services.Recommend.Recommend(ctx, username, domain.Preferences{
		Genre:  input.Genre,
		Author: input.Author,
	})
	if err != nil {
		return nil, err
	}
	return &RecommendationsOutput{Body: rec}, nil
}
