package api

import "github.com/listenupapp/catalog-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Auth          *service.AuthService
	Library       *service.LibraryService
	Search        *service.SearchService
	Recommend     *service.RecommendService
	Notifications *service.NotificationService
}
