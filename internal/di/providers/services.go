package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/auth"
	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(_ do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideLibraryService provides the catalog and inventory service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(
		storeHandle.Store,
		indexHandle.CatalogIndex,
		v,
		sseHandle.Manager,
		m,
		cfg.Library.LoanPeriod,
		log.Component("library"),
	), nil
}

// ProvideRecommendService provides the recommendation service.
func ProvideRecommendService(i do.Injector) (*service.RecommendService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendService(storeHandle.Store, v, m, log.Component("recommend")), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	hasher := do.MustInvoke[*auth.Hasher](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	limiter := do.MustInvoke[*LoginLimiterHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(
		storeHandle.Store,
		hasher,
		tokenService,
		limiter.KeyedRateLimiter,
		v,
		m,
		log.Component("auth"),
	), nil
}

// ProvideNotificationService provides the overdue notification service.
func ProvideNotificationService(i do.Injector) (*service.NotificationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNotificationService(storeHandle.Store, sseHandle.Manager, m, log.Component("notifications")), nil
}
