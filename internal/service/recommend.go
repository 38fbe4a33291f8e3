package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/ranking"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// RecommendService stores preferences and produces recommendations.
type RecommendService struct {
	store     *store.Store
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewRecommendService creates a RecommendService.
func NewRecommendService(st *store.Store, v *validation.Validator, m *metrics.Metrics, logger *slog.Logger) *RecommendService {
	return &RecommendService{
		store:     st,
		validator: v,
		metrics:   m,
		logger:    orDiscard(logger),
	}
}

// PreferencesRequest is the payload of SetPreferences.
type PreferencesRequest struct {
	Genre  string `json:"genre" validate:"omitempty,booktext,max=64"`
	Author string `json:"author" validate:"omitempty,booktext,max=256"`
}

// Recommendation is the result of Recommend.
type Recommendation struct {
	Preferences domain.Preferences `json:"preferences"`
	Results     []ranking.Scored   `json:"results"`
}

// Preferences returns username's stored preferences, or zero preferences.
func (s *RecommendService) Preferences(ctx context.Context, username string) (domain.Preferences, error) {
	prefs, _, err := s.store.Preferences(ctx, username)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

// SetPreferences replaces username's stored preferences.
func (s *RecommendService) SetPreferences(ctx context.Context, username string, req PreferencesRequest) (domain.Preferences, error) {
	req.Genre = strings.TrimSpace(req.Genre)
	req.Author = strings.TrimSpace(req.Author)
	if err := s.validator.Validate(req); err != nil {
		return domain.Preferences{}, err
	}

	prefs := domain.Preferences{Genre: req.Genre, Author: req.Author}
	if err := s.store.SetPreferences(ctx, username, prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	s.logger.Info("preferences updated",
		slog.String("username", username),
		slog.String("genre", prefs.Genre),
		slog.String("author", prefs.Author))
	return prefs, nil
}

// Recommend scores the catalog for username. Non-empty fields of override
// replace the stored preferences for this call only.
func (s *RecommendService) Recommend(ctx context.Context, username string, override domain.Preferences) (*Recommendation, error) {
	prefs, err := s.Preferences(ctx, username)
	if err != nil {
		return nil, err
	}
	prefs = prefs.Merge(override)

	lib, err := s.store.Library(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load library")
	}

	results := ranking.RecommendScored(prefs, lib.Catalog, lib.Inventory)
	s.metrics.RecordRecommendation(len(results))
	return &Recommendation{Preferences: prefs, Results: results}, nil
}
