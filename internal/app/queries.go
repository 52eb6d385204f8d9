package app

import (
	"context"
	"fmt"
	"time"

	"kingston_guide/internal/domain"
)

// QueryService serves the public read side with a cache in front of the
// single-record lookups.
type QueryService struct {
	places   domain.PlaceRepository
	events   domain.EventRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(places domain.PlaceRepository, events domain.EventRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{places: places, events: events, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetPlaceBySlug(ctx context.Context, slug string) (domain.Place, error) {
	key := fmt.Sprintf("place:%s", slug)
	var p domain.Place
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.places.GetPlaceBySlug(ctx, slug)
	if err != nil {
		return domain.Place{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

func (s *QueryService) GetEventBySlug(ctx context.Context, slug string) (domain.Event, error) {
	key := fmt.Sprintf("event:%s", slug)
	var e domain.Event
	if ok, _ := s.cache.Get(ctx, key, &e); ok {
		return e, nil
	}
	e, err := s.events.GetEventBySlug(ctx, slug)
	if err != nil {
		return domain.Event{}, err
	}
	_ = s.cache.Set(ctx, key, e, int(s.cacheTTL.Seconds()))
	return e, nil
}

func (s *QueryService) ListPlaces(ctx context.Context, q domain.PlacesQuery) (domain.PlacesPage, error) {
	if q.Search != "" && len(q.Search) < 2 {
		return domain.PlacesPage{}, domain.NewValidationError("search term must be at least 2 characters")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		q.PerPage = 20
	}
	return s.places.ListPlaces(ctx, q)
}

// NearbyPlaces finds places around a point. Radius defaults to 5 km and is
// capped at 50 km.
func (s *QueryService) NearbyPlaces(ctx context.Context, center domain.Coordinates, radiusKm float64, limit int) ([]domain.Place, error) {
	if !center.Valid() {
		return nil, domain.NewValidationError("coordinates out of range")
	}
	if radiusKm <= 0 {
		radiusKm = 5
	}
	if radiusKm > 50 {
		radiusKm = 50
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.places.NearbyPlaces(ctx, center, radiusKm, limit)
}

// RatePlace folds one review score into the running average and refreshes
// the cached record.
func (s *QueryService) RatePlace(ctx context.Context, slug string, score float64) (domain.Place, error) {
	if score < 1 || score > 5 {
		return domain.Place{}, domain.NewValidationError("score must be between 1 and 5")
	}
	p, err := s.places.GetPlaceBySlug(ctx, slug)
	if err != nil {
		return domain.Place{}, err
	}
	p.AddRating(score)
	if err := s.places.UpdatePlaceRating(ctx, p.ID, p.Rating, p.ReviewCount); err != nil {
		return domain.Place{}, err
	}
	_ = s.cache.Del(ctx, fmt.Sprintf("place:%s", slug))
	return p, nil
}

func (s *QueryService) ListEvents(ctx context.Context, q domain.EventsQuery) (domain.EventsPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		q.PerPage = 20
	}
	return s.events.ListEvents(ctx, q)
}

// SearchResults is the combined payload of the sitewide search endpoint.
type SearchResults struct {
	Places []domain.Place `json:"places"`
	Events []domain.Event `json:"events"`
}

// Search runs the text query against both live collections.
func (s *QueryService) Search(ctx context.Context, query string, limit int) (SearchResults, error) {
	if len(query) < 2 {
		return SearchResults{}, domain.NewValidationError("search term must be at least 2 characters")
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	pp, err := s.places.ListPlaces(ctx, domain.PlacesQuery{Search: query, Page: 1, PerPage: limit})
	if err != nil {
		return SearchResults{}, err
	}
	ep, err := s.events.ListEvents(ctx, domain.EventsQuery{Search: query, Page: 1, PerPage: limit})
	if err != nil {
		return SearchResults{}, err
	}
	return SearchResults{Places: pp.Items, Events: ep.Items}, nil
}
