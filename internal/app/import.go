package app

import (
	"context"
	"errors"
	"regexp"

	"github.com/rs/zerolog/log"

	"kingston_guide/internal/domain"
)

// ErrNotConfigured is returned when no Google API key is present; the HTTP
// layer maps it to 503.
var ErrNotConfigured = errors.New("google places api key not configured")

// Place IDs are opaque but well-formed: 20+ chars of a URL-safe alphabet.
var placeIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validPlaceIDFormat(id string) bool {
	return len(id) >= 20 && placeIDRE.MatchString(id)
}

// ImportResult reports whether a new record was created or an existing one
// was returned (idempotent repeat import).
type ImportResult struct {
	Place    domain.Place
	Imported bool
}

// ImportService pulls one external place into the directory: fetch,
// validate, map, dedupe.
type ImportService struct {
	google domain.PlacesClient
	places domain.PlaceRepository
}

func NewImportService(google domain.PlacesClient, places domain.PlaceRepository) *ImportService {
	return &ImportService{google: google, places: places}
}

func (s *ImportService) Configured() bool { return s.google.Configured() }

func (s *ImportService) Import(ctx context.Context, placeID string) (ImportResult, error) {
	if !s.google.Configured() {
		return ImportResult{}, ErrNotConfigured
	}
	if !validPlaceIDFormat(placeID) {
		return ImportResult{}, domain.NewValidationError("invalid placeId format")
	}

	// Idempotent short circuit before spending an API call.
	if existing, err := s.places.GetPlaceByGoogleID(ctx, placeID); err == nil {
		return ImportResult{Place: existing, Imported: false}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return ImportResult{}, err
	}

	details, err := s.google.Details(ctx, placeID)
	if err != nil {
		return ImportResult{}, err
	}

	place, err := MapGooglePlace(details)
	if err != nil {
		return ImportResult{}, err
	}

	if err := s.places.CreatePlace(ctx, &place); err != nil {
		// A concurrent import can win the insert between our existence
		// check and here; the unique index on google_place_id turns that
		// into a duplicate we recover by re-reading the winner.
		if errors.Is(err, domain.ErrDuplicate) {
			winner, rerr := s.places.GetPlaceByGoogleID(ctx, placeID)
			if rerr != nil {
				return ImportResult{}, rerr
			}
			log.Info().Str("place_id", placeID).Msg("concurrent import detected, returning existing place")
			return ImportResult{Place: winner, Imported: false}, nil
		}
		return ImportResult{}, err
	}
	return ImportResult{Place: place, Imported: true}, nil
}

// Search is a persistence-free pass-through to the external text search.
func (s *ImportService) Search(ctx context.Context, query string, bias *domain.Coordinates) ([]domain.GooglePlaceSummary, error) {
	if !s.google.Configured() {
		return nil, ErrNotConfigured
	}
	if query == "" {
		return nil, domain.MissingFields("query")
	}
	return s.google.TextSearch(ctx, query, bias)
}
