package domain

import "context"

type PlaceRepository interface {
	// CreatePlace returns ErrDuplicate when the google place id is already
	// taken (races between concurrent imports).
	CreatePlace(ctx context.Context, p *Place) error
	GetPlaceBySlug(ctx context.Context, slug string) (Place, error)
	GetPlaceByGoogleID(ctx context.Context, googleID string) (Place, error)
	ListPlaces(ctx context.Context, q PlacesQuery) (PlacesPage, error)
	// NearbyPlaces returns places inside a bounding box approximating the
	// given radius around the center.
	NearbyPlaces(ctx context.Context, center Coordinates, radiusKm float64, limit int) ([]Place, error)
	UpdatePlaceRating(ctx context.Context, id int64, rating float64, reviewCount int) error
}

type EventRepository interface {
	CreateEvent(ctx context.Context, e *Event) error
	GetEventBySlug(ctx context.Context, slug string) (Event, error)
	ListEvents(ctx context.Context, q EventsQuery) (EventsPage, error)
}

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, s Submission) error
	GetSubmission(ctx context.Context, id string) (Submission, error)
	// MarkReviewed commits the review fields only while the row is still
	// pending. It reports false when the precondition did not hold, which
	// is how concurrent decisions lose the race.
	MarkReviewed(ctx context.Context, s Submission) (bool, error)
	ListSubmissions(ctx context.Context, q SubmissionsQuery) (SubmissionsPage, error)
	SubmissionStats(ctx context.Context) (SubmissionStats, error)
}

// PlacesClient is the outbound port for the Google Places web service.
type PlacesClient interface {
	Details(ctx context.Context, placeID string) (*GooglePlace, error)
	TextSearch(ctx context.Context, query string, bias *Coordinates) ([]GooglePlaceSummary, error)
	Configured() bool
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
