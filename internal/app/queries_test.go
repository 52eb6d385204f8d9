package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"kingston_guide/internal/app"
	"kingston_guide/internal/domain"
)

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Place:
		*d = v.(domain.Place)
	case *domain.Event:
		*d = v.(domain.Event)
	case *domain.SubmissionStats:
		*d = v.(domain.SubmissionStats)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func TestGetPlaceBySlug_CacheMissThenHit(t *testing.T) {
	places := &memPlaces{created: []domain.Place{
		{ID: 1, Slug: "the-toucan", Name: "The Toucan"},
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(places, &memEvents{}, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	p, err := q.GetPlaceBySlug(context.Background(), "the-toucan")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p.Name != "The Toucan" {
		t.Fatalf("unexpected place: %+v", p)
	}

	// Mutate repo to ensure second read indeed comes from cache
	places.created[0].Name = "SHOULD NOT SEE THIS"

	// Hit (served from cache)
	p2, err := q.GetPlaceBySlug(context.Background(), "the-toucan")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p2.Name != "The Toucan" {
		t.Fatalf("expected cached name, got %s", p2.Name)
	}
}

func TestGetEventBySlug_Cache(t *testing.T) {
	events := &memEvents{created: []domain.Event{
		{ID: 1, Slug: "fall-fair", Title: "Fall Fair"},
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(&memPlaces{}, events, cache, 10*time.Minute)

	e, err := q.GetEventBySlug(context.Background(), "fall-fair")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if e.Title != "Fall Fair" {
		t.Fatalf("unexpected event: %+v", e)
	}

	events.created[0].Title = "Changed"
	e2, _ := q.GetEventBySlug(context.Background(), "fall-fair")
	if e2.Title != "Fall Fair" {
		t.Fatalf("expected cached title, got %s", e2.Title)
	}
}

func TestRatePlace(t *testing.T) {
	places := &memPlaces{created: []domain.Place{
		{ID: 1, Slug: "the-toucan", Rating: 4.0, ReviewCount: 1},
	}}
	q := app.NewQueryService(places, &memEvents{}, &fakeCache{}, time.Minute)
	ctx := context.Background()

	got, err := q.RatePlace(ctx, "the-toucan", 5)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.Rating != 4.5 || got.ReviewCount != 2 {
		t.Fatalf("aggregate: %v/%v", got.Rating, got.ReviewCount)
	}
	if places.created[0].Rating != 4.5 {
		t.Errorf("stored rating: %v", places.created[0].Rating)
	}

	if _, err := q.RatePlace(ctx, "the-toucan", 6); !domain.IsValidation(err) {
		t.Errorf("out-of-range score: %v", err)
	}
	if _, err := q.RatePlace(ctx, "nope", 4); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown slug: %v", err)
	}
}

func TestNearbyPlaces_InvalidCenter(t *testing.T) {
	q := app.NewQueryService(&memPlaces{}, &memEvents{}, &fakeCache{}, time.Minute)
	_, err := q.NearbyPlaces(context.Background(), domain.Coordinates{Lat: 95, Lng: 0}, 5, 20)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearch_ShortQuery(t *testing.T) {
	q := app.NewQueryService(&memPlaces{}, &memEvents{}, &fakeCache{}, time.Minute)
	if _, err := q.Search(context.Background(), "x", 10); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	places := &memPlaces{created: []domain.Place{{ID: 1, Slug: "a", Name: "Pizza A"}}}
	events := &memEvents{created: []domain.Event{{ID: 1, Slug: "b", Title: "Pizza Fest"}}}
	q := app.NewQueryService(places, events, &fakeCache{}, time.Minute)

	out, err := q.Search(context.Background(), "pizza", 0)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out.Places) != 1 || len(out.Events) != 1 {
		t.Fatalf("unexpected results: %+v", out)
	}
}
