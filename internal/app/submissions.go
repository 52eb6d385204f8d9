package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"kingston_guide/internal/domain"
)

const statsCacheKey = "submissions:stats"

// SubmissionService owns the pending -> approved|rejected lifecycle and the
// materialization of approved payloads into live records.
type SubmissionService struct {
	subs     domain.SubmissionRepository
	places   domain.PlaceRepository
	events   domain.EventRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewSubmissionService(
	subs domain.SubmissionRepository,
	places domain.PlaceRepository,
	events domain.EventRepository,
	cache domain.Cache,
	cacheTTL time.Duration,
) *SubmissionService {
	return &SubmissionService{subs: subs, places: places, events: events, cache: cache, cacheTTL: cacheTTL}
}

// Create validates the minimum identifying field for the submission type
// and stores the submission pending.
func (s *SubmissionService) Create(ctx context.Context, t domain.SubmissionType, payload domain.SubmissionPayload, by domain.Submitter) (domain.Submission, error) {
	if !domain.ValidSubmissionType(t) {
		return domain.Submission{}, domain.NewValidationError("invalid submission type")
	}
	if err := payload.Validate(t); err != nil {
		return domain.Submission{}, err
	}
	if by.Name == "" || by.Email == "" {
		return domain.Submission{}, domain.MissingFields("submittedBy.name", "submittedBy.email")
	}

	// Slugs are derived up front so reviewers see the final URL shape.
	switch t {
	case domain.SubmitPlace:
		if payload.Place.Slug == "" {
			payload.Place.Slug = GenerateSlug(payload.Place.Name)
		}
	case domain.SubmitEvent:
		if payload.Event.Slug == "" {
			payload.Event.Slug = GenerateSlug(payload.Event.Title)
		}
	}

	sub := domain.Submission{
		ID:          uuid.NewString(),
		Type:        t,
		Payload:     payload,
		SubmittedBy: by,
		Status:      domain.StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.subs.CreateSubmission(ctx, sub); err != nil {
		return domain.Submission{}, err
	}
	s.invalidateStats(ctx)
	return sub, nil
}

// Approve commits the transition and materializes the payload. The status
// flip is durable before materialization; if materialization then fails the
// submission stays approved and the failure is logged for manual
// reconciliation rather than rolled back.
func (s *SubmissionService) Approve(ctx context.Context, id string, reviewer domain.Identity, notes *string) (domain.Submission, error) {
	if !domain.CanModerateSubmissions(reviewer) {
		return domain.Submission{}, domain.ErrForbidden
	}

	sub, err := s.subs.GetSubmission(ctx, id)
	if err != nil {
		return domain.Submission{}, err
	}

	// The status transition is checked first so an already-reviewed
	// submission reports the conflict, not a stale validation failure.
	next, err := sub.Approve(reviewer.ID, notes, time.Now().UTC())
	if err != nil {
		return domain.Submission{}, err
	}

	// Only the minimum field was checked at creation time; re-validate the
	// whole payload before it can reach the live collections.
	if err := sub.Payload.ValidateFull(sub.Type); err != nil {
		return domain.Submission{}, fmt.Errorf("payload no longer valid: %w", err)
	}
	if err := s.commitReview(ctx, next); err != nil {
		return domain.Submission{}, err
	}
	s.invalidateStats(ctx)

	if err := s.materialize(ctx, next); err != nil {
		log.Error().Err(err).
			Str("submission_id", next.ID).
			Str("type", string(next.Type)).
			Msg("approved submission could not be materialized; manual reconciliation required")
		return next, fmt.Errorf("submission approved but record creation failed: %w", err)
	}
	return next, nil
}

// Reject commits the terminal rejected state; nothing is materialized.
func (s *SubmissionService) Reject(ctx context.Context, id string, reviewer domain.Identity, reason string) (domain.Submission, error) {
	if !domain.CanModerateSubmissions(reviewer) {
		return domain.Submission{}, domain.ErrForbidden
	}

	sub, err := s.subs.GetSubmission(ctx, id)
	if err != nil {
		return domain.Submission{}, err
	}
	next, err := sub.Reject(reviewer.ID, reason, time.Now().UTC())
	if err != nil {
		return domain.Submission{}, err
	}
	if err := s.commitReview(ctx, next); err != nil {
		return domain.Submission{}, err
	}
	s.invalidateStats(ctx)
	return next, nil
}

// commitReview persists the transition with the pending precondition and
// translates a lost race into the right error.
func (s *SubmissionService) commitReview(ctx context.Context, next domain.Submission) error {
	ok, err := s.subs.MarkReviewed(ctx, next)
	if err != nil {
		return err
	}
	if !ok {
		// Either the row vanished or another reviewer got there first.
		if _, gerr := s.subs.GetSubmission(ctx, next.ID); gerr != nil {
			return gerr
		}
		return domain.ErrNotPending
	}
	return nil
}

func (s *SubmissionService) materialize(ctx context.Context, sub domain.Submission) error {
	switch sub.Type {
	case domain.SubmitPlace:
		place := *sub.Payload.Place
		// Curation and reputation fields are never submitter-controlled.
		place.Verified = false
		place.Featured = false
		place.Rating = 0
		place.ReviewCount = 0
		return s.places.CreatePlace(ctx, &place)
	case domain.SubmitEvent:
		event := *sub.Payload.Event
		event.Verified = false
		event.Featured = false
		return s.events.CreateEvent(ctx, &event)
	default:
		// Real-estate has no live collection yet; the approved payload
		// stays queryable on the submission.
		log.Info().Str("submission_id", sub.ID).Msg("no materialization target for real-estate submission")
		return nil
	}
}

func (s *SubmissionService) List(ctx context.Context, q domain.SubmissionsQuery) (domain.SubmissionsPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		q.PerPage = 20
	}
	return s.subs.ListSubmissions(ctx, q)
}

func (s *SubmissionService) Stats(ctx context.Context) (domain.SubmissionStats, error) {
	var stats domain.SubmissionStats
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, statsCacheKey, &stats); ok {
			return stats, nil
		}
	}
	stats, err := s.subs.SubmissionStats(ctx)
	if err != nil {
		return domain.SubmissionStats{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, statsCacheKey, stats, int(s.cacheTTL.Seconds()))
	}
	return stats, nil
}

func (s *SubmissionService) invalidateStats(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, statsCacheKey)
	}
}
