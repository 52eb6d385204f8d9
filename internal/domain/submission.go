package domain

import (
	"encoding/json"
	"time"
)

type SubmissionType string

const (
	SubmitPlace      SubmissionType = "place"
	SubmitEvent      SubmissionType = "event"
	SubmitRealEstate SubmissionType = "real-estate"
)

func ValidSubmissionType(t SubmissionType) bool {
	return t == SubmitPlace || t == SubmitEvent || t == SubmitRealEstate
}

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

// SubmissionPayload is a tagged union keyed by the submission type.
// Exactly one variant is set. Real-estate has no live model yet, so its
// payload is kept verbatim until one exists.
type SubmissionPayload struct {
	Place      *Place          `json:"place,omitempty"`
	Event      *Event          `json:"event,omitempty"`
	RealEstate json.RawMessage `json:"realEstate,omitempty"`
}

// Validate checks the minimum identifying field for the given type.
func (p SubmissionPayload) Validate(t SubmissionType) error {
	switch t {
	case SubmitPlace:
		if p.Place == nil || p.Place.Name == "" {
			return MissingFields("name")
		}
	case SubmitEvent:
		if p.Event == nil || p.Event.Title == "" {
			return MissingFields("title")
		}
	case SubmitRealEstate:
		if len(p.RealEstate) == 0 {
			return MissingFields("data")
		}
	default:
		return NewValidationError("invalid submission type")
	}
	return nil
}

// ValidateFull is the stricter check run before an approved payload is
// materialized into a live record. Creation only guarantees the minimum
// identifying field; everything else is re-checked here so stale or
// hand-mangled drafts cannot reach the live collections.
func (p SubmissionPayload) ValidateFull(t SubmissionType) error {
	if err := p.Validate(t); err != nil {
		return err
	}
	switch t {
	case SubmitPlace:
		var missing []string
		if !ValidPlaceCategory(p.Place.Category) {
			missing = append(missing, "category")
		}
		if p.Place.Address.Street == "" {
			missing = append(missing, "address.street")
		}
		if !p.Place.Location.Valid() {
			missing = append(missing, "location")
		}
		if len(missing) > 0 {
			return MissingFields(missing...)
		}
	case SubmitEvent:
		var missing []string
		if p.Event.StartDate.IsZero() {
			missing = append(missing, "startDate")
		}
		if p.Event.StartTime == "" {
			missing = append(missing, "startTime")
		}
		if p.Event.Location.Name == "" {
			missing = append(missing, "location.name")
		}
		if !p.Event.Location.Coordinates.Valid() {
			missing = append(missing, "location.coordinates")
		}
		if len(missing) > 0 {
			return MissingFields(missing...)
		}
		if p.Event.EndDate != nil && p.Event.EndDate.Before(p.Event.StartDate) {
			return NewValidationError("end date must be after start date")
		}
	}
	return nil
}

type Submitter struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type Submission struct {
	ID          string            `json:"id"`
	Type        SubmissionType    `json:"type"`
	Payload     SubmissionPayload `json:"data"`
	SubmittedBy Submitter         `json:"submittedBy"`
	Status      SubmissionStatus  `json:"status"`
	ReviewNotes *string           `json:"reviewNotes,omitempty"`
	ReviewerID  *string           `json:"reviewerId,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
	ReviewedAt  *time.Time        `json:"reviewedAt,omitempty"`
}

// Approve returns the approved next state. Pure: persistence and record
// materialization are the caller's job.
func (s Submission) Approve(reviewerID string, notes *string, now time.Time) (Submission, error) {
	if s.Status != StatusPending {
		return s, ErrNotPending
	}
	s.Status = StatusApproved
	s.ReviewerID = &reviewerID
	s.ReviewedAt = &now
	if notes != nil && *notes != "" {
		s.ReviewNotes = notes
	}
	return s, nil
}

// Reject returns the rejected next state. A non-empty reason is mandatory.
func (s Submission) Reject(reviewerID, reason string, now time.Time) (Submission, error) {
	if s.Status != StatusPending {
		return s, ErrNotPending
	}
	if reason == "" {
		return s, NewValidationError("rejection reason is required")
	}
	s.Status = StatusRejected
	s.ReviewerID = &reviewerID
	s.ReviewedAt = &now
	s.ReviewNotes = &reason
	return s, nil
}

type SubmissionsQuery struct {
	Status  SubmissionStatus // empty = all
	Type    SubmissionType   // empty = all
	Page    int
	PerPage int
}

type SubmissionsPage struct {
	Items      []Submission `json:"submissions"`
	Pagination Pagination   `json:"pagination"`
}

type SubmissionStats struct {
	Total    int                    `json:"total"`
	Pending  int                    `json:"pending"`
	Approved int                    `json:"approved"`
	Rejected int                    `json:"rejected"`
	ByType   map[SubmissionType]int `json:"byType"`
}

// Identity is the authenticated caller as seen by this core.
type Identity struct {
	ID   string
	Role string
}

// CanModerateSubmissions is the single capability check consumed by every
// admin-gated operation.
func CanModerateSubmissions(id Identity) bool {
	return id.Role == "admin" || id.Role == "moderator"
}
