package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"kingston_guide/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

// mustJSON is for fields that are plain Go values; marshal cannot fail.
func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ----------------------------------------------------------------------------
// PLACES
// ----------------------------------------------------------------------------

func (r *Repo) CreatePlace(ctx context.Context, p *domain.Place) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	var priceRange *string
	if p.PriceRange != nil {
		s := string(*p.PriceRange)
		priceRange = &s
	}

	res, err := r.db.ExecContext(ctx, insertPlaceSQL,
		p.Slug,
		p.Name,
		string(p.Category),
		mustJSON(p.Subcategories),
		p.Description,
		p.Address.Street,
		p.Address.City,
		p.Address.Province,
		p.Address.PostalCode,
		p.Address.Country,
		p.Location.Lat,
		p.Location.Lng,
		mustJSON(p.Contact),
		mustJSON(p.Hours),
		valStr(priceRange),
		p.Rating,
		p.ReviewCount,
		mustJSON(p.Images),
		mustJSON(p.Features),
		mustJSON(p.Amenities),
		p.Verified,
		p.Featured,
		valStr(p.GooglePlaceID),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *Repo) GetPlaceBySlug(ctx context.Context, slug string) (domain.Place, error) {
	return scanPlace(r.db.QueryRowContext(ctx, getPlaceBySlugSQL, slug))
}

func (r *Repo) GetPlaceByGoogleID(ctx context.Context, googleID string) (domain.Place, error) {
	return scanPlace(r.db.QueryRowContext(ctx, getPlaceByGoogleIDSQL, googleID))
}

func (r *Repo) NearbyPlaces(ctx context.Context, center domain.Coordinates, radiusKm float64, limit int) ([]domain.Place, error) {
	// One degree of latitude is ~111 km; longitude shrinks with latitude.
	latDelta := radiusKm / 111.0
	lngDelta := radiusKm / (111.0 * math.Cos(center.Lat*math.Pi/180))

	rows, err := r.db.QueryContext(ctx, nearbyPlacesSQL,
		center.Lat-latDelta, center.Lat+latDelta,
		center.Lng-lngDelta, center.Lng+lngDelta,
		center.Lat, center.Lng,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdatePlaceRating(ctx context.Context, id int64, rating float64, reviewCount int) error {
	res, err := r.db.ExecContext(ctx, updatePlaceRatingSQL, rating, reviewCount, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) ListPlaces(ctx context.Context, q domain.PlacesQuery) (domain.PlacesPage, error) {
	where, args := placeFilter(q)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM places"+where, args...).Scan(&total); err != nil {
		return domain.PlacesPage{}, err
	}

	pageArgs := append(append([]any{}, args...), q.PerPage, (q.Page-1)*q.PerPage)
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+placeColumns+" FROM places"+where+
			" ORDER BY featured DESC, rating DESC, id DESC LIMIT ? OFFSET ?",
		pageArgs...)
	if err != nil {
		return domain.PlacesPage{}, err
	}
	defer rows.Close()

	var out []domain.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return domain.PlacesPage{}, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return domain.PlacesPage{}, err
	}
	return domain.PlacesPage{Items: out, Pagination: domain.NewPagination(total, q.Page, q.PerPage)}, nil
}

func placeFilter(q domain.PlacesQuery) (string, []any) {
	var conds []string
	var args []any
	if len(q.Categories) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(q.Categories)), ",")
		conds = append(conds, "category IN ("+ph+")")
		for _, c := range q.Categories {
			args = append(args, string(c))
		}
	}
	if q.Search != "" {
		conds = append(conds, "MATCH(name, description) AGAINST (? IN NATURAL LANGUAGE MODE)")
		args = append(args, q.Search)
	}
	if q.Featured != nil {
		conds = append(conds, "featured = ?")
		args = append(args, *q.Featured)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// rowScanner lets scanPlace serve both QueryRow and Query paths.
type rowScanner interface{ Scan(dest ...any) error }

func scanPlace(row rowScanner) (domain.Place, error) {
	var p domain.Place
	var (
		category                                string
		subcatJSON, contactJSON, hoursJSON      []byte
		imagesJSON, featuresJSON, amenitiesJSON []byte
		priceRange, googleID                    sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &category, &subcatJSON, &p.Description,
		&p.Address.Street, &p.Address.City, &p.Address.Province,
		&p.Address.PostalCode, &p.Address.Country,
		&p.Location.Lat, &p.Location.Lng,
		&contactJSON, &hoursJSON, &priceRange, &p.Rating, &p.ReviewCount,
		&imagesJSON, &featuresJSON, &amenitiesJSON,
		&p.Verified, &p.Featured, &googleID,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}

	p.Category = domain.PlaceCategory(category)
	_ = json.Unmarshal(subcatJSON, &p.Subcategories)
	_ = json.Unmarshal(contactJSON, &p.Contact)
	_ = json.Unmarshal(hoursJSON, &p.Hours)
	_ = json.Unmarshal(imagesJSON, &p.Images)
	_ = json.Unmarshal(featuresJSON, &p.Features)
	_ = json.Unmarshal(amenitiesJSON, &p.Amenities)
	if priceRange.Valid {
		pr := domain.PriceRange(priceRange.String)
		p.PriceRange = &pr
	}
	if googleID.Valid {
		g := googleID.String
		p.GooglePlaceID = &g
	}
	return p, nil
}

// ----------------------------------------------------------------------------
// EVENTS
// ----------------------------------------------------------------------------

func (r *Repo) CreateEvent(ctx context.Context, e *domain.Event) error {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	var ticketJSON any
	if e.TicketInfo != nil {
		ticketJSON = mustJSON(e.TicketInfo)
	}

	res, err := r.db.ExecContext(ctx, insertEventSQL,
		e.Slug,
		e.Title,
		e.Description,
		string(e.Category),
		e.StartDate,
		valTime(e.EndDate),
		e.StartTime,
		valStr(e.EndTime),
		mustJSON(e.Location),
		mustJSON(e.Organizer),
		ticketJSON,
		mustJSON(e.Images),
		mustJSON(e.Tags),
		valInt(e.MaxAttendees),
		e.CurrentAttendees,
		e.Verified,
		e.Featured,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *Repo) GetEventBySlug(ctx context.Context, slug string) (domain.Event, error) {
	return scanEvent(r.db.QueryRowContext(ctx, getEventBySlugSQL, slug))
}

func (r *Repo) ListEvents(ctx context.Context, q domain.EventsQuery) (domain.EventsPage, error) {
	var conds []string
	var args []any
	if q.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, q.Category)
	}
	if q.Search != "" {
		conds = append(conds, "MATCH(title, description) AGAINST (? IN NATURAL LANGUAGE MODE)")
		args = append(args, q.Search)
	}
	if q.Upcoming {
		conds = append(conds, "start_date >= UTC_TIMESTAMP()")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&total); err != nil {
		return domain.EventsPage{}, err
	}

	pageArgs := append(append([]any{}, args...), q.PerPage, (q.Page-1)*q.PerPage)
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+eventColumns+" FROM events"+where+
			" ORDER BY start_date ASC, id ASC LIMIT ? OFFSET ?",
		pageArgs...)
	if err != nil {
		return domain.EventsPage{}, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return domain.EventsPage{}, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return domain.EventsPage{}, err
	}
	return domain.EventsPage{Items: out, Pagination: domain.NewPagination(total, q.Page, q.PerPage)}, nil
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var e domain.Event
	var (
		category                              string
		endDate                               sql.NullTime
		endTime                               sql.NullString
		locJSON, orgJSON, imagesJSON, tagJSON []byte
		ticketJSON                            []byte
		maxAttendees                          sql.NullInt64
	)
	if err := row.Scan(
		&e.ID, &e.Slug, &e.Title, &e.Description, &category,
		&e.StartDate, &endDate, &e.StartTime, &endTime,
		&locJSON, &orgJSON, &ticketJSON, &imagesJSON, &tagJSON,
		&maxAttendees, &e.CurrentAttendees, &e.Verified, &e.Featured,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}

	e.Category = domain.EventCategory(category)
	if endDate.Valid {
		t := endDate.Time
		e.EndDate = &t
	}
	if endTime.Valid {
		s := endTime.String
		e.EndTime = &s
	}
	_ = json.Unmarshal(locJSON, &e.Location)
	_ = json.Unmarshal(orgJSON, &e.Organizer)
	_ = json.Unmarshal(imagesJSON, &e.Images)
	_ = json.Unmarshal(tagJSON, &e.Tags)
	if len(ticketJSON) > 0 {
		var ti domain.TicketInfo
		if json.Unmarshal(ticketJSON, &ti) == nil {
			e.TicketInfo = &ti
		}
	}
	if maxAttendees.Valid {
		m := int(maxAttendees.Int64)
		e.MaxAttendees = &m
	}
	return e, nil
}

// ----------------------------------------------------------------------------
// SUBMISSIONS
// ----------------------------------------------------------------------------

func (r *Repo) CreateSubmission(ctx context.Context, s domain.Submission) error {
	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertSubmissionSQL,
		s.ID,
		string(s.Type),
		string(s.Status),
		string(payload),
		mustJSON(s.SubmittedBy),
		valStr(s.ReviewNotes),
		valStr(s.ReviewerID),
		s.SubmittedAt,
		valTime(s.ReviewedAt),
	)
	if isDuplicate(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *Repo) GetSubmission(ctx context.Context, id string) (domain.Submission, error) {
	return scanSubmission(r.db.QueryRowContext(ctx, getSubmissionSQL, id))
}

func (r *Repo) MarkReviewed(ctx context.Context, s domain.Submission) (bool, error) {
	res, err := r.db.ExecContext(ctx, markReviewedSQL,
		string(s.Status),
		valStr(s.ReviewerID),
		valStr(s.ReviewNotes),
		valTime(s.ReviewedAt),
		s.ID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) ListSubmissions(ctx context.Context, q domain.SubmissionsQuery) (domain.SubmissionsPage, error) {
	var conds []string
	var args []any
	if q.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(q.Status))
	}
	if q.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(q.Type))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM submissions"+where, args...).Scan(&total); err != nil {
		return domain.SubmissionsPage{}, err
	}

	pageArgs := append(append([]any{}, args...), q.PerPage, (q.Page-1)*q.PerPage)
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+submissionColumns+" FROM submissions"+where+
			" ORDER BY submitted_at DESC, id DESC LIMIT ? OFFSET ?",
		pageArgs...)
	if err != nil {
		return domain.SubmissionsPage{}, err
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return domain.SubmissionsPage{}, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return domain.SubmissionsPage{}, err
	}
	return domain.SubmissionsPage{Items: out, Pagination: domain.NewPagination(total, q.Page, q.PerPage)}, nil
}

func scanSubmission(row rowScanner) (domain.Submission, error) {
	var s domain.Submission
	var (
		typ, status             string
		payloadJSON, submitJSON []byte
		reviewNotes, reviewerID sql.NullString
		reviewedAt              sql.NullTime
	)
	if err := row.Scan(
		&s.ID, &typ, &status, &payloadJSON, &submitJSON,
		&reviewNotes, &reviewerID, &s.SubmittedAt, &reviewedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Submission{}, domain.ErrNotFound
		}
		return domain.Submission{}, err
	}

	s.Type = domain.SubmissionType(typ)
	s.Status = domain.SubmissionStatus(status)
	if err := json.Unmarshal(payloadJSON, &s.Payload); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal payload: %w", err)
	}
	_ = json.Unmarshal(submitJSON, &s.SubmittedBy)
	if reviewNotes.Valid {
		n := reviewNotes.String
		s.ReviewNotes = &n
	}
	if reviewerID.Valid {
		id := reviewerID.String
		s.ReviewerID = &id
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		s.ReviewedAt = &t
	}
	return s, nil
}

func (r *Repo) SubmissionStats(ctx context.Context) (domain.SubmissionStats, error) {
	rows, err := r.db.QueryContext(ctx, submissionStatsSQL)
	if err != nil {
		return domain.SubmissionStats{}, err
	}
	defer rows.Close()

	stats := domain.SubmissionStats{ByType: map[domain.SubmissionType]int{}}
	for rows.Next() {
		var status, typ string
		var n int
		if err := rows.Scan(&status, &typ, &n); err != nil {
			return domain.SubmissionStats{}, err
		}
		stats.Total += n
		stats.ByType[domain.SubmissionType(typ)] += n
		switch domain.SubmissionStatus(status) {
		case domain.StatusPending:
			stats.Pending += n
		case domain.StatusApproved:
			stats.Approved += n
		case domain.StatusRejected:
			stats.Rejected += n
		}
	}
	if err := rows.Err(); err != nil {
		return domain.SubmissionStats{}, err
	}
	return stats, nil
}
