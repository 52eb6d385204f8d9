package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"kingston_guide/internal/app"
	"kingston_guide/internal/domain"
)

type Handlers struct {
	Q       *app.QueryService
	Subs    *app.SubmissionService
	Imports *app.ImportService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers, jwtSecret []byte) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/places", h.listPlaces)
	s.mux.Get("/v1/places/nearby", h.nearbyPlaces)
	s.mux.Get("/v1/places/{slug}", h.getPlace)
	s.mux.Post("/v1/places/{slug}/ratings", h.ratePlace)
	s.mux.Get("/v1/events", h.listEvents)
	s.mux.Get("/v1/events/{slug}", h.getEvent)
	s.mux.Get("/v1/search", h.search)

	s.mux.Post("/v1/submissions", h.createSubmission)

	s.mux.Group(func(r chi.Router) {
		r.Use(Auth(jwtSecret))
		r.Use(RequireModerator)
		r.Get("/v1/submissions", h.listSubmissions)
		r.Patch("/v1/submissions", h.reviewSubmission)
		r.Get("/v1/submissions/stats", h.submissionStats)
		r.Post("/v1/import/google-places", h.importGooglePlace)
		r.Get("/v1/import/google-places/search", h.searchGooglePlaces)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps the service error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var ae *domain.AuthError
	var pe *domain.PlacesError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", ve.Error())
	case errors.As(err, &ae):
		if ae.Authenticated {
			writeProblem(w, http.StatusForbidden, "Forbidden", ae.Error())
		} else {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", ae.Error())
		}
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, domain.ErrNotPending):
		writeProblem(w, http.StatusConflict, "Conflict", "submission has already been reviewed")
	case errors.Is(err, domain.ErrNotOperational):
		writeProblem(w, http.StatusBadRequest, "Not Operational", err.Error())
	case errors.Is(err, app.ErrNotConfigured):
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", err.Error())
	case errors.As(err, &pe):
		switch {
		case pe.RateLimited():
			writeProblem(w, http.StatusTooManyRequests, "Rate Limited", pe.Error())
		case pe.Status == domain.StatusRequestDenied:
			writeProblem(w, http.StatusForbidden, "Request Denied", pe.Error())
		case pe.Status == domain.StatusNotFound:
			writeProblem(w, http.StatusNotFound, "Not Found", pe.Error())
		case pe.Status == domain.StatusInvalidRequest:
			writeProblem(w, http.StatusBadRequest, "Invalid Request", pe.Error())
		default:
			writeProblem(w, http.StatusInternalServerError, "Upstream Error", pe.Error())
		}
	default:
		log.Error().Err(err).Msg("unhandled service error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func pageParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, perPage
}

func (h *Handlers) listPlaces(w http.ResponseWriter, r *http.Request) {
	q := domain.PlacesQuery{Search: r.URL.Query().Get("search")}
	q.Page, q.PerPage = pageParams(r)

	if cs := r.URL.Query().Get("category"); cs != "" {
		for _, c := range strings.Split(cs, ",") {
			cat := domain.PlaceCategory(strings.TrimSpace(c))
			if !domain.ValidPlaceCategory(cat) {
				writeProblem(w, http.StatusBadRequest, "Invalid Category", "unknown category "+string(cat))
				return
			}
			q.Categories = append(q.Categories, cat)
		}
	}
	if fs := r.URL.Query().Get("featured"); fs != "" {
		f := fs == "true"
		q.Featured = &f
	}

	out, err := h.Q.ListPlaces(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	p, err := h.Q.GetPlaceBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) nearbyPlaces(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err1 != nil || err2 != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Coordinates", "lat and lng are required numbers")
		return
	}
	radius, _ := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	out, err := h.Q.NearbyPlaces(r.Context(), domain.Coordinates{Lat: lat, Lng: lng}, radius, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []domain.Place{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"places": out})
}

type ratingRequest struct {
	Score float64 `json:"score"`
}

func (h *Handlers) ratePlace(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	p, err := h.Q.RatePlace(r.Context(), chi.URLParam(r, "slug"), req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	q := domain.EventsQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		// Past events are hidden unless the caller asks for everything.
		Upcoming: r.URL.Query().Get("upcoming") != "false",
	}
	q.Page, q.PerPage = pageParams(r)

	out, err := h.Q.ListEvents(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.Q.GetEventBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Query", "q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.Q.Search(r.Context(), query, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type submissionRequest struct {
	Type        domain.SubmissionType `json:"type"`
	Data        json.RawMessage       `json:"data"`
	SubmittedBy domain.Submitter      `json:"submittedBy"`
}

// decodePayload turns the raw data block into the typed payload for the
// declared submission type. Unknown fields are rejected so typos surface
// to the submitter instead of silently dropping data.
func decodePayload(t domain.SubmissionType, data json.RawMessage) (domain.SubmissionPayload, error) {
	if len(data) == 0 {
		return domain.SubmissionPayload{}, domain.MissingFields("data")
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	switch t {
	case domain.SubmitPlace:
		var p domain.Place
		if err := dec.Decode(&p); err != nil {
			return domain.SubmissionPayload{}, domain.NewValidationError("malformed place data: " + err.Error())
		}
		return domain.SubmissionPayload{Place: &p}, nil
	case domain.SubmitEvent:
		var e domain.Event
		if err := dec.Decode(&e); err != nil {
			return domain.SubmissionPayload{}, domain.NewValidationError("malformed event data: " + err.Error())
		}
		return domain.SubmissionPayload{Event: &e}, nil
	case domain.SubmitRealEstate:
		return domain.SubmissionPayload{RealEstate: data}, nil
	default:
		return domain.SubmissionPayload{}, domain.NewValidationError("invalid submission type")
	}
}

func (h *Handlers) createSubmission(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	payload, err := decodePayload(req.Type, req.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	sub, err := h.Subs.Create(r.Context(), req.Type, payload, req.SubmittedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handlers) listSubmissions(w http.ResponseWriter, r *http.Request) {
	q := domain.SubmissionsQuery{
		Status: domain.SubmissionStatus(r.URL.Query().Get("status")),
		Type:   domain.SubmissionType(r.URL.Query().Get("type")),
	}
	q.Page, q.PerPage = pageParams(r)

	out, err := h.Subs.List(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type reviewRequest struct {
	SubmissionID string  `json:"submissionId"`
	Action       string  `json:"action"`
	Notes        *string `json:"notes,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

func (h *Handlers) reviewSubmission(w http.ResponseWriter, r *http.Request) {
	reviewer, _ := IdentityFrom(r.Context())

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if req.SubmissionID == "" {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "submissionId is required")
		return
	}

	var (
		sub domain.Submission
		err error
	)
	switch req.Action {
	case "approve":
		sub, err = h.Subs.Approve(r.Context(), req.SubmissionID, reviewer, req.Notes)
	case "reject":
		// The documented body carries the rejection reason in notes;
		// reason is accepted as an alias.
		reason := req.Reason
		if reason == "" && req.Notes != nil {
			reason = *req.Notes
		}
		sub, err = h.Subs.Reject(r.Context(), req.SubmissionID, reviewer, reason)
	default:
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "action must be approve or reject")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handlers) submissionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Subs.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type importRequest struct {
	PlaceID string `json:"placeId"`
}

type importResponse struct {
	Place    domain.Place `json:"place"`
	Imported bool         `json:"imported"`
	Message  string       `json:"message"`
}

func (h *Handlers) importGooglePlace(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if req.PlaceID == "" {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "placeId is required")
		return
	}

	res, err := h.Imports.Import(r.Context(), req.PlaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	// Repeat imports return the existing record with 200 instead of 201.
	status := http.StatusOK
	msg := "place already imported"
	if res.Imported {
		status = http.StatusCreated
		msg = "place imported successfully"
	}
	writeJSON(w, status, importResponse{Place: res.Place, Imported: res.Imported, Message: msg})
}

func (h *Handlers) searchGooglePlaces(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	var bias *domain.Coordinates
	if loc := r.URL.Query().Get("location"); loc != "" {
		parts := strings.SplitN(loc, ",", 2)
		if len(parts) != 2 {
			writeProblem(w, http.StatusBadRequest, "Invalid Location", "location must be lat,lng")
			return
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Location", "location must be lat,lng")
			return
		}
		c := domain.Coordinates{Lat: lat, Lng: lng}
		if !c.Valid() {
			writeProblem(w, http.StatusBadRequest, "Invalid Location", "coordinates out of range")
			return
		}
		bias = &c
	}

	results, err := h.Imports.Search(r.Context(), query, bias)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []domain.GooglePlaceSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
