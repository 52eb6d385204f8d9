package mysql

const insertPlaceSQL = `
INSERT INTO places
  (slug, name, category, subcategories, description,
   street, city, province, postal_code, country, lat, lng,
   contact, hours, price_range, rating, review_count,
   images, features, amenities, verified, featured, google_place_id,
   created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Shared column list so the scanners stay in one shape.
const placeColumns = `
  id, slug, name, category, subcategories, description,
  street, city, province, postal_code, country, lat, lng,
  contact, hours, price_range, rating, review_count,
  images, features, amenities, verified, featured, google_place_id,
  created_at, updated_at`

const getPlaceBySlugSQL = `SELECT` + placeColumns + ` FROM places WHERE slug = ?`

const getPlaceByGoogleIDSQL = `SELECT` + placeColumns + ` FROM places WHERE google_place_id = ?`

const nearbyPlacesSQL = `SELECT` + placeColumns + `
FROM places
WHERE lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?
ORDER BY (POW(lat - ?, 2) + POW(lng - ?, 2)) ASC
LIMIT ?`

const updatePlaceRatingSQL = `
UPDATE places SET rating = ?, review_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

const insertEventSQL = `
INSERT INTO events
  (slug, title, description, category,
   start_date, end_date, start_time, end_time,
   location, organizer, ticket_info, images, tags,
   max_attendees, current_attendees, verified, featured,
   created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const eventColumns = `
  id, slug, title, description, category,
  start_date, end_date, start_time, end_time,
  location, organizer, ticket_info, images, tags,
  max_attendees, current_attendees, verified, featured,
  created_at, updated_at`

const getEventBySlugSQL = `SELECT` + eventColumns + ` FROM events WHERE slug = ?`

const insertSubmissionSQL = `
INSERT INTO submissions
  (id, type, status, payload, submitter, review_notes, reviewer_id, submitted_at, reviewed_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const submissionColumns = `
  id, type, status, payload, submitter, review_notes, reviewer_id, submitted_at, reviewed_at`

const getSubmissionSQL = `SELECT` + submissionColumns + ` FROM submissions WHERE id = ?`

// The pending precondition makes concurrent reviews race-safe: whichever
// decision commits first wins, the loser matches zero rows.
const markReviewedSQL = `
UPDATE submissions
SET status = ?, reviewer_id = ?, review_notes = ?, reviewed_at = ?
WHERE id = ? AND status = 'pending'
`

const submissionStatsSQL = `
SELECT status, type, COUNT(*) FROM submissions GROUP BY status, type
`
