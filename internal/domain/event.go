package domain

import "time"

type EventCategory string

const (
	EventMusic     EventCategory = "music"
	EventArt       EventCategory = "art"
	EventFood      EventCategory = "food"
	EventSports    EventCategory = "sports"
	EventCommunity EventCategory = "community"
	EventEducation EventCategory = "education"
	EventBusiness  EventCategory = "business"
	EventOther     EventCategory = "other"
)

type TicketAvailability string

const (
	TicketsAvailable TicketAvailability = "available"
	TicketsLimited   TicketAvailability = "limited"
	TicketsSoldOut   TicketAvailability = "sold-out"
)

type EventLocation struct {
	Name        string      `json:"name"`
	Address     Address     `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
}

type Organizer struct {
	Name    string  `json:"name"`
	Contact Contact `json:"contact"`
}

type TicketInfo struct {
	Price        float64            `json:"price"`
	URL          *string            `json:"url,omitempty"`
	Availability TicketAvailability `json:"availability"`
}

type Event struct {
	ID               int64         `json:"id"`
	Slug             string        `json:"slug"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Category         EventCategory `json:"category"`
	StartDate        time.Time     `json:"startDate"`
	EndDate          *time.Time    `json:"endDate,omitempty"`
	StartTime        string        `json:"startTime"`
	EndTime          *string       `json:"endTime,omitempty"`
	Location         EventLocation `json:"location"`
	Organizer        Organizer     `json:"organizer"`
	TicketInfo       *TicketInfo   `json:"ticketInfo,omitempty"`
	Images           Images        `json:"images"`
	Tags             []string      `json:"tags"`
	MaxAttendees     *int          `json:"maxAttendees,omitempty"`
	CurrentAttendees int           `json:"currentAttendees"`
	Verified         bool          `json:"verified"`
	Featured         bool          `json:"featured"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Upcoming reports whether the event has not started yet.
func (e *Event) Upcoming(now time.Time) bool { return e.StartDate.After(now) }

// SetAttendance clamps the attendee count and derives ticket availability.
func (e *Event) SetAttendance(count int) {
	if count < 0 {
		count = 0
	}
	if e.MaxAttendees != nil && count > *e.MaxAttendees {
		count = *e.MaxAttendees
	}
	e.CurrentAttendees = count

	if e.MaxAttendees == nil || *e.MaxAttendees == 0 || e.TicketInfo == nil {
		return
	}
	ratio := float64(e.CurrentAttendees) / float64(*e.MaxAttendees)
	switch {
	case ratio >= 1:
		e.TicketInfo.Availability = TicketsSoldOut
	case ratio >= 0.8:
		e.TicketInfo.Availability = TicketsLimited
	default:
		e.TicketInfo.Availability = TicketsAvailable
	}
}

// EventsQuery filters the event listing. Upcoming limits to future start dates.
type EventsQuery struct {
	Category string
	Search   string
	Upcoming bool
	Page     int
	PerPage  int
}

type EventsPage struct {
	Items      []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}
