package domain

// Ingress-only shapes for the Google Places web service. Field tags match
// the wire format so adapters can decode responses directly; nothing here
// is persisted as-is.

type GoogleAddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type GoogleGeometry struct {
	Location Coordinates `json:"location"`
}

type GooglePeriodPoint struct {
	Day  int    `json:"day"`  // 0 = Sunday
	Time string `json:"time"` // "HHMM"
}

type GooglePeriod struct {
	Open  GooglePeriodPoint  `json:"open"`
	Close *GooglePeriodPoint `json:"close,omitempty"`
}

type GoogleOpeningHours struct {
	OpenNow     *bool          `json:"open_now,omitempty"`
	Periods     []GooglePeriod `json:"periods,omitempty"`
	WeekdayText []string       `json:"weekday_text,omitempty"`
}

type GoogleEditorialSummary struct {
	Overview string `json:"overview"`
	Language string `json:"language,omitempty"`
}

const BusinessOperational = "OPERATIONAL"

// GooglePlace is the full place-details result.
type GooglePlace struct {
	PlaceID           string                   `json:"place_id"`
	Name              string                   `json:"name"`
	FormattedAddress  string                   `json:"formatted_address"`
	AddressComponents []GoogleAddressComponent `json:"address_components,omitempty"`
	Geometry          *GoogleGeometry          `json:"geometry,omitempty"`
	PhoneNumber       string                   `json:"formatted_phone_number,omitempty"`
	Website           string                   `json:"website,omitempty"`
	OpeningHours      *GoogleOpeningHours      `json:"opening_hours,omitempty"`
	Types             []string                 `json:"types"`
	PriceLevel        *int                     `json:"price_level,omitempty"`
	Rating            *float64                 `json:"rating,omitempty"`
	UserRatingsTotal  *int                     `json:"user_ratings_total,omitempty"`
	BusinessStatus    string                   `json:"business_status,omitempty"`
	EditorialSummary  *GoogleEditorialSummary  `json:"editorial_summary,omitempty"`
}

// Operational treats an absent business_status as open.
func (g *GooglePlace) Operational() bool {
	return g.BusinessStatus == "" || g.BusinessStatus == BusinessOperational
}

// GooglePlaceSummary is one text-search row.
type GooglePlaceSummary struct {
	PlaceID          string          `json:"place_id"`
	Name             string          `json:"name"`
	FormattedAddress string          `json:"formatted_address"`
	Geometry         *GoogleGeometry `json:"geometry,omitempty"`
	Types            []string        `json:"types"`
	Rating           *float64        `json:"rating,omitempty"`
	UserRatingsTotal *int            `json:"user_ratings_total,omitempty"`
	PriceLevel       *int            `json:"price_level,omitempty"`
	BusinessStatus   string          `json:"business_status,omitempty"`
}
