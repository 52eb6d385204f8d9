package app

import (
	"fmt"
	"strings"

	"kingston_guide/internal/domain"
)

// Placeholder main image for imported places; photo import is out of scope.
const placeholderImage = "/images/placeholder-place.jpg"

// typeToCategory maps Google place types to directory categories.
// Checked in the order of the incoming types slice; first match wins.
var typeToCategory = map[string]domain.PlaceCategory{
	// Food & drink
	"restaurant":    domain.CategoryRestaurant,
	"food":          domain.CategoryRestaurant,
	"meal_delivery": domain.CategoryRestaurant,
	"meal_takeaway": domain.CategoryRestaurant,
	"cafe":          domain.CategoryCafe,
	"bakery":        domain.CategoryBakery,
	"bar":           domain.CategoryBar,
	"night_club":    domain.CategoryNightclub,
	// Shopping
	"store":             domain.CategoryShopping,
	"shopping_mall":     domain.CategoryShopping,
	"clothing_store":    domain.CategoryShopping,
	"book_store":        domain.CategoryShopping,
	"electronics_store": domain.CategoryShopping,
	"furniture_store":   domain.CategoryShopping,
	"hardware_store":    domain.CategoryShopping,
	"home_goods_store":  domain.CategoryShopping,
	"jewelry_store":     domain.CategoryShopping,
	"shoe_store":        domain.CategoryShopping,
	"supermarket":       domain.CategoryShopping,
	"convenience_store": domain.CategoryShopping,
	"liquor_store":      domain.CategoryShopping,
	// Attractions
	"tourist_attraction": domain.CategoryAttraction,
	"museum":             domain.CategoryAttraction,
	"art_gallery":        domain.CategoryAttraction,
	"park":               domain.CategoryAttraction,
	"amusement_park":     domain.CategoryAttraction,
	"zoo":                domain.CategoryAttraction,
	"aquarium":           domain.CategoryAttraction,
	// Activities
	"gym":           domain.CategoryActivity,
	"bowling_alley": domain.CategoryActivity,
	"movie_theater": domain.CategoryActivity,
	"spa":           domain.CategoryActivity,
	"stadium":       domain.CategoryActivity,
	// Services
	"bank":               domain.CategoryService,
	"atm":                domain.CategoryService,
	"post_office":        domain.CategoryService,
	"hospital":           domain.CategoryService,
	"pharmacy":           domain.CategoryService,
	"doctor":             domain.CategoryService,
	"dentist":            domain.CategoryService,
	"lawyer":             domain.CategoryService,
	"real_estate_agency": domain.CategoryService,
	"insurance_agency":   domain.CategoryService,
	"accounting":         domain.CategoryService,
	"car_dealer":         domain.CategoryService,
	"car_rental":         domain.CategoryService,
	"car_repair":         domain.CategoryService,
	"car_wash":           domain.CategoryService,
	"gas_station":        domain.CategoryService,
	"parking":            domain.CategoryService,
	"lodging":            domain.CategoryService,
	"travel_agency":      domain.CategoryService,
}

// Administrative tags that never make useful subcategory labels.
var genericTypes = map[string]struct{}{
	"establishment": {}, "point_of_interest": {}, "locality": {}, "political": {},
}

// MapCategory picks the primary category; unmatched tag sets fall back to
// the service catch-all.
func MapCategory(types []string) domain.PlaceCategory {
	for _, t := range types {
		if c, ok := typeToCategory[t]; ok {
			return c
		}
	}
	return domain.CategoryService
}

// ExtractSubcategories converts the leftover tags to human-readable labels,
// skipping generic tags and every tag that maps to the primary category.
func ExtractSubcategories(types []string, primary domain.PlaceCategory) []string {
	out := []string{}
	for _, t := range types {
		if _, ok := genericTypes[t]; ok {
			continue
		}
		if c, ok := typeToCategory[t]; ok && c == primary {
			continue
		}
		out = append(out, formatTypeName(t))
	}
	return out
}

// formatTypeName converts "meal_delivery" to "Meal Delivery".
func formatTypeName(t string) string {
	words := strings.Split(t, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// MapPriceLevel maps the external 0-4 scale onto $..$$$$ (0 and 1 are both $).
func MapPriceLevel(level *int) *domain.PriceRange {
	if level == nil {
		return nil
	}
	var p domain.PriceRange
	switch *level {
	case 0, 1:
		p = domain.PriceCheap
	case 2:
		p = domain.PriceModerate
	case 3:
		p = domain.PriceExpensive
	case 4:
		p = domain.PriceLuxury
	default:
		return nil
	}
	return &p
}

// describePlace prefers the editorial summary and otherwise synthesizes a
// sentence from name, category, locality and ratings.
func describePlace(g *domain.GooglePlace, category domain.PlaceCategory) string {
	if g.EditorialSummary != nil && g.EditorialSummary.Overview != "" {
		return g.EditorialSummary.Overview
	}

	var locality string
	if parts := strings.Split(g.FormattedAddress, ","); len(parts) > 1 {
		locality = strings.TrimSpace(parts[1])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %s", g.Name, strings.ToLower(formatTypeName(string(category))))
	if locality != "" {
		fmt.Fprintf(&b, " located in %s", locality)
	}
	if g.Rating != nil {
		fmt.Fprintf(&b, ". Rated %g out of 5", *g.Rating)
		if g.UserRatingsTotal != nil {
			fmt.Fprintf(&b, " based on %d reviews", *g.UserRatingsTotal)
		}
	}
	b.WriteString(".")
	return b.String()
}

// ValidateGooglePlace checks the fields an import cannot do without and
// that the geometry is on the globe.
func ValidateGooglePlace(g *domain.GooglePlace) error {
	var missing []string
	if g.Name == "" {
		missing = append(missing, "name")
	}
	if g.FormattedAddress == "" {
		missing = append(missing, "formatted_address")
	}
	if g.Geometry == nil {
		missing = append(missing, "geometry.location")
	}
	if len(missing) > 0 {
		return domain.MissingFields(missing...)
	}
	loc := g.Geometry.Location
	if loc.Lat < -90 || loc.Lat > 90 {
		return domain.NewValidationError(fmt.Sprintf("invalid latitude: %g", loc.Lat))
	}
	if loc.Lng < -180 || loc.Lng > 180 {
		return domain.NewValidationError(fmt.Sprintf("invalid longitude: %g", loc.Lng))
	}
	return nil
}

// MapGooglePlace transforms a validated external result into a new Place.
// Pure except for the random slug suffix; no I/O.
func MapGooglePlace(g *domain.GooglePlace) (domain.Place, error) {
	if err := ValidateGooglePlace(g); err != nil {
		return domain.Place{}, err
	}
	if !g.Operational() {
		return domain.Place{}, fmt.Errorf("%w (status: %s)", domain.ErrNotOperational, g.BusinessStatus)
	}

	category := MapCategory(g.Types)
	googleID := g.PlaceID

	p := domain.Place{
		Slug:          UniqueSlug(GenerateSlug(g.Name)),
		Name:          g.Name,
		Category:      category,
		Subcategories: ExtractSubcategories(g.Types, category),
		Description:   describePlace(g, category),
		Address:       ParseAddress(g.AddressComponents, g.FormattedAddress),
		Location:      g.Geometry.Location,
		Hours:         ParseHours(g.OpeningHours),
		PriceRange:    MapPriceLevel(g.PriceLevel),
		Images:        domain.Images{Main: placeholderImage, Gallery: []string{}},
		Features:      []string{},
		Amenities:     []string{},
		GooglePlaceID: &googleID,
	}
	if g.PhoneNumber != "" {
		phone := g.PhoneNumber
		p.Contact.Phone = &phone
	}
	if g.Website != "" {
		site := g.Website
		p.Contact.Website = &site
	}
	if g.Rating != nil {
		p.Rating = *g.Rating
	}
	if g.UserRatingsTotal != nil {
		p.ReviewCount = *g.UserRatingsTotal
	}
	return p, nil
}
