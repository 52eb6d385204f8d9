package app_test

import (
	"errors"
	"strings"
	"testing"

	"kingston_guide/internal/app"
	"kingston_guide/internal/domain"
)

func pint(i int) *int           { return &i }
func pfloat(f float64) *float64 { return &f }

func pizzaDetails() *domain.GooglePlace {
	return &domain.GooglePlace{
		PlaceID:          "ChIJd8BlQ2BZwokRAFUEcm_qrcA",
		Name:             "Joe's Pizza & Grill",
		FormattedAddress: "123 Princess St, Kingston, ON K7L 1A0, Canada",
		Geometry:         &domain.GoogleGeometry{Location: domain.Coordinates{Lat: 44.2312, Lng: -76.4860}},
		Types:            []string{"restaurant", "food", "point_of_interest", "establishment"},
		PriceLevel:       pint(2),
		Rating:           pfloat(4.5),
		UserRatingsTotal: pint(320),
		BusinessStatus:   "OPERATIONAL",
		OpeningHours: &domain.GoogleOpeningHours{
			WeekdayText: []string{
				"Monday: 11:00 AM – 10:00 PM",
				"Tuesday: 11:00 AM – 10:00 PM",
				"Sunday: Closed",
			},
		},
	}
}

func TestMapGooglePlace(t *testing.T) {
	p, err := app.MapGooglePlace(pizzaDetails())
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if p.Name != "Joe's Pizza & Grill" {
		t.Errorf("name: %q", p.Name)
	}
	if !strings.HasPrefix(p.Slug, "joes-pizza-grill-") {
		t.Errorf("slug: %q", p.Slug)
	}
	if p.Category != domain.CategoryRestaurant {
		t.Errorf("category: %q", p.Category)
	}
	if p.PriceRange == nil || *p.PriceRange != domain.PriceModerate {
		t.Errorf("price range: %v", p.PriceRange)
	}
	if p.Rating != 4.5 || p.ReviewCount != 320 {
		t.Errorf("rating: %v/%v", p.Rating, p.ReviewCount)
	}
	if p.GooglePlaceID == nil || *p.GooglePlaceID != "ChIJd8BlQ2BZwokRAFUEcm_qrcA" {
		t.Errorf("google place id: %v", p.GooglePlaceID)
	}
	if p.Verified || p.Featured {
		t.Errorf("imports must start unverified and unfeatured")
	}

	want := domain.Address{
		Street: "123 Princess St", City: "Kingston", Province: "ON",
		PostalCode: "K7L 1A0", Country: "Canada",
	}
	if p.Address != want {
		t.Errorf("address: %+v", p.Address)
	}

	if got := p.Hours["monday"]; got != (domain.DayHours{Open: "11:00", Close: "22:00"}) {
		t.Errorf("monday hours: %+v", got)
	}
	if _, ok := p.Hours["sunday"]; ok {
		t.Errorf("closed day must be absent")
	}

	// restaurant/food collapse into the primary category; the generic tags
	// never surface as subcategories.
	if len(p.Subcategories) != 0 {
		t.Errorf("subcategories: %v", p.Subcategories)
	}
}

func TestMapGooglePlace_SynthesizedDescription(t *testing.T) {
	p, err := app.MapGooglePlace(pizzaDetails())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := "Joe's Pizza & Grill is a restaurant located in Kingston. Rated 4.5 out of 5 based on 320 reviews."
	if p.Description != want {
		t.Errorf("description:\n got %q\nwant %q", p.Description, want)
	}
}

func TestMapGooglePlace_EditorialSummaryWins(t *testing.T) {
	g := pizzaDetails()
	g.EditorialSummary = &domain.GoogleEditorialSummary{Overview: "A Kingston institution."}
	p, err := app.MapGooglePlace(g)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p.Description != "A Kingston institution." {
		t.Errorf("description: %q", p.Description)
	}
}

func TestMapGooglePlace_InvalidLatitude(t *testing.T) {
	g := pizzaDetails()
	g.Geometry.Location.Lat = 95
	_, err := app.MapGooglePlace(g)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMapGooglePlace_MissingFields(t *testing.T) {
	_, err := app.MapGooglePlace(&domain.GooglePlace{PlaceID: "x"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Errorf("fields: %v", ve.Fields)
	}
}

func TestMapGooglePlace_ClosedPermanently(t *testing.T) {
	g := pizzaDetails()
	g.BusinessStatus = "CLOSED_PERMANENTLY"
	_, err := app.MapGooglePlace(g)
	if !errors.Is(err, domain.ErrNotOperational) {
		t.Fatalf("expected ErrNotOperational, got %v", err)
	}
}

func TestMapCategory(t *testing.T) {
	cases := []struct {
		types []string
		want  domain.PlaceCategory
	}{
		{[]string{"cafe", "food"}, domain.CategoryCafe},
		{[]string{"establishment", "night_club", "bar"}, domain.CategoryNightclub},
		{[]string{"book_store", "store"}, domain.CategoryShopping},
		{[]string{"museum"}, domain.CategoryAttraction},
		{[]string{"something_unknown"}, domain.CategoryService},
		{nil, domain.CategoryService},
	}
	for _, c := range cases {
		if got := app.MapCategory(c.types); got != c.want {
			t.Errorf("MapCategory(%v) = %q, want %q", c.types, got, c.want)
		}
	}
}

func TestExtractSubcategories(t *testing.T) {
	got := app.ExtractSubcategories(
		[]string{"bar", "meal_takeaway", "point_of_interest", "establishment"},
		domain.CategoryBar,
	)
	if len(got) != 1 || got[0] != "Meal Takeaway" {
		t.Errorf("subcategories: %v", got)
	}
}

func TestMapPriceLevel(t *testing.T) {
	if got := app.MapPriceLevel(nil); got != nil {
		t.Errorf("nil level: %v", got)
	}
	// Free and inexpensive share the lowest tier.
	for _, lvl := range []int{0, 1} {
		if got := app.MapPriceLevel(pint(lvl)); got == nil || *got != domain.PriceCheap {
			t.Errorf("level %d: %v", lvl, got)
		}
	}
	if got := app.MapPriceLevel(pint(4)); got == nil || *got != domain.PriceLuxury {
		t.Errorf("level 4: %v", got)
	}
	if got := app.MapPriceLevel(pint(7)); got != nil {
		t.Errorf("out-of-range level: %v", got)
	}
}

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"Joe's Pizza & Grill":  "joes-pizza-grill",
		"  The   Grand Cafe  ": "the-grand-cafe",
		"---":                  "",
		"A&W":                  "aw",
	}
	for in, want := range cases {
		if got := app.GenerateSlug(in); got != want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	a := app.UniqueSlug("joes-pizza")
	b := app.UniqueSlug("joes-pizza")
	if a == b {
		t.Fatalf("expected distinct slugs, got %q twice", a)
	}
	if !strings.HasPrefix(a, "joes-pizza-") || len(a) != len("joes-pizza-")+6 {
		t.Errorf("slug shape: %q", a)
	}
}
