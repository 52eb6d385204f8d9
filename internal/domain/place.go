package domain

import "time"

// PlaceCategory is the closed set of directory categories.
type PlaceCategory string

const (
	CategoryRestaurant PlaceCategory = "restaurant"
	CategoryBar        PlaceCategory = "bar"
	CategoryNightclub  PlaceCategory = "nightclub"
	CategoryCafe       PlaceCategory = "cafe"
	CategoryBakery     PlaceCategory = "bakery"
	CategoryShopping   PlaceCategory = "shopping"
	CategoryAttraction PlaceCategory = "attraction"
	CategoryActivity   PlaceCategory = "activity"
	CategoryService    PlaceCategory = "service"
)

var placeCategories = map[PlaceCategory]struct{}{
	CategoryRestaurant: {}, CategoryBar: {}, CategoryNightclub: {},
	CategoryCafe: {}, CategoryBakery: {}, CategoryShopping: {},
	CategoryAttraction: {}, CategoryActivity: {}, CategoryService: {},
}

func ValidPlaceCategory(c PlaceCategory) bool {
	_, ok := placeCategories[c]
	return ok
}

// PriceRange is the four-tier price indicator.
type PriceRange string

const (
	PriceCheap     PriceRange = "$"
	PriceModerate  PriceRange = "$$"
	PriceExpensive PriceRange = "$$$"
	PriceLuxury    PriceRange = "$$$$"
)

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are in range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

type Contact struct {
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Website *string `json:"website,omitempty"`
}

// DayHours is an open/close pair in zero-padded 24h "HH:MM".
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// WeeklyHours maps lowercase day names to hours. Closed days are absent.
type WeeklyHours map[string]DayHours

type Images struct {
	Main    string   `json:"main"`
	Gallery []string `json:"gallery"`
}

type Place struct {
	ID            int64         `json:"id"`
	Slug          string        `json:"slug"`
	Name          string        `json:"name"`
	Category      PlaceCategory `json:"category"`
	Subcategories []string      `json:"subcategories"`
	Description   string        `json:"description"`
	Address       Address       `json:"address"`
	Location      Coordinates   `json:"location"`
	Contact       Contact       `json:"contact"`
	Hours         WeeklyHours   `json:"hours,omitempty"`
	PriceRange    *PriceRange   `json:"priceRange,omitempty"`
	Rating        float64       `json:"rating"`
	ReviewCount   int           `json:"reviewCount"`
	Images        Images        `json:"images"`
	Features      []string      `json:"features"`
	Amenities     []string      `json:"amenities"`
	Verified      bool          `json:"verified"`
	Featured      bool          `json:"featured"`
	GooglePlaceID *string       `json:"googlePlaceId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// AddRating folds one new review score into the running average.
func (p *Place) AddRating(score float64) {
	total := p.Rating*float64(p.ReviewCount) + score
	p.ReviewCount++
	p.Rating = total / float64(p.ReviewCount)
}

// PlacesQuery filters the place listing.
type PlacesQuery struct {
	Categories []PlaceCategory
	Search     string
	Featured   *bool
	Page       int
	PerPage    int
}

// Pagination is the metadata block returned with every paged listing.
type Pagination struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	PerPage     int  `json:"perPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination derives the metadata from a total count and page window.
func NewPagination(total, page, perPage int) Pagination {
	totalPages := (total + perPage - 1) / perPage
	return Pagination{
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

type PlacesPage struct {
	Items      []Place    `json:"places"`
	Pagination Pagination `json:"pagination"`
}
