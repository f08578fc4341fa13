// Package property provides the listing projection returned by the marketplace API.
package property

import (
	"fmt"
	"strings"
	"time"
)

// ListingStatus represents where a listing is in its sales lifecycle.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusReserved  ListingStatus = "reserved"
	StatusSold      ListingStatus = "sold"
	StatusRented    ListingStatus = "rented"
)

// ValidListingStatus returns true if s is a known listing status.
func ValidListingStatus(s string) bool {
	switch ListingStatus(s) {
	case StatusAvailable, StatusReserved, StatusSold, StatusRented:
		return true
	}
	return false
}

// Image is a listing photo.
type Image struct {
	URL       string `json:"url"`
	Caption   string `json:"caption,omitempty"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

// Property is a marketplace listing.
type Property struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Location     string        `json:"location"`
	City         string        `json:"city,omitempty"`
	Price        *int64        `json:"price,omitempty"` // EGP
	Bedrooms     *int64        `json:"bedrooms,omitempty"`
	Bathrooms    *int64        `json:"bathrooms,omitempty"`
	Area         *float64      `json:"area,omitempty"` // square meters
	PropertyType string        `json:"property_type,omitempty"`
	ListingType  string        `json:"listing_type,omitempty"` // sale or rent
	Status       ListingStatus `json:"status"`
	Featured     bool          `json:"featured,omitempty"`
	Images       []Image       `json:"images,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// PrimaryPhoto returns the image flagged as primary, falling back to the first one.
func (p *Property) PrimaryPhoto() string {
	if len(p.Images) == 0 {
		return ""
	}
	for _, img := range p.Images {
		if img.IsPrimary && img.URL != "" {
			return img.URL
		}
	}
	return p.Images[0].URL
}

// Page is one page of a paginated property listing.
type Page struct {
	Properties []*Property `json:"properties"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
}

// TotalPages returns the number of pages for the listing.
func (p *Page) TotalPages() int {
	if p.PageSize <= 0 {
		return 1
	}
	n := (p.Total + p.PageSize - 1) / p.PageSize
	if n < 1 {
		return 1
	}
	return n
}

// HasNext reports whether another page follows this one.
func (p *Page) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrev reports whether a page precedes this one.
func (p *Page) HasPrev() bool {
	return p.Page > 1
}

// FormatPrice renders a price in Egyptian pounds, or a dash when unknown.
func FormatPrice(price *int64) string {
	if price == nil {
		return "—"
	}
	return "EGP " + FormatWithCommas(*price)
}

// FormatArea renders an area in square meters, or a dash when unknown.
func FormatArea(area *float64) string {
	if area == nil {
		return "—"
	}
	if *area == float64(int64(*area)) {
		return fmt.Sprintf("%d m²", int64(*area))
	}
	return fmt.Sprintf("%.1f m²", *area)
}

// FormatCount renders an optional room count, or a dash when unknown.
func FormatCount(n *int64) string {
	if n == nil {
		return "—"
	}
	return fmt.Sprintf("%d", *n)
}

// FormatWithCommas groups the digits of n in thousands.
func FormatWithCommas(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return sign + s
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	return sign + strings.Join(parts, ",")
}
