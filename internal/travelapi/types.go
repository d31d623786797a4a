package travelapi

import "time"

// Package statuses used by the backend.
const (
	PackageStatusPublished = "published"
	PackageStatusDraft     = "draft"
	PackageStatusArchived  = "archived"
)

// Package types offered by the business.
const (
	PackageTypeHajj  = "hajj"
	PackageTypeUmrah = "umrah"
)

// Booking statuses used by the backend.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Money is a currency-tagged amount.
type Money struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// ItineraryDay is one day of a package itinerary.
type ItineraryDay struct {
	Day   int    `json:"day"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// Package is a Hajj/Umrah travel package as stored by the backend.
type Package struct {
	ID             string         `json:"_id"`
	Title          string         `json:"title"`
	Type           string         `json:"type"`
	Status         string         `json:"status"`
	Price          Money          `json:"price"`
	DurationDays   int            `json:"durationDays"`
	SeatsAvailable int            `json:"seatsAvailable"`
	Badges         []string       `json:"badges,omitempty"`
	Inclusions     []string       `json:"inclusions,omitempty"`
	Exclusions     []string       `json:"exclusions,omitempty"`
	Itinerary      []ItineraryDay `json:"itinerary,omitempty"`
	Gallery        []string       `json:"gallery,omitempty"`
	Thumbnail      string         `json:"thumbnail,omitempty"`
	UpdatedAt      time.Time      `json:"updatedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt,omitempty"`
}

// PackageInput carries the writable fields for package creation.
type PackageInput struct {
	Title          string         `json:"title"`
	Type           string         `json:"type"`
	Status         string         `json:"status"`
	Price          Money          `json:"price"`
	DurationDays   int            `json:"durationDays"`
	SeatsAvailable int            `json:"seatsAvailable"`
	Badges         []string       `json:"badges,omitempty"`
	Inclusions     []string       `json:"inclusions,omitempty"`
	Exclusions     []string       `json:"exclusions,omitempty"`
	Itinerary      []ItineraryDay `json:"itinerary,omitempty"`
	Gallery        []string       `json:"gallery,omitempty"`
	Thumbnail      string         `json:"thumbnail,omitempty"`
}

// PackagePatch is a partial package update; nil fields are left unchanged.
type PackagePatch struct {
	Title          *string `json:"title,omitempty"`
	Type           *string `json:"type,omitempty"`
	Status         *string `json:"status,omitempty"`
	Price          *Money  `json:"price,omitempty"`
	DurationDays   *int    `json:"durationDays,omitempty"`
	SeatsAvailable *int    `json:"seatsAvailable,omitempty"`
	Thumbnail      *string `json:"thumbnail,omitempty"`
}

// Booking is a customer booking request.
type Booking struct {
	ID             string    `json:"_id"`
	PackageID      string    `json:"packageId"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	PassportNumber string    `json:"passportNumber"`
	PassportExpiry string    `json:"passportExpiry"`
	Travelers      int       `json:"travelers"`
	PreferredMonth string    `json:"preferredMonth"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	Source         string    `json:"source"`
	CreatedAt      time.Time `json:"createdAt"`
}

// BookingPatch updates the admin-editable booking fields.
type BookingPatch struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// FAQ is one question/answer pair on the public site.
type FAQ struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// LocaleContent holds per-language public site copy.
type LocaleContent struct {
	HeroHeadline string `json:"heroHeadline,omitempty"`
	HeroSubtext  string `json:"heroSubtext,omitempty"`
	FAQs         []FAQ  `json:"faqs,omitempty"`
}

// ContactInfo holds the business contact channels.
type ContactInfo struct {
	Whatsapp string `json:"whatsapp,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Settings is the public site configuration document.
type Settings struct {
	WhatsappNumber string        `json:"whatsappNumber,omitempty"`
	Contact        ContactInfo   `json:"contact,omitempty"`
	BN             LocaleContent `json:"bn,omitempty"`
	EN             LocaleContent `json:"en,omitempty"`
}

// AdminUser identifies the signed-in administrator.
type AdminUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
