package model

import "time"

// Property is a short-term rental listing as stored in the `properties`
// table. Address and City are free text; the pricing area is derived from
// them at request time.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user that owns the listing.
//  Title         – display name.
//  Address       – street address.
//  City          – area or city within the emirate.
//  PricePerNight – the owner's nightly base rate.
//  PropertyType  – apartment, villa, studio, penthouse, townhouse.
//  Bedrooms      – bedroom count, zero for studios.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Property struct {
	ID            uint64    // properties.id
	OwnerID       uint64    // properties.owner_id
	Title         string    // properties.title
	Address       string    // properties.address
	City          string    // properties.city
	PricePerNight float64   // properties.price_per_night
	PropertyType  string    // properties.property_type
	Bedrooms      int       // properties.bedrooms
	CreatedAt     time.Time // properties.created_at
	UpdatedAt     time.Time // properties.updated_at
}

// Booking states that count as earned revenue.
const (
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
)
