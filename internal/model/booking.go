package model

import "time"

// Booking records a user's reservation of a listing for a date range.
// Bookings are never updated; they are deleted individually or together
// with their listing.
//
// Fields:
//  ID       – document id.
//  Place    – id of the booked listing.
//  User     – id of the booking user.
//  Checkin  – arrival date.
//  Checkout – departure date.
//  Guests   – number of guests.
//  Phone    – contact phone number.
//  Name     – contact name.
//  Price    – total price quoted to the guest.
type Booking struct {
	ID       string    `bson:"_id" json:"_id"`
	Place    string    `bson:"place" json:"place"`
	User     string    `bson:"user" json:"user"`
	Checkin  time.Time `bson:"checkin" json:"checkin"`
	Checkout time.Time `bson:"checkout" json:"checkout"`
	Guests   int       `bson:"guests" json:"guests"`
	Phone    string    `bson:"phone" json:"phone"`
	Name     string    `bson:"name" json:"name"`
	Price    float64   `bson:"price" json:"price"`
}

// BookingFields is what a guest submits when booking a listing.
type BookingFields struct {
	Place    string
	Checkin  time.Time
	Checkout time.Time
	Guests   int
	Phone    string
	Name     string
	Price    float64
}

// BookingWithPlace is a booking with its listing expanded in place of
// the id.  Place is nil when the listing no longer exists.
type BookingWithPlace struct {
	ID        string    `json:"_id"`
	ListingID string    `json:"listingId"`
	Place     *Listing  `json:"place"`
	User      string    `json:"user"`
	Checkin   time.Time `json:"checkin"`
	Checkout  time.Time `json:"checkout"`
	Guests    int       `json:"guests"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
}

// WithPlace expands b with the given listing.
func (b Booking) WithPlace(l *Listing) BookingWithPlace {
	return BookingWithPlace{
		ID:        b.ID,
		ListingID: b.Place,
		Place:     l,
		User:      b.User,
		Checkin:   b.Checkin,
		Checkout:  b.Checkout,
		Guests:    b.Guests,
		Phone:     b.Phone,
		Name:      b.Name,
		Price:     b.Price,
	}
}
