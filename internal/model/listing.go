package model

// Listing is a rentable property ("place") stored in the `places`
// collection.  Owner is assigned from the creating identity and never
// changes.  Photos holds blob-storage keys in display order; every key
// must already exist in the blob store when the listing is saved.
type Listing struct {
	ID          string   `bson:"_id" json:"_id"`
	Owner       string   `bson:"owner" json:"owner"`
	Title       string   `bson:"title" json:"title"`
	Address     string   `bson:"address" json:"address"`
	Photos      []string `bson:"photos" json:"photos"`
	Description string   `bson:"description" json:"description"`
	Bedroom     int      `bson:"bedroom" json:"bedroom"`
	Bed         int      `bson:"bed" json:"bed"`
	Bath        int      `bson:"bath" json:"bath"`
	MaxGuests   int      `bson:"maxGuests" json:"maxGuests"`
	Perks       []string `bson:"perks" json:"perks"`
	ExtraInfo   string   `bson:"extraInfo" json:"extraInfo"`
	Checkin     string   `bson:"checkin" json:"checkin"`
	Checkout    string   `bson:"checkout" json:"checkout"`
	Price       float64  `bson:"price" json:"price"`
}

// ListingFields are the owner-editable attributes of a listing.  Create
// and update both take the full set; update replaces every field.
type ListingFields struct {
	Title       string   `json:"title"`
	Address     string   `json:"address"`
	Photos      []string `json:"photos"`
	Description string   `json:"description"`
	Bedroom     int      `json:"bedroom"`
	Bed         int      `json:"bed"`
	Bath        int      `json:"bath"`
	MaxGuests   int      `json:"maxGuests"`
	Perks       []string `json:"perks"`
	ExtraInfo   string   `json:"extraInfo"`
	Checkin     string   `json:"checkin"`
	Checkout    string   `json:"checkout"`
	Price       float64  `json:"price"`
}

// Apply overwrites the editable attributes of l with f.  ID and Owner
// are left untouched.
func (l *Listing) Apply(f ListingFields) {
	l.Title = f.Title
	l.Address = f.Address
	l.Photos = nonNil(f.Photos)
	l.Description = f.Description
	l.Bedroom = f.Bedroom
	l.Bed = f.Bed
	l.Bath = f.Bath
	l.MaxGuests = f.MaxGuests
	l.Perks = nonNil(f.Perks)
	l.ExtraInfo = f.ExtraInfo
	l.Checkin = f.Checkin
	l.Checkout = f.Checkout
	l.Price = f.Price
}

// Page bounds a listing query.
type Page struct {
	Limit  int
	Offset int
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
