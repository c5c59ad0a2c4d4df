package model

// User represents an account document stored in the `users`
// collection.  Users are created at signup and never modified or
// removed afterwards.  The password hash is never serialized to
// clients.
//
// Fields:
//  ID           – document id (hex ObjectID).
//  Firstname    – given name.
//  Lastname     – family name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
type User struct {
	ID           string `bson:"_id" json:"_id"`
	Firstname    string `bson:"firstname" json:"firstname"`
	Lastname     string `bson:"lastname" json:"lastname"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password" json:"-"`
}

// Profile is the public summary of a user returned by GET /profile.
type Profile struct {
	ID        string `json:"_id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// Profile strips everything but the public fields.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, Firstname: u.Firstname, Lastname: u.Lastname, Email: u.Email}
}

// Identity is the authenticated caller derived from a verified
// session token.
type Identity struct {
	ID    string // users._id
	Email string // users.email at the time the token was issued
}
