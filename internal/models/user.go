package models

import "time"

// User is the local projection of an external identity. Exactly one User
// exists per distinct subject; rows are created lazily on the first
// authenticated request carrying an unseen subject and are never deleted.
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Sub       string    `bson:"sub" json:"sub"` // external subject, unique, immutable
	Email     string    `bson:"email" json:"email"`
	FirstName string    `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string    `bson:"lastName,omitempty" json:"lastName,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Claims carries the profile fields the identity provider attaches to a
// verified token. Only the fields needed to provision a User are kept.
type Claims struct {
	Email     string
	FirstName string
	LastName  string
}
