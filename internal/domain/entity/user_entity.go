package entity

import (
	"time"

	"github.com/oksasatya/medication-reminder/internal/domain/valueobject"
)

// User is the aggregate root for the identity domain.
// Credentials are not part of the aggregate: backing stores keep a bcrypt
// hash and the raw password only travels as a valueobject.Password argument.
type User struct {
	ID        string
	Name      valueobject.Name
	Email     valueobject.Email
	AvatarURL string
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserOption sets an optional attribute in NewUser.
type UserOption func(*User)

func WithAvatarURL(url string) UserOption {
	return func(u *User) { u.AvatarURL = url }
}

func WithLocation(lat, lng *float64) UserOption {
	return func(u *User) {
		u.Latitude = lat
		u.Longitude = lng
	}
}

func WithTimestamps(created, updated time.Time) UserOption {
	return func(u *User) {
		u.CreatedAt = created
		u.UpdatedAt = updated
	}
}

// NewUser assembles a User from already-validated value objects.
func NewUser(id string, name valueobject.Name, email valueobject.Email, opts ...UserOption) *User {
	u := &User{ID: id, Name: name, Email: email}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Clone returns a copy that shares no pointers with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Latitude != nil {
		lat := *u.Latitude
		c.Latitude = &lat
	}
	if u.Longitude != nil {
		lng := *u.Longitude
		c.Longitude = &lng
	}
	return &c
}
