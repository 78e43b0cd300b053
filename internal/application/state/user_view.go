// Package state keeps the per-client view of the signed-in user and their
// medicamentos, re-reading the repositories after every mutation.
package state

import "github.com/oksasatya/medication-reminder/internal/domain/entity"

// UserView is the flattened user handed to the presentation layer.
type UserView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// NewUserView maps a domain user; nil in, nil out.
func NewUserView(u *entity.User) *UserView {
	if u == nil {
		return nil
	}
	c := u.Clone()
	return &UserView{
		ID:        c.ID,
		Name:      c.Name.Value(),
		Email:     c.Email.Value(),
		AvatarURL: c.AvatarURL,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
	}
}

func (v *UserView) clone() *UserView {
	if v == nil {
		return nil
	}
	c := *v
	if v.Latitude != nil {
		lat := *v.Latitude
		c.Latitude = &lat
	}
	if v.Longitude != nil {
		lng := *v.Longitude
		c.Longitude = &lng
	}
	return &c
}
