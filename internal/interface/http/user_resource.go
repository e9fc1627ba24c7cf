package handlers

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	"github.com/oksasatya/suraksha-api/internal/domain/storage"
)

// UserResource is the public JSON shape of a user. Nothing else about the
// account leaves the API.
type UserResource struct {
	ID        string    `json:"id"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// IdenticonURL is the gravatar identicon keyed on the normalized email
func IdenticonURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}

// Serializer renders users, resolving stored avatar paths through the gateway.
type Serializer struct {
	Store  storage.Gateway
	Logger *logrus.Logger
}

func (s Serializer) imageURL(u *entity.User) string {
	if u.ProfileImage == nil || strings.TrimSpace(*u.ProfileImage) == "" {
		return IdenticonURL(u.Email)
	}
	location := *u.ProfileImage
	if parsed, err := url.Parse(location); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		return location
	}
	if s.Store == nil {
		return location
	}
	resolved, err := s.Store.URL(location)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("path", location).Warn("resolve avatar url failed")
		}
		return location
	}
	return resolved
}

func (s Serializer) User(u *entity.User) UserResource {
	return UserResource{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		ImageURL:  s.imageURL(u),
		CreatedAt: u.CreatedAt,
	}
}
