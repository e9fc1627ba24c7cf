package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
)

const defaultTimeout = 3 * time.Second

// userDocument is the public projection stored in the directory index.
// Password hashes never leave the database.
type userDocument struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Firstname     string    `json:"firstname"`
	Lastname      string    `json:"lastname"`
	ProfileImage  string    `json:"profile_image,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserIndexer writes user documents to Elasticsearch.
type UserIndexer struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration
}

func NewUserIndexer(es *elasticsearch.Client, index string) (*UserIndexer, error) {
	if es == nil || index == "" {
		return nil, errors.New("search: client and index are required")
	}
	return &UserIndexer{es: es, index: index, timeout: defaultTimeout}, nil
}

func toDocument(u *entity.User) userDocument {
	doc := userDocument{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Firstname:     u.Firstname,
		Lastname:      u.Lastname,
		EmailVerified: u.HasVerifiedEmail(),
		CreatedAt:     u.CreatedAt,
	}
	if u.ProfileImage != nil {
		doc.ProfileImage = *u.ProfileImage
	}
	return doc
}

func (i *UserIndexer) Index(ctx context.Context, u *entity.User) error {
	body, err := json.Marshal(toDocument(u))
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: u.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(c, i.es)
	if err != nil {
		return fmt.Errorf("index user %s: %w", u.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index user %s: %s", u.ID, res.String())
	}
	return nil
}

// Remove deletes the document; a missing document is not an error.
func (i *UserIndexer) Remove(ctx context.Context, userID string) error {
	c, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req := esapi.DeleteRequest{Index: i.index, DocumentID: userID}
	res, err := req.Do(c, i.es)
	if err != nil {
		return fmt.Errorf("remove user %s: %w", userID, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("remove user %s: %s", userID, res.String())
	}
	return nil
}
