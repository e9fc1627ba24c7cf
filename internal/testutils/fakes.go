// Package testutils holds in-memory doubles for the domain ports used by
// service and handler tests.
package testutils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	repo "github.com/oksasatya/suraksha-api/internal/domain/repository"
	"github.com/oksasatya/suraksha-api/internal/domain/storage"
)

// UserRepo is a map-backed repository.UserRepository.
type UserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	Calls []string
}

func NewUserRepo(users ...*entity.User) *UserRepo {
	r := &UserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		r.users[u.ID] = clone(u)
	}
	return r
}

func (r *UserRepo) record(call string) {
	r.Calls = append(r.Calls, call)
}

func clone(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Create")
	for _, existing := range r.users {
		if existing.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(existing.Email, u.Email) || strings.EqualFold(existing.Username, u.Username) {
			return repo.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = clone(u)
	return nil
}

// Get returns the stored row including soft-deleted ones, for assertions.
func (r *UserRepo) Get(id string) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return clone(u)
	}
	return nil
}

func (r *UserRepo) live(id string) (*entity.User, bool) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, false
	}
	return u, true
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetByID")
	u, ok := r.live(id)
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetByEmail")
	for _, u := range r.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *UserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) update(call, id string, fn func(u *entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(call)
	u, ok := r.live(id)
	if !ok {
		return repo.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, in *entity.User) error {
	return r.update("UpdateProfile", in.ID, func(u *entity.User) {
		u.Firstname, u.Lastname = in.Firstname, in.Lastname
	})
}

func (r *UserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return r.update("UpdatePassword", id, func(u *entity.User) { u.Password = hash })
}

func (r *UserRepo) UpdateProfileImage(_ context.Context, id string, image *string) error {
	return r.update("UpdateProfileImage", id, func(u *entity.User) { u.ProfileImage = image })
}

func (r *UserRepo) MarkEmailVerified(_ context.Context, id string, at time.Time) error {
	return r.update("MarkEmailVerified", id, func(u *entity.User) { u.EmailVerifiedAt = &at })
}

func (r *UserRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	return r.update("SoftDelete", id, func(u *entity.User) { u.DeletedAt = &at })
}

// FailingUserRepo wraps UserRepo and fails the named method.
type FailingUserRepo struct {
	*UserRepo
	FailOn string
	Err    error
}

func (r *FailingUserRepo) fail(call string) error {
	if r.FailOn == call {
		if r.Err != nil {
			return r.Err
		}
		return errors.New(call + " failed")
	}
	return nil
}

func (r *FailingUserRepo) UpdateProfileImage(ctx context.Context, id string, image *string) error {
	if err := r.fail("UpdateProfileImage"); err != nil {
		return err
	}
	return r.UserRepo.UpdateProfileImage(ctx, id, image)
}

func (r *FailingUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	if err := r.fail("UpdatePassword"); err != nil {
		return err
	}
	return r.UserRepo.UpdatePassword(ctx, id, hash)
}

func (r *FailingUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := r.fail("GetByID"); err != nil {
		return nil, err
	}
	return r.UserRepo.GetByID(ctx, id)
}

// Gateway is an in-memory storage.Gateway. BaseURL empty makes URL fail.
type Gateway struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Types     map[string]string
	BaseURL   string
	PutErr    error
	DeleteErr error
	Deleted   []string
	Ops       []string
	// Signed makes URL hand out a fresh, expiring URL on every call.
	Signed bool
	signs  int
}

func NewGateway(baseURL string) *Gateway {
	return &Gateway{Objects: map[string][]byte{}, Types: map[string]string{}, BaseURL: baseURL}
}

func (g *Gateway) Put(_ context.Context, path string, r io.Reader, contentType string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = append(g.Ops, "put:"+path)
	if g.PutErr != nil {
		return g.PutErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	g.Objects[path] = b
	g.Types[path] = contentType
	return nil
}

func (g *Gateway) Open(_ context.Context, path string) (io.ReadCloser, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.Objects[path]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (g *Gateway) URL(path string) (string, error) {
	if g.BaseURL == "" {
		return "", fmt.Errorf("%w: no base url", storage.ErrURLUnavailable)
	}
	u := strings.TrimRight(g.BaseURL, "/") + "/" + path
	if g.Signed {
		g.mu.Lock()
		g.signs++
		u += fmt.Sprintf("?X-Goog-Expires=604800&X-Goog-Signature=sig%d", g.signs)
		g.mu.Unlock()
	}
	return u, nil
}

func (g *Gateway) URLsExpire() bool { return g.Signed }

func (g *Gateway) Delete(_ context.Context, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Ops = append(g.Ops, "delete:"+path)
	g.Deleted = append(g.Deleted, path)
	if g.DeleteErr != nil {
		return g.DeleteErr
	}
	delete(g.Objects, path)
	return nil
}

// Has reports whether path is stored.
func (g *Gateway) Has(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.Objects[path]
	return ok
}

// Sessions is an in-memory repository.SessionStore.
type Sessions struct {
	mu       sync.Mutex
	active   map[string]string
	StartErr error
}

func NewSessions() *Sessions {
	return &Sessions{active: map[string]string{}}
}

func (s *Sessions) Start(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StartErr != nil {
		return "", s.StartErr
	}
	sid := uuid.NewString()
	s.active[userID] = sid
	return sid, nil
}

func (s *Sessions) Active(_ context.Context, userID, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sid, ok := s.active[userID]
	return ok && sessionID != "" && sid == sessionID, nil
}

func (s *Sessions) Revoke(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, userID)
	return nil
}

// Resets is an in-memory repository.ResetTokenStore.
type Resets struct {
	mu     sync.Mutex
	tokens map[string]string
	byUser map[string]string
	Last   string
}

func NewResets() *Resets {
	return &Resets{tokens: map[string]string{}, byUser: map[string]string{}}
}

func (r *Resets) Issue(_ context.Context, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok := strings.ReplaceAll(uuid.NewString(), "-", "")
	delete(r.tokens, r.byUser[userID])
	r.tokens[tok] = userID
	r.byUser[userID] = tok
	r.Last = tok
	return tok, nil
}

func (r *Resets) Lookup(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.tokens[token]
	if !ok {
		return "", repo.ErrTokenNotFound
	}
	return uid, nil
}

func (r *Resets) Consume(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.tokens[token]
	if !ok {
		return "", repo.ErrTokenNotFound
	}
	delete(r.tokens, token)
	return uid, nil
}

// SentMail is one captured message.
type SentMail struct {
	Kind string
	To   string
	Link string
}

// Mailer captures account emails instead of sending them.
type Mailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *Mailer) capture(kind string, u *entity.User, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{Kind: kind, To: u.Email, Link: link})
	return nil
}

func (m *Mailer) SendVerification(_ context.Context, u *entity.User, link string) error {
	return m.capture("verify", u, link)
}

func (m *Mailer) SendPasswordReset(_ context.Context, u *entity.User, link string) error {
	return m.capture("reset", u, link)
}

// Indexer records user directory writes.
type Indexer struct {
	mu      sync.Mutex
	Docs    map[string]*entity.User
	Removed []string
	Err     error
}

func NewIndexer() *Indexer {
	return &Indexer{Docs: map[string]*entity.User{}}
}

func (i *Indexer) Index(_ context.Context, u *entity.User) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return i.Err
	}
	i.Docs[u.ID] = clone(u)
	return nil
}

func (i *Indexer) Remove(_ context.Context, userID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return i.Err
	}
	delete(i.Docs, userID)
	i.Removed = append(i.Removed, userID)
	return nil
}

// NewsletterList tracks subscription state per address.
type NewsletterList struct {
	mu      sync.Mutex
	Members map[string]bool
	Err     error
}

func NewNewsletterList() *NewsletterList {
	return &NewsletterList{Members: map[string]bool{}}
}

func (l *NewsletterList) Subscribe(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.Members[email] = true
	return nil
}

func (l *NewsletterList) Unsubscribe(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.Members[email] = false
	return nil
}

// AuditRepo keeps inserted audit rows.
type AuditRepo struct {
	mu   sync.Mutex
	Logs []entity.AuditLog
	Err  error
}

func (a *AuditRepo) Insert(_ context.Context, log *entity.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	log.ID = int64(len(a.Logs) + 1)
	log.CreatedAt = time.Now()
	a.Logs = append(a.Logs, *log)
	return nil
}

// Actions lists the recorded audit actions in order.
func (a *AuditRepo) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.Logs))
	for _, l := range a.Logs {
		out = append(out, l.Action)
	}
	return out
}
