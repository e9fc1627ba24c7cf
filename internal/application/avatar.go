package application

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/suraksha-api/internal/domain/storage"
)

const slugLength = 4

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// UploadedFile is an avatar that already passed size/type checks at the boundary.
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

var mimeExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
}

// Extension guesses the extension from the content type, then the filename.
func (f UploadedFile) Extension() string {
	if ext, ok := mimeExtensions[strings.ToLower(f.ContentType)]; ok {
		return ext
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Filename)), ".")
}

// AvatarUploader stores avatars under folder/<slug><unix-seconds>[.ext].
type AvatarUploader struct {
	Store         storage.Gateway
	KeepExtension bool
	Policy        FailurePolicy
	now           func() time.Time
}

func NewAvatarUploader(store storage.Gateway, keepExtension bool, policy FailurePolicy) *AvatarUploader {
	return &AvatarUploader{Store: store, KeepExtension: keepExtension, Policy: policy, now: time.Now}
}

func randomSlug(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = slugAlphabet[int(b[i])%len(slugAlphabet)]
	}
	return string(b), nil
}

func (u *AvatarUploader) filename(f UploadedFile) (string, error) {
	slug, err := randomSlug(slugLength)
	if err != nil {
		return "", err
	}
	now := time.Now
	if u.now != nil {
		now = u.now
	}
	name := slug + strconv.FormatInt(now().Unix(), 10)
	if u.KeepExtension {
		if ext := f.Extension(); ext != "" {
			name += "." + ext
		}
	}
	return name, nil
}

// StoredAvatar is where an upload landed. Location is the URL to hand
// back to the caller; Reference is the value to persist on the user,
// which is the path when the gateway's URLs expire.
type StoredAvatar struct {
	Path      string
	Location  string
	Reference string
}

// Upload writes f to the gateway and returns its public URL. When the URL
// cannot be resolved and the policy suppresses downstream failures, the
// relative path is returned instead.
func (u *AvatarUploader) Upload(ctx context.Context, f UploadedFile, folder string) (string, error) {
	stored, err := u.Save(ctx, f, folder)
	if err != nil {
		return "", err
	}
	return stored.Location, nil
}

func (u *AvatarUploader) Save(ctx context.Context, f UploadedFile, folder string) (StoredAvatar, error) {
	name, err := u.filename(f)
	if err != nil {
		return StoredAvatar{}, err
	}
	path := strings.Trim(folder, "/") + "/" + name

	if err := u.Store.Put(ctx, path, f.Content, f.ContentType); err != nil {
		return StoredAvatar{}, fmt.Errorf("store avatar: %w", err)
	}

	stored := StoredAvatar{Path: path, Location: path, Reference: path}
	location, err := u.Store.URL(path)
	if err != nil {
		if u.Policy.Handle("error getting storage url", err, logrus.Fields{"path": path}) {
			return stored, nil
		}
		return StoredAvatar{}, err
	}
	stored.Location = location
	if !storage.URLsExpire(u.Store) {
		stored.Reference = location
	}
	return stored, nil
}

// AvatarRemover deletes previously stored avatars, best-effort.
type AvatarRemover struct {
	Store  storage.Gateway
	Logger *logrus.Logger
}

func NewAvatarRemover(store storage.Gateway, logger *logrus.Logger) *AvatarRemover {
	return &AvatarRemover{Store: store, Logger: logger}
}

// ObjectPath recovers the storage-relative path of location, which may be
// an absolute URL or a relative path. The path component is split into
// segments and everything from the first run of segments equal to folder
// is kept, so nested folders such as "uploads/avatars" match too.
// ok is false when location is not a managed object.
func ObjectPath(location, folder string) (path string, ok bool) {
	folder = strings.Trim(folder, "/")
	if folder == "" || !strings.Contains(location, folder) {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return "", false
	}
	want := strings.Split(folder, "/")
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+len(want) <= len(segs); i++ {
		if !slices.Equal(segs[i:i+len(want)], want) {
			continue
		}
		if i+len(want) == len(segs) {
			return "", false
		}
		return strings.Join(segs[i:], "/"), true
	}
	return "", false
}

// Remove never fails: unmanaged locations are ignored and delete errors
// are reported and swallowed.
func (r *AvatarRemover) Remove(ctx context.Context, location, folder string) {
	path, ok := ObjectPath(location, folder)
	if !ok {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.report(path, fmt.Errorf("panic deleting avatar: %v", rec))
		}
	}()
	if err := r.Store.Delete(ctx, path); err != nil {
		r.report(path, err)
	}
}

func (r *AvatarRemover) report(path string, err error) {
	if r.Logger == nil {
		return
	}
	r.Logger.WithError(err).WithField("path", path).Error("avatar delete failed")
}
