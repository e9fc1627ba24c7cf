package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oksasatya/suraksha-api/internal/domain/storage"
)

// Local stores blobs under a directory that the API also serves
// statically; publicURL is the URL prefix of that static mount.
type Local struct {
	root      string
	publicURL string
}

func NewLocal(root, publicURL string) (*Local, error) {
	if root == "" {
		return nil, errors.New("local storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Root is the directory served under the public URL
func (l *Local) Root() string { return l.root }

func (l *Local) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return filepath.Join(l.root, clean), nil
}

func (l *Local) Put(_ context.Context, path string, r io.Reader, _ string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), full)
}

func (l *Local) Open(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrObjectNotFound
	}
	return f, err
}

func (l *Local) URL(path string) (string, error) {
	if l.publicURL == "" {
		return "", storage.ErrURLUnavailable
	}
	return l.publicURL + "/" + strings.TrimLeft(path, "/"), nil
}

func (l *Local) Delete(_ context.Context, path string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, os.ErrNotExist) {
		return storage.ErrObjectNotFound
	}
	return err
}

var _ storage.Gateway = (*Local)(nil)
