// Package blobstore keeps receipt images on the local filesystem and serves them under a public base URL.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
)

// Bucket is the path segment all receipt URLs share.
const Bucket = "receipts"

// LocalStore writes blobs into a single directory.
type LocalStore struct {
	dir     string
	baseURL string
}

var _ portsrepo.BlobStore = (*LocalStore)(nil)

// NewLocalStore creates dir if needed. baseURL is the public prefix files are served under,
// for example "http://localhost:8080/receipts".
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating receipt directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// validKey rejects anything that could escape the store directory.
func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, `/\`) && key != "." && key != ".." && !strings.HasPrefix(key, ".")
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("%w: invalid blob key %q", apperrors.ErrValidation, key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: creating temp file: %v", apperrors.ErrCollaborator, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: writing blob %s: %v", apperrors.ErrCollaborator, key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: closing blob %s: %v", apperrors.ErrCollaborator, key, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return "", fmt.Errorf("%w: storing blob %s: %v", apperrors.ErrCollaborator, key, err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalStore) Delete(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !validKey(key) {
			errs = append(errs, fmt.Errorf("invalid blob key %q", key))
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: deleting blobs: %v", apperrors.ErrCollaborator, errors.Join(errs...))
	}
	return nil
}

// List skips directories and dot-files, which include in-flight uploads.
func (s *LocalStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing blobs: %v", apperrors.ErrCollaborator, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		keys = append(keys, e.Name())
	}
	return keys, nil
}

func (s *LocalStore) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || !validKey(key) {
		return "", false
	}
	return key, true
}

// Dir is the directory blobs are written to, for mounting as static files.
func (s *LocalStore) Dir() string {
	return s.dir
}
