// Package snapshot archives fetched pages so a missed or surprising alert can
// be checked against what the site actually served.
package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

const contentType = "text/html; charset=utf-8"

// BlobStore persists objects by path.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// Store implements monitor.Snapshotter on top of a BlobStore. Objects are laid
// out as <prefix>/<monitor>/<yyyy-mm-dd>/<sha256>.html, so an unchanged page
// fetched twice on the same day lands on the same object.
type Store struct {
	blobs  BlobStore
	prefix string
}

// New builds a Store writing beneath prefix.
func New(blobs BlobStore, prefix string) (*Store, error) {
	if blobs == nil {
		return nil, errors.New("blob store is required")
	}
	return &Store{
		blobs:  blobs,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Save writes body and returns the store's URI for it.
func (s *Store) Save(ctx context.Context, monitor string, fetchedAt time.Time, body []byte) (string, error) {
	p := s.Path(monitor, fetchedAt, body)
	uri, err := s.blobs.PutObject(ctx, p, contentType, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("save snapshot %s: %w", p, err)
	}
	return uri, nil
}

// Path returns the object path body would be written to.
func (s *Store) Path(monitor string, fetchedAt time.Time, body []byte) string {
	sum := sha256.Sum256(body)
	return path.Join(s.prefix, monitor, fetchedAt.Format(time.DateOnly), hex.EncodeToString(sum[:])+".html")
}
