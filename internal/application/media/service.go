// Package media handles admin image uploads for the site.
package media

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/pkg/id"
)

// MaxUploadSize bounds a single image upload.
const MaxUploadSize = 10 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Repo interface {
	Put(ctx context.Context, m *domain.Media) error
	Get(ctx context.Context, mediaID string) (*domain.Media, error)
	List(ctx context.Context) ([]domain.Media, error)
	Delete(ctx context.Context, mediaID string) error
}

type UploadInput struct {
	Reader     io.Reader
	Filename   string
	Size       int64
	UploadedBy string
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*domain.Media, error)
	List(ctx context.Context) ([]domain.Media, error)
	Delete(ctx context.Context, mediaID string) error
}

type service struct {
	store ObjectStore
	repo  Repo
}

func NewService(store ObjectStore, repo Repo) Service {
	return &service{store: store, repo: repo}
}

// Upload stores an image under media/<id>/<name>. The content type is
// sniffed from the data rather than trusted from the client.
func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.Media, error) {
	if input.Size <= 0 || input.Size > MaxUploadSize {
		return nil, fmt.Errorf("image must be between 1 byte and %d MB: %w", MaxUploadSize>>20, domain.ErrBadRequest)
	}
	br := bufio.NewReaderSize(input.Reader, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head)
	if !allowedTypes[contentType] {
		return nil, fmt.Errorf("unsupported image type %q: %w", contentType, domain.ErrBadRequest)
	}

	mediaID := id.New()
	safeName := sanitizeFilename(input.Filename)
	key := fmt.Sprintf("media/%s/%s", mediaID, safeName)
	hasher := sha256.New()
	url, err := s.store.Upload(ctx, key, io.TeeReader(br, hasher), input.Size, contentType)
	if err != nil {
		return nil, err
	}
	m := &domain.Media{
		MediaID:    mediaID,
		Object:     key,
		URL:        url,
		Name:       safeName,
		Type:       contentType,
		Size:       input.Size,
		Hash:       hex.EncodeToString(hasher.Sum(nil)),
		UploadedBy: input.UploadedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, m); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			slog.Warn("could not remove orphaned upload", "key", key, "err", derr)
		}
		return nil, err
	}
	return m, nil
}

func (s *service) List(ctx context.Context) ([]domain.Media, error) {
	media, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if media == nil {
		media = []domain.Media{}
	}
	return media, nil
}

func (s *service) Delete(ctx context.Context, mediaID string) error {
	m, err := s.repo.Get(ctx, mediaID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, m.Object); err != nil {
		return err
	}
	return s.repo.Delete(ctx, mediaID)
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
