// Package blobstore stores uploaded clinic images (skin photos, profile
// pictures). It defines the ImageStore interface, an in-memory implementation
// for the memory backend and tests, and a local-disk implementation.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrImageNotFound      = errors.New("image not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
)

// MaxImageSize is the maximum allowed image size in bytes (20 MB).
const MaxImageSize = 20 * 1024 * 1024

// AllowedContentTypes lists the image MIME types the clinic accepts.
var AllowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
}

// AllowedCategories lists valid image category values.
var AllowedCategories = map[string]bool{
	"skin-photo":    true,
	"profile-image": true,
	"other":         true,
}

// ImageMetadata describes a stored image.
type ImageMetadata struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	PatientID   int64     `json:"patient_id,omitempty"`
	Category    string    `json:"category"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImageStore is the image persistence contract.
type ImageStore interface {
	Put(ctx context.Context, meta ImageMetadata, data io.Reader) (*ImageMetadata, error)
	Get(ctx context.Context, id string) (*ImageMetadata, io.ReadCloser, error)
	Delete(ctx context.Context, id string) (bool, error)
}

func validate(meta *ImageMetadata) error {
	if !AllowedContentTypes[meta.ContentType] {
		return ErrInvalidContentType
	}
	if meta.Category == "" {
		meta.Category = "other"
	}
	if !AllowedCategories[meta.Category] {
		meta.Category = "other"
	}
	return nil
}

func readAll(data io.Reader) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(data, MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) > MaxImageSize {
		return nil, ErrFileTooLarge
	}
	return buf, nil
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type memoryImage struct {
	meta ImageMetadata
	data []byte
}

// MemoryStore holds images in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[string]memoryImage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: make(map[string]memoryImage)}
}

func (s *MemoryStore) Put(_ context.Context, meta ImageMetadata, data io.Reader) (*ImageMetadata, error) {
	if err := validate(&meta); err != nil {
		return nil, err
	}
	buf, err := readAll(data)
	if err != nil {
		return nil, err
	}

	meta.ID = uuid.NewString()
	meta.Size = int64(len(buf))
	sum := sha256.Sum256(buf)
	meta.Hash = hex.EncodeToString(sum[:])
	meta.CreatedAt = time.Now()

	s.mu.Lock()
	s.images[meta.ID] = memoryImage{meta: meta, data: buf}
	s.mu.Unlock()
	return &meta, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*ImageMetadata, io.ReadCloser, error) {
	s.mu.RLock()
	img, ok := s.images[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrImageNotFound
	}
	meta := img.meta
	return &meta, io.NopCloser(bytes.NewReader(img.data)), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[id]; !ok {
		return false, nil
	}
	delete(s.images, id)
	return true, nil
}

// ---------------------------------------------------------------------------
// Local-disk store
// ---------------------------------------------------------------------------

// DiskStore writes image bytes and a metadata sidecar file under a root
// directory, one pair of files per image id.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) dataPath(id string) string { return filepath.Join(s.root, id) }
func (s *DiskStore) metaPath(id string) string { return filepath.Join(s.root, id+".json") }

// validID rejects anything that is not a store-issued UUID before the id is
// joined into a filesystem path.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *DiskStore) Put(_ context.Context, meta ImageMetadata, data io.Reader) (*ImageMetadata, error) {
	if err := validate(&meta); err != nil {
		return nil, err
	}
	buf, err := readAll(data)
	if err != nil {
		return nil, err
	}

	meta.ID = uuid.NewString()
	meta.Size = int64(len(buf))
	sum := sha256.Sum256(buf)
	meta.Hash = hex.EncodeToString(sum[:])
	meta.CreatedAt = time.Now()

	if err := os.WriteFile(s.dataPath(meta.ID), buf, 0o644); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.metaPath(meta.ID), metaBytes, 0o644); err != nil {
		_ = os.Remove(s.dataPath(meta.ID))
		return nil, fmt.Errorf("write image metadata: %w", err)
	}
	return &meta, nil
}

func (s *DiskStore) Get(_ context.Context, id string) (*ImageMetadata, io.ReadCloser, error) {
	if !validID(id) {
		return nil, nil, ErrImageNotFound
	}
	metaBytes, err := os.ReadFile(s.metaPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrImageNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	var meta ImageMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, nil, fmt.Errorf("decode image metadata: %w", err)
	}
	f, err := os.Open(s.dataPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrImageNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &meta, f, nil
}

func (s *DiskStore) Delete(_ context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	err := os.Remove(s.dataPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_ = os.Remove(s.metaPath(id))
	return true, nil
}
