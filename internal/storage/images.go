// Package storage implements the filesystem blob store for uploaded images.
package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"

	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultUploadDir       = "/tmp/inkwell/media"
	DefaultMaxUploadSizeMB = 10
)

// uploadPrefix is the date-partitioned directory images land in, relative to
// the store root. Mirrored into the path stored on the Post row.
const uploadPrefix = "uploads/images"

// ImageStore writes and deletes image blobs under a single root directory.
// Paths handed out are relative to the root and safe to persist.
type ImageStore struct {
	root     string
	maxBytes int64
}

// NewImageStore builds a store rooted at the configured upload directory.
func NewImageStore(cfg *config.Config) *ImageStore {
	root := DefaultUploadDir
	maxMB := DefaultMaxUploadSizeMB

	if cfg != nil {
		if cfg.ImageUploadDir != "" {
			root = cfg.ImageUploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageStore{
		root:     root,
		maxBytes: int64(maxMB) * 1024 * 1024,
	}
}

// Save validates content as an image and writes it under a date-partitioned
// path derived from now and filename, returning the relative path. A name
// collision on the same day gets a numeric suffix rather than overwriting.
func (s *ImageStore) Save(filename string, content []byte, now time.Time) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	detected := http.DetectContentType(content)
	if !strings.HasPrefix(detected, "image/") {
		return "", models.NewValidationError("Invalid image type")
	}
	if _, _, err := image.Decode(bytes.NewReader(content)); err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	day := filepath.Join(uploadPrefix, now.Format("2006/01/02"))
	name := sanitizeFilename(filename)

	rel := filepath.ToSlash(filepath.Join(day, name))
	for i := 1; s.exists(rel); i++ {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		rel = filepath.ToSlash(filepath.Join(day, fmt.Sprintf("%s-%d%s", base, i, ext)))
	}

	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	return rel, nil
}

// Delete removes the blob at the given relative path. A missing file is not
// an error; deletion is cleanup, not a consistency guarantee.
func (s *ImageStore) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Exists reports whether a blob is present at the given relative path.
func (s *ImageStore) Exists(rel string) bool {
	return rel != "" && s.exists(rel)
}

// AbsPath resolves a stored relative path against the store root.
func (s *ImageStore) AbsPath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Root returns the store's root directory, for serving files statically.
func (s *ImageStore) Root() string {
	return s.root
}

func (s *ImageStore) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(rel)))
	return err == nil
}

// sanitizeFilename strips directory components and anything that could
// escape the store root, keeping the extension intact.
func sanitizeFilename(name string) string {
	name = filepath.Base(filepath.ToSlash(name))
	name = strings.ReplaceAll(name, "..", "")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
