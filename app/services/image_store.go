package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/shashiranjanraj/duka/pkg/storage"
)

// Upload is one image file from the admin form.
type Upload struct {
	Filename string
	Content  io.Reader
}

var (
	allowedExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}
	allowedMIME       = []string{"image/png", "image/jpeg", "image/gif"}
	unsafeName        = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)
)

// ImageStore saves product images under uploads/ on a storage disk.
type ImageStore struct {
	disk     storage.Disk
	maxBytes int64
	now      func() time.Time
}

func NewImageStore(disk storage.Disk, maxBytes int64) *ImageStore {
	return &ImageStore{disk: disk, maxBytes: maxBytes, now: time.Now}
}

// SaveAll stores every upload with an allowed extension and returns the
// public references in order. Files with other extensions are skipped;
// files whose content is not an image fail with ErrInvalidImage.
func (s *ImageStore) SaveAll(ctx context.Context, uploads []Upload) ([]string, error) {
	var refs []string
	for _, u := range uploads {
		if u.Content == nil || !AllowedImage(u.Filename) {
			continue
		}
		ref, err := s.Save(ctx, u)
		if err != nil {
			return refs, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Save writes one upload as uploads/<yyyymmdd_hhmmss>_<safe name>.
func (s *ImageStore) Save(ctx context.Context, u Upload) (string, error) {
	if !AllowedImage(u.Filename) {
		return "", fmt.Errorf("%w: %s", ErrInvalidImage, u.Filename)
	}

	data, err := io.ReadAll(io.LimitReader(u.Content, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", u.Filename, err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidImage, u.Filename, s.maxBytes)
	}
	if mt := mimetype.Detect(data); !mimetype.EqualsAny(mt.String(), allowedMIME...) {
		return "", fmt.Errorf("%w: %s is %s", ErrInvalidImage, u.Filename, mt.String())
	}

	name := s.now().Format("20060102_150405") + "_" + SafeFilename(u.Filename)
	p := path.Join("uploads", name)
	if err := s.disk.Put(ctx, p, data); err != nil {
		return "", fmt.Errorf("store upload %s: %w", u.Filename, err)
	}
	return s.disk.URL(p), nil
}

// AllowedImage checks the filename extension only.
func AllowedImage(filename string) bool {
	return allowedExtensions[strings.ToLower(path.Ext(filename))]
}

// SafeFilename strips directories and replaces anything outside
// [A-Za-z0-9_.-] with "_".
func SafeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	safe := strings.Trim(unsafeName.ReplaceAllString(base, "_"), "._")
	if safe == "" {
		return "image"
	}
	return safe
}
