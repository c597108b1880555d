package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	errs "shopfront/internal/errors"
	"shopfront/internal/model"
	"shopfront/internal/storage"
)

const (
	// maxImageBytes caps uploaded product images at 2 MiB.
	maxImageBytes = 2 << 20
	imageKeyDir   = "products"
)

// allowed sniffed content types and the storage key extension each
// one maps to.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageUpload carries a decoded multipart image file part.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ImageManager owns the local-file side of a product's image lifecycle:
// validating uploads, persisting them under collision-resistant keys,
// reclaiming replaced or deleted files, and deriving public URLs.
type ImageManager struct {
	store storage.Store
}

// NewImageManager builds an ImageManager on top of a storage backend.
func NewImageManager(store storage.Store) *ImageManager {
	return &ImageManager{store: store}
}

// Save validates the upload and persists it, returning the new storage
// key. Validation failures surface as a field error on "image" and
// leave no file behind.
func (m *ImageManager) Save(ctx context.Context, up *ImageUpload) (string, error) {
	ve := errs.NewValidationError()

	if up.Size > maxImageBytes {
		ve.Add("image", "The image may not be greater than 2048 kilobytes.")
		return "", ve
	}

	data, err := io.ReadAll(io.LimitReader(up.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read upload: %v", errs.ErrImageStorage, err)
	}
	if int64(len(data)) > maxImageBytes {
		ve.Add("image", "The image may not be greater than 2048 kilobytes.")
		return "", ve
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		ve.Add("image", "The image must be a file of type: jpeg, png, gif, webp.")
		return "", ve
	}

	// The key extension comes from the sniffed content, never from the
	// client-supplied filename, so the file is always served with a
	// content type matching its bytes.
	key := fmt.Sprintf("%s/%s%s", imageKeyDir, uuid.NewString(), ext)
	if err := m.store.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: put %s: %v", errs.ErrImageStorage, key, err)
	}
	return key, nil
}

// Remove deletes the locally owned file behind ref, if any. External
// URLs and empty references own nothing, so nothing is deleted, and a
// file already absent from storage is not an error.
func (m *ImageManager) Remove(ctx context.Context, ref model.ImageRef) error {
	if ref.State != model.ImageLocal {
		return nil
	}
	if err := m.store.Delete(ctx, ref.Key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", errs.ErrImageStorage, ref.Key, err)
	}
	return nil
}

// Resolve recomputes the product's derived image_url from its stored
// image_path. Stored URLs are never trusted; this runs on every read.
func (m *ImageManager) Resolve(p *model.Product) {
	switch ref := p.Image(); ref.State {
	case model.ImageLocal:
		p.ImageURL = m.store.PublicURL(ref.Key)
	case model.ImageExternal:
		p.ImageURL = ref.URL
	default:
		p.ImageURL = ""
	}
}
