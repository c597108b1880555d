package model

import "strings"

// ImageState enumerates the three mutually exclusive states of a
// product's image reference.
type ImageState int

const (
	// ImageEmpty means the product has no image.
	ImageEmpty ImageState = iota
	// ImageLocal means image_path holds a storage key we own the file for.
	ImageLocal
	// ImageExternal means image_path holds an absolute URL we do not own.
	ImageExternal
)

// ImageRef is the tagged interpretation of a product's image_path.
// Exactly one of Key or URL is set, matching State. Classification
// happens once here; nothing downstream re-sniffs URL shapes.
type ImageRef struct {
	State ImageState
	Key   string // storage key when State == ImageLocal
	URL   string // absolute URL when State == ImageExternal
}

// ParseImageRef classifies a stored image_path value.
func ParseImageRef(path string) ImageRef {
	switch {
	case path == "":
		return ImageRef{State: ImageEmpty}
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		return ImageRef{State: ImageExternal, URL: path}
	default:
		return ImageRef{State: ImageLocal, Key: path}
	}
}

// Path converts the reference back to its persisted form.
func (r ImageRef) Path() string {
	switch r.State {
	case ImageLocal:
		return r.Key
	case ImageExternal:
		return r.URL
	default:
		return ""
	}
}
