package policies

import (
	"context"
	"io"
)

type ImageUpload struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStorage keeps cabin photos outside the primary store.
type ImageStorage interface {
	Upload(ctx context.Context, img ImageUpload) (url string, err error)
	Delete(ctx context.Context, key string) error
}
