package blobstore

import (
	"context"
)

// Store holds uploaded attachments.
type Store interface {
	// UploadDataURI decodes dataURI and stores its content under path.
	UploadDataURI(ctx context.Context, path, dataURI string) (Handle, error)
	// PublicURL returns a URL anyone can fetch the object from.
	PublicURL(ctx context.Context, h Handle) (string, error)
}

// Handle identifies a stored object.
type Handle struct {
	Bucket string
	Path   string
	// Token is the download token embedded in the public URL.
	Token string
}
