package blobstore

import (
	"context"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"golang.org/x/xerrors"

	"github.com/gjc-app/board-sync/pkg/anonID"
	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/dataURI"
)

const downloadTokensKey = "firebaseStorageDownloadTokens"

// Firebase stores objects in the Firebase Storage bucket of the app.
type Firebase struct {
	bucket *gcs.BucketHandle
	name   string
}

var _ Store = (*Firebase)(nil)

func NewFirebase(ctx context.Context, app *firebase.App, bucketName string) (*Firebase, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to initialize Firebase Storage: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, xerrors.Errorf("failed to open bucket %s: %w", bucketName, err)
	}
	return &Firebase{bucket: bucket, name: bucketName}, nil
}

func (s *Firebase) UploadDataURI(ctx context.Context, path, uri string) (Handle, error) {
	payload, err := dataURI.Decode(uri)
	if err != nil {
		return Handle{}, apperrors.UploadFailed("uploadDataUri", err)
	}

	token := anonID.NewToken()
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = payload.ContentType
	w.Metadata = map[string]string{downloadTokensKey: token}

	if _, err := w.Write(payload.Data); err != nil {
		w.Close()
		return Handle{}, apperrors.UploadFailed("uploadDataUri", xerrors.Errorf("write %s: %w", path, err))
	}
	// The object exists only once Close returns without error.
	if err := w.Close(); err != nil {
		return Handle{}, apperrors.UploadFailed("uploadDataUri", xerrors.Errorf("close %s: %w", path, err))
	}
	return Handle{Bucket: s.name, Path: path, Token: token}, nil
}

func (s *Firebase) PublicURL(ctx context.Context, h Handle) (string, error) {
	if h.Path == "" || h.Token == "" {
		return "", apperrors.UploadFailed("getPublicUrl", xerrors.New("incomplete handle"))
	}
	return downloadURL(h), nil
}

func downloadURL(h Handle) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		h.Bucket, url.PathEscape(h.Path), h.Token)
}
