package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// StorageAdapter provides blob storage operations using Google Cloud Storage
type StorageAdapter struct {
	Client *storage.Client
}

// WritePublic uploads an object, grants AllUsers read access and returns
// the public URL. Used for clinician-uploaded demonstration videos, which
// the patient app fetches without credentials.
func (a *StorageAdapter) WritePublic(ctx context.Context, bucketName, objectName, contentType string, data []byte) (string, error) {
	obj := a.Client.Bucket(bucketName).Object(objectName)

	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("make public: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectName), nil
}

func (a *StorageAdapter) Read(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	rc, err := a.Client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
