// Package storage is the blob side of orgdrive: presigned upload tickets,
// retrieval URLs and object removal against an S3-compatible store.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UploadTicket is a one-shot destination for a client upload. ObjectID
// becomes File.FileID once the client registers the upload.
type UploadTicket struct {
	ObjectID  string    `json:"objectId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ObjectStore interface {
	// GenerateUploadURL reserves a fresh object key and presigns a PUT for it.
	GenerateUploadURL(ctx context.Context) (*UploadTicket, error)
	// GetURL returns a retrieval URL, or nil when the object does not exist.
	GetURL(ctx context.Context, objectID string) (*string, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, objectID string) error
}

// NewObjectKey returns a date-partitioned random key.
func NewObjectKey(now time.Time) string {
	return fmt.Sprintf("uploads/%d/%02d/%02d/%v", now.Year(), now.Month(), now.Day(), uuid.New())
}
