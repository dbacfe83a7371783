package port

import (
	"context"
	"io"
	"time"
)

// UploadInput describes an object to upload.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
}

// UploadOutput is the result of an upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts the blob store behind claim bundle archiving.
// Archived results are written once and handed out as download links; there
// is no read or delete path.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}
