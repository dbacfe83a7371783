package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"claimcheck/internal/domain"
	"claimcheck/internal/port"
)

// Archiver stores finished claim results as JSON objects for later review.
type Archiver struct {
	storage       port.ObjectStorage
	bucket        string
	presignExpiry time.Duration
}

func NewArchiver(storage port.ObjectStorage, bucket string, presignExpiry time.Duration) *Archiver {
	return &Archiver{storage: storage, bucket: bucket, presignExpiry: presignExpiry}
}

func resultKey(requestID string) string {
	return fmt.Sprintf("claims/%s.json", requestID)
}

// Store uploads the claim result under claims/<request_id>.json and returns
// the object key.
func (a *Archiver) Store(ctx context.Context, result *domain.ClaimResult) (string, error) {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("archive.Archiver.Store: marshal: %w", err)
	}
	key := resultKey(result.RequestID)
	_, err = a.storage.Upload(ctx, port.UploadInput{
		Bucket:      a.bucket,
		Key:         key,
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("archive.Archiver.Store: upload: %w", err)
	}
	return key, nil
}

// DownloadURL returns a time-limited link to an archived result.
func (a *Archiver) DownloadURL(ctx context.Context, requestID string) (string, error) {
	url, err := a.storage.PresignGet(ctx, a.bucket, resultKey(requestID), a.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("archive.Archiver.DownloadURL: %w", err)
	}
	return url, nil
}
