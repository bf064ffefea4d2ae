package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Archiver writes trimmed activity batches to Amazon S3 (or compatible
// APIs) as timestamped JSON objects.
type S3Archiver struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

func NewS3Archiver(client *s3.Client, bucket, keyPrefix string) *S3Archiver {
	return &S3Archiver{
		client:    client,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

func (a *S3Archiver) Archive(ctx context.Context, list string, entries []json.RawMessage) (string, error) {
	if a.bucket == "" {
		return "", fmt.Errorf("archive bucket is required")
	}

	now := time.Now().UTC()
	body, err := json.Marshal(Batch{
		List:       list,
		ArchivedAt: now,
		Entries:    entries,
	})
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}

	// uuid suffix keeps concurrent sweeps from clobbering each other
	key := path.Join(a.keyPrefix, list, now.Format("2006-01-02T15-04-05Z")+"-"+uuid.NewString()+".json")
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put batch object: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}
