package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AttachmentStore keeps note attachments in a MinIO bucket. Access control
// for an attachment is the access control of its parent note; this layer
// only moves bytes.
type AttachmentStore struct {
	client *minio.Client
	bucket string
}

// NewAttachmentStore creates the MinIO client and ensures the bucket exists.
func NewAttachmentStore(cfg *MinIOConfig) (*AttachmentStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &AttachmentStore{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func attachmentKey(noteID string) string {
	return "notes/" + noteID + "/attachment"
}

// Put stores the attachment for a note, replacing any previous one.
func (s *AttachmentStore) Put(ctx context.Context, noteID string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, attachmentKey(noteID), reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Get returns a ReadCloser for the note's attachment.
func (s *AttachmentStore) Get(ctx context.Context, noteID string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, attachmentKey(noteID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// stat to surface missing objects before streaming starts
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// Delete removes the note's attachment. Missing objects are not an error.
func (s *AttachmentStore) Delete(ctx context.Context, noteID string) error {
	return s.client.RemoveObject(ctx, s.bucket, attachmentKey(noteID), minio.RemoveObjectOptions{})
}
