package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioAPI is the part of *minio.Client the store uses
type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// MinioStore writes objects to a MinIO (or any S3-compatible) bucket
type MinioStore struct {
	client        minioAPI
	bucket        string
	region        string
	publicBaseURL string
}

// NewMinioClient builds a client for host:port with static credentials
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}
	return client, nil
}

func NewMinioStore(client minioAPI, bucket, region, publicBaseURL string) *MinioStore {
	return &MinioStore{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: publicBaseURL,
	}
}

// EnsureBucket creates the bucket when it is missing
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put uploads obj, replacing whatever was stored at the same path
func (s *MinioStore) Put(ctx context.Context, obj Object) (string, error) {
	if err := validate(obj); err != nil {
		return "", err
	}

	opts := minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		UserMetadata: obj.Metadata,
		CacheControl: "no-cache",
	}
	if obj.Progress != nil {
		opts.Progress = &progressSink{total: obj.Size, fn: obj.Progress}
	}

	if _, err := s.client.PutObject(ctx, s.bucket, obj.Path, obj.Body, obj.Size, opts); err != nil {
		return "", fmt.Errorf("failed to put object %s/%s: %w", s.bucket, obj.Path, err)
	}

	return PublicURL(s.publicBaseURL, s.bucket, obj.Path, obj.Version), nil
}
