// Package storage uploads avatar images to an S3-compatible object store
// and returns the public URL that gets persisted on the account.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// AvatarStorage holds the connection settings for the bucket. Works
// against AWS or any S3-compatible endpoint (MinIO and friends) via
// BaseEndpoint.
type AvatarStorage struct {
	Region       string
	BaseEndpoint string
	Bucket       string
	AccessKey    string
	SecretKey    string
}

func NewAvatarStorage(region, endpoint, bucket, accessKey, secretKey string) *AvatarStorage {
	return &AvatarStorage{
		Region:       region,
		BaseEndpoint: endpoint,
		Bucket:       bucket,
		AccessKey:    accessKey,
		SecretKey:    secretKey,
	}
}

func (s *AvatarStorage) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.AccessKey,
			s.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Upload stores the image under a per-account key and returns its public
// URL. Re-uploading generates a fresh key; old objects are left for the
// bucket lifecycle policy to expire.
func (s *AvatarStorage) Upload(ctx context.Context, username string, accountID uint64, r io.Reader, contentType string) (string, error) {
	client, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%s%d/%s", username, accountID, uuid.New())
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return s.publicURL(key), nil
}

func (s *AvatarStorage) publicURL(key string) string {
	if s.BaseEndpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.BaseEndpoint, "/"), s.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key)
}
