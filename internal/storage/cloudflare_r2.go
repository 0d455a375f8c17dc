package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"modelhub_backend/pkg/apperrors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// CloudflareR2Storage implements the gateway against Cloudflare R2.
// R2 is S3-compatible, so we use the same SDK.
type CloudflareR2Storage struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	baseURL  string
}

func NewCloudflareR2Storage(cfg Config) (*CloudflareR2Storage, error) {
	// R2 endpoint format: https://<account_id>.r2.cloudflarestorage.com
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for Cloudflare R2")
	}

	awsConfig := &aws.Config{
		Region:           aws.String("auto"),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 session: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.r2.dev", cfg.Bucket)
	}

	return &CloudflareR2Storage{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		baseURL:  baseURL,
	}, nil
}

func (s *CloudflareR2Storage) Upload(ctx context.Context, reader io.Reader, size int64, suggestedName, contentType string) (*ObjectRef, error) {
	key := deriveKey(suggestedName)

	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return nil, mapS3Error(err)
	}

	return &ObjectRef{
		URL:       fmt.Sprintf("%s/%s", s.baseURL, key),
		StorageID: key,
	}, nil
}

func (s *CloudflareR2Storage) Delete(ctx context.Context, storageID string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	}

	if _, err := s.client.DeleteObjectWithContext(ctx, input); err != nil {
		return mapS3Error(err)
	}

	return nil
}

// mapS3Error sorts SDK failures into the gateway taxonomy: connectivity
// and credential problems are "unavailable", remote-side validation is
// "rejected", and a missing key is "not found".
func mapS3Error(err error) error {
	aerr, ok := err.(awserr.Error)
	if !ok {
		return apperrors.ErrStorageUnavailable(err)
	}

	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return apperrors.ErrStorageNotFound(err)
	case "RequestCanceled", "RequestError", "SerializationError":
		return apperrors.ErrStorageUnavailable(err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
		return apperrors.ErrStorageUnavailable(err)
	}

	if reqErr, ok := err.(awserr.RequestFailure); ok {
		if reqErr.StatusCode() == http.StatusNotFound {
			return apperrors.ErrStorageNotFound(err)
		}
		if reqErr.StatusCode() >= 500 {
			return apperrors.ErrStorageUnavailable(err)
		}
		return apperrors.ErrStorageRejected(err)
	}

	return apperrors.ErrStorageUnavailable(err)
}
