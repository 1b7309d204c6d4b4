package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platefeed/backend/config"
)

// ImageStore accepts an uploaded image and returns a retrievable URL.
// The S3 implementation is swapped for a stub in tests.
type ImageStore interface {
	StoreDataURI(ctx context.Context, dataURI, prefix string) (string, error)
}

// ImageService decodes base64 data-URI images from API payloads and
// stores them in S3 under a generated key.
type ImageService struct {
	s3Config *config.S3Config
	logger   *logrus.Logger
}

func NewImageService(s3Config *config.S3Config, logger *logrus.Logger) *ImageService {
	return &ImageService{s3Config: s3Config, logger: logger}
}

var _ ImageStore = (*ImageService)(nil)

// StoreDataURI accepts a "data:image/<ext>;base64,<payload>" string,
// uploads the decoded bytes, and returns the public URL.
func (s *ImageService) StoreDataURI(ctx context.Context, dataURI, prefix string) (string, error) {
	contentType, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(contentType, "image/")
	key := fmt.Sprintf("%s/%s.%s", prefix, uuid.New().String(), ext)

	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	s.logger.WithFields(logrus.Fields{"key": key}).Info("uploaded image")
	return url, nil
}

// DecodeDataURI splits a base64 data URI into its content type and
// decoded bytes.
func DecodeDataURI(dataURI string) (string, []byte, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return "", nil, NewFieldError("image", "expected a base64 data URI")
	}
	meta, payload, ok := strings.Cut(dataURI, ";base64,")
	if !ok {
		return "", nil, NewFieldError("image", "expected a base64 data URI")
	}
	contentType := strings.TrimPrefix(meta, "data:")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, NewFieldError("image", "invalid base64 payload")
	}
	return contentType, data, nil
}
