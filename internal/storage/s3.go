package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Client wraps S3 storage operations for generated videos
type Client struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string // optional base URL for public bucket (e.g. http://localhost:9000/videogen-assets)
}

// NewClient creates a new S3 storage client
func NewClient(endpoint, region, bucket, accessKey, secretKey string, useSSL bool, publicURL string) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	}

	// Custom endpoint for MinIO/LocalStack
	if endpoint != "" {
		configOpts = append(configOpts, config.WithBaseEndpoint(endpoint))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Path-style addressing for MinIO compatibility. Relaxed checksums so
	// S3-compatible backends (e.g. Cloudflare R2) that don't fully support
	// CRC32 headers work correctly.
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucket).
		Msg("S3 client initialized")

	return &Client{
		s3Client:  s3Client,
		bucket:    bucket,
		publicURL: publicURL,
	}, nil
}

// Bucket returns the configured bucket name
func (c *Client) Bucket() string {
	return c.bucket
}

// PublicURL returns the public URL for an object key. Empty if publicURL was not configured.
func (c *Client) PublicURL(key string) string {
	if c.publicURL == "" {
		return ""
	}
	if c.publicURL[len(c.publicURL)-1] == '/' {
		return c.publicURL + key
	}
	return c.publicURL + "/" + key
}

// UploadBytes uploads a byte payload to S3. S3-compatible backends (e.g. R2)
// require the Content-Length header, so the length is always set.
func (c *Client) UploadBytes(ctx context.Context, key string, data []byte, contentType string) error {
	return c.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
}

// Upload uploads data to S3. contentLength must be > 0.
func (c *Client) Upload(ctx context.Context, key string, data io.Reader, contentType string, contentLength int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(contentLength),
	}
	_, err := c.s3Client.PutObject(ctx, input)

	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Info().
		Str("bucket", c.bucket).
		Str("key", key).
		Int64("size_bytes", contentLength).
		Msg("Video uploaded to S3")

	return nil
}

// GeneratePresignedURL generates a presigned URL for downloading an object
func (c *Client) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(c.s3Client)

	req, err := presignClient.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiration
	})

	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return req.URL, nil
}

// Delete deletes an object from S3
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	log.Info().
		Str("bucket", c.bucket).
		Str("key", key).
		Msg("Object deleted from S3")

	return nil
}

// GetObject retrieves an object from S3
func (c *Client) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	return result.Body, nil
}
