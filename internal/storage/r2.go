// internal/storage/r2.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	PublicURL       string
}

// R2Client archives CSV snapshots of each run to R2 object storage.
type R2Client struct {
	client *s3.Client
	config R2Config
}

func NewR2Client(cfg R2Config) (*R2Client, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("missing required R2 configuration parameters")
	}

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID),
		}, nil
	})

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.AccessKeySecret,
			"",
		)),
		config.WithRetryer(func() aws.Retryer {
			return aws.NopRetryer{}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	// Verify bucket exists and we have permissions
	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: aws.String(cfg.BucketName),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") {
			return nil, fmt.Errorf("bucket %s not found or you don't have permission to access it", cfg.BucketName)
		}
		return nil, fmt.Errorf("failed to access bucket: %w", err)
	}

	return &R2Client{
		client: client,
		config: cfg,
	}, nil
}

func (r *R2Client) upload(ctx context.Context, key string, content []byte, contentType string) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to R2: %w", err)
	}
	return nil
}

// UploadExport stores one CSV snapshot under exports/<run_date>/ and returns
// its public URL. dataset is "users" or "events".
func (r *R2Client) UploadExport(ctx context.Context, dataset string, runDate time.Time, runID string, content []byte) (string, error) {
	if dataset == "" {
		return "", fmt.Errorf("dataset name cannot be empty")
	}
	key := fmt.Sprintf("exports/%s/%s_%s.csv", runDate.UTC().Format("2006-01-02"), dataset, runID)
	if err := r.upload(ctx, key, content, "text/csv"); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", r.config.PublicURL, key), nil
}
