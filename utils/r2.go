// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lemon-club-service/config"
)

var r2Client *s3.Client
var r2Bucket string
var cdnBaseURL string

// InitR2 sets up the R2 client when credentials are configured. Without them
// the service runs with uploads disabled and serves assets from ./output only.
func InitR2(cfg *config.Config) error {
	if cfg.R2AccessKeyID == "" || cfg.R2AccessKeySecret == "" || cfg.R2Bucket == "" || cfg.CloudflareAccountID == "" {
		log.Println("[R2] Not configured, asset uploads disabled")
		return nil
	}

	r2Bucket = cfg.R2Bucket
	cdnBaseURL = cfg.CDNBaseURL
	if cdnBaseURL == "" {
		cdnBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.CloudflareAccountID)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2AccessKeyID, cfg.R2AccessKeySecret, "",
		)),
		awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.CloudflareAccountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load R2 config: %w", err)
	}

	r2Client = s3.NewFromConfig(awsCfg)
	return nil
}

// R2Enabled reports whether uploads were configured at startup.
func R2Enabled() bool {
	return r2Client != nil
}

// UploadBytesToR2 uploads a blob and returns the public CDN URL.
// key is the R2 object key (e.g., "nft/lemon-seed/abc123.json")
func UploadBytesToR2(ctx context.Context, data []byte, key, contentType string) (string, error) {
	if r2Client == nil {
		return "", fmt.Errorf("R2 client not initialized")
	}

	_, err := r2Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r2Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", cdnBaseURL, key), nil
}
