package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/amirphl/cargo-certificates/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewFromConfig builds the configured driver, or returns nil when archiving is disabled
func NewFromConfig(ctx context.Context, cfg config.StorageConfig) (Driver, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Type {
	case "local":
		log.Printf("Initializing local certificate storage in %s", cfg.LocalBaseDir)
		return NewLocalFSDriver(cfg.LocalBaseDir)
	case "s3":
		log.Printf("Initializing S3 certificate storage: endpoint=%q bucket=%q", cfg.S3Endpoint, cfg.S3Bucket)

		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.S3Region),
		}
		if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
			creds := credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")
			opts = append(opts, awsconfig.WithCredentialsProvider(creds))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			}
			o.UsePathStyle = true
		})

		return NewS3Driver(client, cfg.S3Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
