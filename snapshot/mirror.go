package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "oddsflow/config"
	"oddsflow/logger"
)

// Mirror uploads saved snapshot files to an S3 bucket so downstream readers
// do not need filesystem access to the collector host.
type Mirror struct {
	cfg    appconfig.S3Config
	client *s3.Client
	log    *logger.Entry
}

// NewMirror builds an S3 mirror from storage configuration. Static
// credentials are optional; without them the default provider chain applies.
func NewMirror(ctx context.Context, cfg appconfig.S3Config) (*Mirror, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &Mirror{cfg: cfg, client: client, log: logger.GetLogger().WithComponent("mirror")}, nil
}

// Upload pushes the archive and the latest copy. The archive key comes from
// the configured template; the latest copy always lands at the bucket root.
func (m *Mirror) Upload(ctx context.Context, archivePath, latestPath, date string) error {
	if err := m.put(ctx, m.archiveKey(date), archivePath); err != nil {
		return fmt.Errorf("mirror archive: %w", err)
	}
	if err := m.put(ctx, latestName, latestPath); err != nil {
		return fmt.Errorf("mirror latest copy: %w", err)
	}
	return nil
}

// archiveKey renders the configured key template for a snapshot date in
// YYYY-MM-DD form.
func (m *Mirror) archiveKey(date string) string {
	key := strings.ReplaceAll(m.cfg.KeyTemplate, "{date}", date)
	if len(date) >= 7 {
		key = strings.ReplaceAll(key, "{year}", date[:4])
		key = strings.ReplaceAll(key, "{month}", date[5:7])
	}
	return key
}

func (m *Mirror) put(ctx context.Context, key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if _, err := m.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", m.cfg.Bucket, key, err)
	}
	logger.IncrementS3Upload(int64(len(data)))
	m.log.WithFields(logger.Fields{"bucket": m.cfg.Bucket, "key": key, "bytes": len(data)}).Info("snapshot mirrored")
	return nil
}
