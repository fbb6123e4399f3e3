package writer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "trendflow/config"
	"trendflow/logger"
)

// Archiver uploads finished dataset files to S3. Construct it only when
// storage.s3.enabled is set.
type Archiver struct {
	config   *appconfig.Config
	s3Client *s3.Client
	log      *logger.Entry
}

func NewArchiver(ctx context.Context, cfg *appconfig.Config) (*Archiver, error) {
	log := logger.GetLogger().WithComponent("s3_archiver")

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	log.WithFields(logger.Fields{
		"bucket": cfg.Storage.S3.Bucket,
		"region": cfg.Storage.S3.Region,
	}).Info("s3 archiver initialized")

	return &Archiver{
		config:   cfg,
		s3Client: s3.NewFromConfig(awsCfg),
		log:      log,
	}, nil
}

// Archive uploads one local dataset file under a date-partitioned key.
func (a *Archiver) Archive(ctx context.Context, localPath string, runDate time.Time) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read dataset for archiving: %w", err)
	}

	key := path.Join(
		a.config.Storage.S3.Prefix,
		fmt.Sprintf("date=%s", runDate.Format("2006-01-02")),
		filepath.Base(localPath),
	)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.config.Storage.S3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv; charset=utf-8"),
		Metadata: map[string]string{
			"trendflow-version": a.config.Trendflow.Version,
		},
	}

	if _, err := a.s3Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3 bucket %s: %w", a.config.Storage.S3.Bucket, err)
	}

	a.log.WithFields(logger.Fields{
		"s3_key":    key,
		"data_size": len(data),
	}).Info("dataset archived to S3")
	return nil
}
