// Package storage publishes converted files to S3-compatible object storage
// and hands back a time-limited download link.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object defaults
const (
	ContentTypeMP4     = "video/mp4"
	DownloadFileName   = "bw_video.mp4"
	DefaultPresignTTL  = time.Hour
	DefaultHTTPTimeout = 5 * time.Minute
	KeyPrefix          = "bw/"
)

// ErrNoBucket is returned when the publisher is built without a bucket
var ErrNoBucket = errors.New("s3 bucket is not configured")

// Publisher uploads a local file and returns a URL the user can fetch it from
type Publisher interface {
	Publish(ctx context.Context, localPath string) (string, error)
}

// S3Config holds connection settings for the bucket
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // non-empty for MinIO and other S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Publisher implements Publisher on top of aws-sdk-go-v2
type S3Publisher struct {
	bucket    string
	ttl       time.Duration
	putter    objectPutter
	presigner objectPresigner
}

// NewS3Publisher builds the AWS client from cfg
func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	log.Printf("S3 publisher initialized: bucket=%s region=%s", cfg.Bucket, cfg.Region)
	return newS3Publisher(cfg, client, s3.NewPresignClient(client)), nil
}

func newS3Publisher(cfg S3Config, putter objectPutter, presigner objectPresigner) *S3Publisher {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	return &S3Publisher{bucket: cfg.Bucket, ttl: ttl, putter: putter, presigner: presigner}
}

// Publish uploads localPath under a key derived from its file name and
// returns a presigned GET URL valid for the configured TTL
func (p *S3Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", localPath, err)
	}

	key := ObjectKey(localPath)
	_, err = p.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(p.bucket),
		Key:                aws.String(key),
		Body:               f,
		ContentLength:      aws.Int64(info.Size()),
		ContentType:        aws.String(ContentTypeMP4),
		ContentDisposition: aws.String(ContentDisposition()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}

	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}

	log.Printf("Published %s as s3://%s/%s (%d bytes)", localPath, p.bucket, key, info.Size())
	return req.URL, nil
}

// ObjectKey returns the bucket key for a local output file
func ObjectKey(localPath string) string {
	return KeyPrefix + filepath.Base(localPath)
}

// ContentDisposition is the attachment header every delivered file carries
func ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", DownloadFileName)
}

func buildAWSConfig(ctx context.Context, cfg S3Config) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}

	// Use static credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	optFns = append(optFns, awsconfig.WithHTTPClient(&http.Client{Timeout: DefaultHTTPTimeout}))

	return awsconfig.LoadDefaultConfig(ctx, optFns...)
}
