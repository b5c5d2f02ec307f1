package services

import (
	"context"
	"strings"
	"time"

	"github.com/arhub/ar-hub-backend/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const signedURLTTL = 15 * time.Minute

// AssetURLResolver resolves a stored object's fileKey to a retrieval URL.
type AssetURLResolver interface {
	ResolveURL(ctx context.Context, fileKey string) (string, error)
}

// UploadSigner produces a time-limited URL a client can upload a blob to.
type UploadSigner interface {
	SignUpload(ctx context.Context, fileKey, mime string, sizeBytes int64) (string, error)
}

// S3Storage resolves asset URLs from a public base URL when one is
// configured, falling back to presigned S3 GETs, and signs uploads as
// presigned PUTs.
type S3Storage struct {
	bucket     string
	publicBase string
	presigner  *s3.PresignClient
	logger     zerolog.Logger
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL, when set, maps fileKey -> PublicBaseURL/fileKey
	// without signing (CDN-fronted buckets).
	PublicBaseURL string
}

func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errs.NewConfigMissingError("S3_BUCKET")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errs.NewStorageUnavailableError(err)
	}

	return &S3Storage{
		bucket:     cfg.Bucket,
		publicBase: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		presigner:  s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
		logger:     log.With().Str("serviceName", "s3Storage").Logger(),
	}, nil
}

func (s *S3Storage) ResolveURL(ctx context.Context, fileKey string) (string, error) {
	if s.publicBase != "" {
		return s.publicBase + "/" + fileKey, nil
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileKey),
	}, s3.WithPresignExpires(signedURLTTL))
	if err != nil {
		s.logger.Warn().Err(err).Str("fileKey", fileKey).Msg("presign GET failed")
		return "", errs.NewSignURLError(fileKey, err)
	}
	return req.URL, nil
}

func (s *S3Storage) SignUpload(ctx context.Context, fileKey, mime string, sizeBytes int64) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(fileKey),
		ContentType:   aws.String(mime),
		ContentLength: aws.Int64(sizeBytes),
	}, s3.WithPresignExpires(signedURLTTL))
	if err != nil {
		s.logger.Warn().Err(err).Str("fileKey", fileKey).Msg("presign PUT failed")
		return "", errs.NewSignURLError(fileKey, err)
	}
	return req.URL, nil
}
