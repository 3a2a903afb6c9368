package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/metrics"
	"github.com/sony/gobreaker"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// S3Config carries connection settings for S3Store.
type S3Config struct {
	Region              string
	AccessKey           string
	SecretKey           string
	Bucket              string
	BaseEndpoint        string
	UploadURLValidity   time.Duration
	DownloadURLValidity time.Duration

	// Breaker settings; zero values take the defaults below.
	BreakerMaxRequests uint32
	BreakerTimeout     time.Duration
}

// S3Store implements ObjectStore over an S3-compatible endpoint. Calls that
// reach the network go through a circuit breaker.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	upload  time.Duration
	expire  time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
	now     func() time.Time
}

func NewS3Store(ctx context.Context, cfg S3Config, logger logging.Logger, m *metrics.Metrics) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	logger = logger.With("module", "storage")

	return &S3Store{
		client:  client,
		presign: newS3PresignClient(client),
		bucket:  cfg.Bucket,
		upload:  cfg.UploadURLValidity,
		expire:  cfg.DownloadURLValidity,
		breaker: newBreaker("s3", cfg.BreakerMaxRequests, cfg.BreakerTimeout, logger, m),
		logger:  logger,
		now:     time.Now,
	}, nil
}

func newBreaker(name string, maxRequests uint32, timeout time.Duration, logger logging.Logger, m *metrics.Metrics) *gobreaker.CircuitBreaker {
	if maxRequests == 0 {
		maxRequests = 3
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				"circuit_breaker", name, "from_state", from.String(), "to_state", to.String())
			m.BreakerState(name, int(to))
		},
	})
}

func (s *S3Store) GenerateUploadURL(ctx context.Context) (*UploadTicket, error) {
	now := s.now()
	key := NewObjectKey(now)

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.upload))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &UploadTicket{ObjectID: key, URL: req.URL, ExpiresAt: now.Add(s.upload)}, nil
}

func (s *S3Store) GetURL(ctx context.Context, objectID string) (*string, error) {
	exists, err := s.exists(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectID),
	}, s3.WithPresignExpires(s.expire))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	return &req.URL, nil
}

// exists reports whether the object is present. A missing object is a
// successful call as far as the breaker is concerned.
func (s *S3Store) exists(ctx context.Context, objectID string) (bool, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		_, err := headObject(s.client, ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectID),
		})
		if err != nil {
			if isNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, fmt.Errorf("head object: %w", err)
	}
	return res.(bool), nil
}

func (s *S3Store) Delete(ctx context.Context, objectID string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return deleteObject(s.client, ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectID),
		})
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
