package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible providers; empty for AWS
	AccessKey string
	SecretKey string
	PublicURL string // defaults to https://<bucket>.s3.<region>.amazonaws.com
}

// S3 puts public-read objects into a bucket, behind a circuit breaker.
type S3 struct {
	api    s3iface.S3API
	cfg    S3Config
	cb     *gobreaker.CircuitBreaker
	logger *logrus.Logger
}

func NewS3(cfg S3Config, logger *logrus.Logger) (*S3, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return NewS3WithAPI(s3.New(sess), cfg, logger), nil
}

func NewS3WithAPI(api s3iface.S3API, cfg S3Config, logger *logrus.Logger) *S3 {
	if cfg.PublicURL == "" {
		cfg.PublicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3{api: api, cfg: cfg, cb: newBreaker("s3-upload", logger), logger: logger}
}

func (s *S3) Put(ctx context.Context, obj Object) (string, error) {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.cfg.Bucket),
			Key:           aws.String(obj.Key),
			Body:          reader(obj.Body),
			ContentLength: aws.Int64(int64(len(obj.Body))),
			ContentType:   aws.String(obj.ContentType),
			ACL:           aws.String(s3.ObjectCannedACLPublicRead),
		})
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %w", err)
	}
	return fmt.Sprintf("%s/%s", s.cfg.PublicURL, obj.Key), nil
}

// newBreaker opens after three consecutive failures and probes again after 10s.
func newBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	})
}
