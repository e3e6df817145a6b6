package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the object store connection settings for s3:// URLs.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Insecure  bool
}

// S3ConfigFromEnv reads MCSTARTER_S3_* variables. The endpoint defaults to
// AWS.
func S3ConfigFromEnv() S3Config {
	insecure, _ := strconv.ParseBool(os.Getenv("MCSTARTER_S3_INSECURE"))
	return S3Config{
		Endpoint:  os.Getenv("MCSTARTER_S3_ENDPOINT"),
		Region:    os.Getenv("MCSTARTER_S3_REGION"),
		AccessKey: os.Getenv("MCSTARTER_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("MCSTARTER_S3_SECRET_KEY"),
		Insecure:  insecure,
	}
}

// S3Fetcher downloads s3://bucket/key URLs with minio-go. The client is
// created on first use.
type S3Fetcher struct {
	Config  S3Config
	MaxSize int64

	once    sync.Once
	client  *minio.Client
	initErr error
}

func (s *S3Fetcher) Fetch(ctx context.Context, artifact, rawURL string) ([]byte, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: err}
	}

	client, err := s.getClient()
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: err, Hint: "set MCSTARTER_S3_ENDPOINT and credentials"}
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: err}
	}
	defer obj.Close()

	data, err := readLimited(obj, s.MaxSize, artifact, rawURL)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			var resp minio.ErrorResponse
			if errors.As(fe.Err, &resp) && (resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket") {
				fe.Hint = "object not found"
			}
		}
		return nil, err
	}
	return data, nil
}

func (s *S3Fetcher) getClient() (*minio.Client, error) {
	s.once.Do(func() {
		cfg := s.Config
		endpoint := strings.TrimSpace(cfg.Endpoint)
		if endpoint == "" {
			endpoint = "s3.amazonaws.com"
		}
		region := strings.TrimSpace(cfg.Region)
		if region == "" {
			region = "us-east-1"
		}
		s.client, s.initErr = minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: !cfg.Insecure,
			Region: region,
		})
		if s.initErr != nil {
			s.initErr = fmt.Errorf("init s3 client: %w", s.initErr)
		}
	})
	return s.client, s.initErr
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("not an s3 url")
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url must be s3://bucket/key")
	}
	return bucket, key, nil
}
