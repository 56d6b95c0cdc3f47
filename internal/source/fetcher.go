package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"
)

// LoadError reports a failed fetch, after retries for transient causes.
type LoadError struct {
	Locator string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %v", e.Locator, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// S3Options carries optional overrides for s3:// locators.
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// FetcherConfig bounds fetch behavior.
type FetcherConfig struct {
	Timeout      time.Duration // per attempt
	Retries      int           // extra attempts after the first, transient failures only
	Backoff      time.Duration // doubled per retry
	CacheTTL     time.Duration // 0 disables the cache
	CacheEntries int
	S3           S3Options
}

// Fetcher loads bytes behind resolved locators. Safe for concurrent use;
// concurrent fetches of the same locator collapse to one in-flight call.
type Fetcher struct {
	cfg    FetcherConfig
	client *http.Client
	cache  *cache
	group  singleflight.Group
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	f := &Fetcher{
		cfg:    cfg,
		client: &http.Client{},
	}
	if cfg.CacheTTL > 0 {
		f.cache = newCache(cfg.CacheTTL, cfg.CacheEntries)
	}
	return f
}

// Fetch returns the raw bytes behind loc. Transient failures (network
// error, 5xx) are retried with backoff; permanent ones (4xx, missing file)
// fail immediately. On cancellation no partial bytes are returned.
func (f *Fetcher) Fetch(ctx context.Context, loc Locator) ([]byte, error) {
	if f.cache == nil {
		return f.fetch(ctx, loc)
	}
	if data, ok := f.cache.get(loc.Address); ok {
		return data, nil
	}
	v, err, _ := f.group.Do(loc.Address, func() (any, error) {
		if data, ok := f.cache.get(loc.Address); ok {
			return data, nil
		}
		data, err := f.fetch(ctx, loc)
		if err != nil {
			return nil, err
		}
		f.cache.put(loc.Address, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (f *Fetcher) fetch(ctx context.Context, loc Locator) ([]byte, error) {
	switch loc.Scheme {
	case SchemeHTTP:
		return f.fetchHTTP(ctx, loc.Address)
	case SchemeS3:
		return f.fetchS3(ctx, loc.Address)
	default:
		return f.fetchFile(loc.Address)
	}
}

func (f *Fetcher) fetchFile(address string) ([]byte, error) {
	data, err := os.ReadFile(strings.TrimPrefix(address, "file://"))
	if err != nil {
		return nil, &LoadError{Locator: address, Err: err}
	}
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		data, retryable, err := f.httpGet(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable || attempt >= f.cfg.Retries {
			return nil, &LoadError{Locator: url, Err: lastErr}
		}
		wait := f.cfg.Backoff << attempt
		slog.Warn("source: transient fetch failure, retrying",
			"url", url, "attempt", attempt+1, "backoff", wait, "err", err)
		select {
		case <-ctx.Done():
			return nil, &LoadError{Locator: url, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}
}

func (f *Fetcher) httpGet(ctx context.Context, url string) (data []byte, retryable bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		// Connection reset, timeout, DNS: worth another try unless the
		// caller itself was cancelled.
		return nil, ctx.Err() == nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	return data, false, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, address string) ([]byte, error) {
	bucket, key, err := splitS3Address(address)
	if err != nil {
		return nil, &LoadError{Locator: address, Err: err}
	}

	client, err := f.s3Client(ctx)
	if err != nil {
		return nil, &LoadError{Locator: address, Err: err}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	resp, err := client.GetObject(attemptCtx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &LoadError{Locator: address, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{Locator: address, Err: err}
	}
	return data, nil
}

func splitS3Address(address string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(address, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("want s3://bucket/key, got %q", address)
	}
	return parts[0], parts[1], nil
}

func (f *Fetcher) s3Client(ctx context.Context) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if f.cfg.S3.Region != "" {
		opts = append(opts, awsconfig.WithRegion(f.cfg.S3.Region))
	}
	if f.cfg.S3.AccessKey != "" && f.cfg.S3.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(f.cfg.S3.AccessKey, f.cfg.S3.SecretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if f.cfg.S3.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(f.cfg.S3.Endpoint)
			o.UsePathStyle = true // s3-compatible services
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}
