// Package mojang talks to the public game distribution service: the version
// manifest, client manifests, asset indexes and the content-addressed
// resource store.
package mojang

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jpillora/backoff"

	"github.com/heartmarshall/mclang/internal/domain"
	"github.com/heartmarshall/mclang/internal/metrics"
)

const (
	DefaultManifestURL  = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	DefaultResourcesURL = "https://resources.download.minecraft.net"

	defaultTimeout     = 60 * time.Second
	defaultMaxAttempts = 3
	defaultRetryMin    = 5 * time.Second
	defaultRetryMax    = 15 * time.Second
)

// Config holds client settings. Zero values fall back to defaults.
type Config struct {
	ManifestURL  string
	ResourcesURL string
	Timeout      time.Duration
	MaxAttempts  int
	RetryMin     time.Duration
	RetryMax     time.Duration
}

// Client fetches metadata and files from the distribution service.
type Client struct {
	manifestURL  string
	resourcesURL string
	httpClient   *http.Client
	maxAttempts  int
	retryMin     time.Duration
	retryMax     time.Duration
	metrics      *metrics.Metrics
	log          *slog.Logger
}

// NewClient creates a Client. m may be nil.
func NewClient(logger *slog.Logger, cfg Config, m *metrics.Metrics) *Client {
	if cfg.ManifestURL == "" {
		cfg.ManifestURL = DefaultManifestURL
	}
	if cfg.ResourcesURL == "" {
		cfg.ResourcesURL = DefaultResourcesURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryMin <= 0 {
		cfg.RetryMin = defaultRetryMin
	}
	if cfg.RetryMax < cfg.RetryMin {
		cfg.RetryMax = max(defaultRetryMax, cfg.RetryMin)
	}
	return &Client{
		manifestURL:  cfg.ManifestURL,
		resourcesURL: strings.TrimRight(cfg.ResourcesURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		maxAttempts:  cfg.MaxAttempts,
		retryMin:     cfg.RetryMin,
		retryMax:     cfg.RetryMax,
		metrics:      m,
		log:          logger.With("adapter", "mojang"),
	}
}

// ResourceURL returns where the object with the given hash is stored. The
// hash must be a hex SHA-1 digest; anything else wraps
// domain.ErrMalformedSource.
func (c *Client) ResourceURL(hash string) (string, error) {
	if len(hash) != sha1.Size*2 {
		return "", fmt.Errorf("asset hash %q: want %d hex digits: %w", hash, sha1.Size*2, domain.ErrMalformedSource)
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return "", fmt.Errorf("asset hash %q: %w", hash, domain.ErrMalformedSource)
	}
	return c.resourcesURL + "/" + hash[:2] + "/" + hash, nil
}

// Manifest fetches the version manifest.
func (c *Client) Manifest(ctx context.Context) (*Manifest, error) {
	var m Manifest
	if err := c.getJSON(ctx, c.manifestURL, &m); err != nil {
		return nil, fmt.Errorf("mojang: manifest: %w", err)
	}
	return &m, nil
}

// VersionDetails fetches the client manifest at url.
func (c *Client) VersionDetails(ctx context.Context, url string) (*VersionDetails, error) {
	var v VersionDetails
	if err := c.getJSON(ctx, url, &v); err != nil {
		return nil, fmt.Errorf("mojang: version details: %w", err)
	}
	return &v, nil
}

// AssetIndex fetches the asset index at url.
func (c *Client) AssetIndex(ctx context.Context, url string) (*AssetIndex, error) {
	var a AssetIndex
	if err := c.getJSON(ctx, url, &a); err != nil {
		return nil, fmt.Errorf("mojang: asset index: %w", err)
	}
	return &a, nil
}

// Download fetches url into dest and verifies its SHA-1 against wantSHA1.
// dest only appears once the content is verified. Transient failures
// (network errors, 5xx, checksum mismatch) are retried with backoff.
// Returns the number of bytes written.
func (c *Client) Download(ctx context.Context, url, wantSHA1, dest string) (int64, error) {
	var n int64
	err := c.withRetry(ctx, url, func() error {
		var err error
		n, err = c.downloadOnce(ctx, url, strings.ToLower(wantSHA1), dest)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("mojang: download %s: %w", url, err)
	}

	c.metrics.AddDownloadBytes(n)
	c.log.InfoContext(ctx, "downloaded",
		slog.String("file", filepath.Base(dest)),
		slog.String("size", humanize.Bytes(uint64(n))),
	)
	return n, nil
}

func (c *Client) downloadOnce(ctx context.Context, url, wantSHA1, dest string) (int64, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return writeFileAtomic(dest, func(w io.Writer) (int64, error) {
		h := sha1.New()
		n, err := io.Copy(io.MultiWriter(w, h), resp.Body)
		if err != nil {
			return n, retryable(fmt.Errorf("read body: %w", err))
		}
		if gotSHA1 := hex.EncodeToString(h.Sum(nil)); gotSHA1 != wantSHA1 {
			return n, retryable(&domain.ChecksumError{Source: filepath.Base(dest), Want: wantSHA1, Got: gotSHA1})
		}
		return n, nil
	})
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	return c.withRetry(ctx, url, func() error {
		resp, err := c.get(ctx, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retryable(fmt.Errorf("read body: %w", err))
		}
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
		return nil
	})
}

// get issues a GET and returns the response only for status 200. Network
// errors and 5xx are marked retryable.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.log.DebugContext(ctx, "mojang request", slog.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retryable(err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		err := &StatusError{URL: url, Code: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, retryable(err)
		}
		return nil, err
	}
	return resp, nil
}

// withRetry runs fn until it succeeds, fails permanently, or the attempt
// budget is spent.
func (c *Client) withRetry(ctx context.Context, url string, fn func() error) error {
	b := &backoff.Backoff{
		Min:    c.retryMin,
		Max:    c.retryMax,
		Factor: 3,
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) || attempt >= c.maxAttempts {
			break
		}

		wait := b.Duration()
		c.log.WarnContext(ctx, "mojang retry",
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", wait),
			slog.String("reason", err.Error()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return unwrapRetryable(err)
}

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Is maps 404 to domain.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrNotFound && e.Code == http.StatusNotFound
}

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func retryable(err error) error { return &retryableError{err: err} }

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

func unwrapRetryable(err error) error {
	var re *retryableError
	if errors.As(err, &re) {
		return re.err
	}
	return err
}

// writeFileAtomic streams into a temp file next to dest and renames it into
// place only when write succeeds.
func writeFileAtomic(dest string, write func(io.Writer) (int64, error)) (n int64, err error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if n, err = write(tmp); err != nil {
		return n, err
	}
	if err = tmp.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return n, fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return n, fmt.Errorf("rename to %s: %w", dest, err)
	}
	return n, nil
}
