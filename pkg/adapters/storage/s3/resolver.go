// Package s3 resolves variant image markers to fetchable URLs backed by an
// S3-compatible bucket, with a passthrough for absolute URLs and a fallback
// for legacy wiki image paths.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/patrickmn/go-cache"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/metrics"
)

// ImageMarker means "an image is stored under the variant id".
const ImageMarker = "t"

const legacySuffix = "/revision/latest/scale-to-width-down/400"

// Presigner is the subset of *s3.PresignClient the resolver needs.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Options struct {
	Bucket          string
	Prefix          string
	PublicBaseURL   string
	FallbackBaseURL string
	URLTTL          time.Duration
}

type Resolver struct {
	presign Presigner
	opts    Options
	cache   *cache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New builds a resolver. presign may be nil when a public base URL is used
// or no bucket is configured.
func New(presign Presigner, opts Options, m *metrics.Metrics) *Resolver {
	if opts.URLTTL <= 0 {
		opts.URLTTL = time.Hour
	}
	opts.Prefix = strings.Trim(opts.Prefix, "/")
	// Cached URLs expire well before their signature does.
	ttl := opts.URLTTL / 2
	return &Resolver{
		presign: presign,
		opts:    opts,
		cache:   cache.New(ttl, ttl*2),
		metrics: m,
		logger:  logging.ForModule("images"),
	}
}

// NewFromConfig loads the default AWS configuration for region. Without a
// bucket no S3 client is created.
func NewFromConfig(ctx context.Context, region string, opts Options, m *metrics.Metrics) (*Resolver, error) {
	if opts.Bucket == "" || opts.PublicBaseURL != "" {
		return New(nil, opts, m), nil
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return New(s3.NewPresignClient(s3.NewFromConfig(cfg)), opts, m), nil
}

// ObjectKey returns the storage key of a variant's image.
func (r *Resolver) ObjectKey(variantID string) string {
	if r.opts.Prefix == "" {
		return variantID + ".webp"
	}
	return r.opts.Prefix + "/" + variantID + ".webp"
}

// Resolve maps a variant to its image URL:
//   - an absolute http(s) path is returned as is,
//   - the marker "t" resolves to the object stored under the variant id,
//   - any other path is a legacy wiki image path.
func (r *Resolver) Resolve(ctx context.Context, v domain.Variant) (string, bool, error) {
	path, _ := v.Attr(domain.VariantImagePath)
	switch {
	case path == "":
		r.metrics.ObserveImageResolution("none")
		return "", false, nil
	case strings.HasPrefix(path, "http"):
		r.metrics.ObserveImageResolution("passthrough")
		return path, true, nil
	case path == ImageMarker:
		if v.ID == "" {
			r.metrics.ObserveImageResolution("none")
			return "", false, nil
		}
		return r.stored(ctx, v.ID)
	default:
		if r.opts.FallbackBaseURL == "" {
			r.metrics.ObserveImageResolution("none")
			return "", false, nil
		}
		r.metrics.ObserveImageResolution("legacy")
		return r.opts.FallbackBaseURL + strings.TrimPrefix(path, "/") + legacySuffix, true, nil
	}
}

func (r *Resolver) stored(ctx context.Context, variantID string) (string, bool, error) {
	key := r.ObjectKey(variantID)

	if r.opts.PublicBaseURL != "" {
		r.metrics.ObserveImageResolution("public")
		return strings.TrimRight(r.opts.PublicBaseURL, "/") + "/" + key, true, nil
	}
	if r.presign == nil || r.opts.Bucket == "" {
		r.metrics.ObserveImageResolution("none")
		return "", false, nil
	}

	if v, found := r.cache.Get(key); found {
		if url, ok := v.(string); ok {
			r.metrics.ObserveImageResolution("cache")
			return url, true, nil
		}
	}

	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.opts.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.opts.URLTTL))
	if err != nil {
		r.metrics.ObserveImageResolution("error")
		logging.FromContext(ctx, r.logger).Warn("presign failed", "key", key, "error", err)
		return "", false, fmt.Errorf("failed to sign request: %w", err)
	}

	r.cache.Set(key, req.URL, cache.DefaultExpiration)
	r.metrics.ObserveImageResolution("presign")
	return req.URL, true, nil
}
