package s3

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

func newPresignClient() *s3.PresignClient {
	client := s3.NewFromConfig(aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	return s3.NewPresignClient(client)
}

type countingPresigner struct {
	calls int
	err   error
}

func (p *countingPresigner) PresignGetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/" + aws.ToString(params.Key)}, nil
}

func variant(path, id string) domain.Variant {
	v := domain.Variant{Year: "2001", ID: id}
	if path != "" {
		v.ImagePath = domain.Str(path)
	}
	return v
}

func TestResolve_Presign(t *testing.T) {
	r := New(newPresignClient(), Options{Bucket: "images", Prefix: "webp2", URLTTL: 15 * time.Minute}, nil)

	got, ok, err := r.Resolve(context.Background(), variant("t", "V123"))
	require.NoError(t, err)
	require.True(t, ok)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/webp2/V123.webp"), u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestResolve_CachesPresignedURLs(t *testing.T) {
	p := &countingPresigner{}
	r := New(p, Options{Bucket: "images", Prefix: "/webp2/"}, nil)

	for i := 0; i < 3; i++ {
		got, ok, err := r.Resolve(context.Background(), variant("t", "V1"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "https://signed.example.com/webp2/V1.webp", got)
	}
	assert.Equal(t, 1, p.calls)
}

func TestResolve_PresignError(t *testing.T) {
	r := New(&countingPresigner{err: errors.New("no credentials")}, Options{Bucket: "images"}, nil)
	_, ok, err := r.Resolve(context.Background(), variant("t", "V1"))
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestResolve_Rules(t *testing.T) {
	r := New(nil, Options{
		Prefix:          "webp2",
		PublicBaseURL:   "https://cdn.example.com/images/",
		FallbackBaseURL: "https://static.wikia.nocookie.net/hotwheels/images/",
	}, nil)

	tests := []struct {
		name   string
		v      domain.Variant
		want   string
		wantOK bool
	}{
		{"public base url", variant("t", "V9"), "https://cdn.example.com/images/webp2/V9.webp", true},
		{"absolute url passthrough", variant("https://img.example.com/a.png", "V9"), "https://img.example.com/a.png", true},
		{"legacy wiki path", variant("a/ab/Batmobile.jpg", ""), "https://static.wikia.nocookie.net/hotwheels/images/a/ab/Batmobile.jpg/revision/latest/scale-to-width-down/400", true},
		{"marker without id", variant("t", ""), "", false},
		{"no image", variant("", "V9"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := r.Resolve(context.Background(), tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_NoStorageConfigured(t *testing.T) {
	r, err := NewFromConfig(context.Background(), "us-east-1", Options{}, nil)
	require.NoError(t, err)

	_, ok, err := r.Resolve(context.Background(), variant("t", "V1"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.Resolve(context.Background(), variant("a/b.jpg", "V1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "webp2/V1.webp", New(nil, Options{Prefix: "webp2"}, nil).ObjectKey("V1"))
	assert.Equal(t, "V1.webp", New(nil, Options{}, nil).ObjectKey("V1"))
}
