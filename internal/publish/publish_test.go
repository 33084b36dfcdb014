package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/config"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix, path, want string
	}{
		{"", "public/ads/ad.mp4", "ad.mp4"},
		{"ads", "public/ads/ad.mp4", "ads/ad.mp4"},
		{"/campaigns/j9/", "ad.mp4", "campaigns/j9/ad.mp4"},
	}
	for _, tt := range tests {
		p := newS3Publisher(&fakePutter{}, "bucket", tt.prefix, zerolog.Nop())
		if got := p.Key(tt.path); got != tt.want {
			t.Errorf("Key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestPublish(t *testing.T) {
	local := filepath.Join(t.TempDir(), "viral.mp4")
	if err := os.WriteFile(local, []byte("mp4"), 0644); err != nil {
		t.Fatal(err)
	}

	fake := &fakePutter{}
	p := newS3Publisher(fake, "promo", "out", zerolog.Nop())
	uri, err := p.Publish(context.Background(), local)
	if err != nil {
		t.Fatal(err)
	}
	if uri != "s3://promo/out/viral.mp4" {
		t.Errorf("uri = %s", uri)
	}
	if aws.ToString(fake.in.Bucket) != "promo" || aws.ToString(fake.in.Key) != "out/viral.mp4" {
		t.Errorf("put to %s/%s", aws.ToString(fake.in.Bucket), aws.ToString(fake.in.Key))
	}
	if aws.ToString(fake.in.ContentType) != "video/mp4" {
		t.Errorf("content type = %s", aws.ToString(fake.in.ContentType))
	}
	if string(fake.body) != "mp4" {
		t.Errorf("body = %q", fake.body)
	}
}

func TestPublishErrors(t *testing.T) {
	p := newS3Publisher(&fakePutter{err: errors.New("denied")}, "promo", "", zerolog.Nop())
	if _, err := p.Publish(context.Background(), filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("missing file should fail")
	}

	local := filepath.Join(t.TempDir(), "a.mp4")
	os.WriteFile(local, nil, 0644)
	if _, err := p.Publish(context.Background(), local); err == nil {
		t.Error("upload error should be returned")
	}
}

func TestNewS3WithoutBucket(t *testing.T) {
	p, err := NewS3(context.Background(), config.PublishConfig{}, zerolog.Nop())
	if err != nil || p != nil {
		t.Errorf("NewS3 without bucket = %v, %v", p, err)
	}
}
