package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "profilePhotos/1_me.png", want: "profilePhotos/1_me.png"},
		{name: "simple prefix", prefix: "builder", key: "profilePhotos/1_me.png", want: "builder/profilePhotos/1_me.png"},
		{name: "slashes trimmed", prefix: "/builder/", key: "/templates/classic/imageUrl", want: "builder/templates/classic/imageUrl"},
		{name: "nested prefix", prefix: "env/prod", key: "templates/modern/imageUrl", want: "env/prod/templates/modern/imageUrl"},
		{name: "empty key", prefix: "builder", key: "", want: "builder"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestPresignPutSignsHostAndContentType(t *testing.T) {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	presigner := s3.NewPresignClient(s3.NewFromConfig(cfg))

	out, err := presigner.PresignPutObject(context.Background(), presignPutInput("bucket", "builder/profilePhotos/1_me.png", "image/png"))
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	parsed, err := url.Parse(out.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	signed := parsed.Query().Get("X-Amz-SignedHeaders")
	if !strings.Contains(signed, "host") {
		t.Fatalf("expected host in signed headers: %s", signed)
	}
	if !strings.Contains(signed, "content-type") {
		t.Fatalf("expected content-type in signed headers: %s", signed)
	}
	if strings.Contains(signed, "content-length") {
		t.Fatalf("unexpected content-length in signed headers: %s", signed)
	}
	if !strings.HasSuffix(parsed.Path, "/builder/profilePhotos/1_me.png") {
		t.Fatalf("unexpected path %s", parsed.Path)
	}
}
