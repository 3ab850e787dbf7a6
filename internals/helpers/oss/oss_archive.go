package helper

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/rs/zerolog/log"

	"polopay_backend/internals/configs"
)

/* =======================================================================
   Document archive on Aliyun OSS
======================================================================= */

type OSSArchive struct {
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string
}

// NewOSSArchiveFromEnv returns (nil, nil) when ALI_OSS_* is incomplete so
// callers can run without an archive.
func NewOSSArchiveFromEnv(prefix string) (*OSSArchive, error) {
	endpoint := normalizeEndpoint(configs.GetEnv("ALI_OSS_ENDPOINT"))
	ak := configs.GetEnv("ALI_OSS_ACCESS_KEY")
	sk := configs.GetEnv("ALI_OSS_SECRET_KEY")
	sts := configs.GetEnv("ALI_OSS_SECURITY_TOKEN")
	bucketName := configs.GetEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		log.Warn().Msg("ALI_OSS_* incomplete, document archive disabled")
		return nil, nil
	}

	var opts []oss.ClientOption
	if sts != "" {
		opts = append(opts, oss.SecurityToken(sts))
	}
	client, err := oss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	return &OSSArchive{
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		Prefix:     strings.Trim(prefix, "/"),
	}, nil
}

// Put stores data under <prefix>/<name> and returns the object URL.
func (a *OSSArchive) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := name
	if a.Prefix != "" {
		key = a.Prefix + "/" + strings.TrimLeft(name, "/")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	err := a.Bucket.PutObject(key, bytes.NewReader(data),
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.Meta("archived-at", time.Now().UTC().Format(time.RFC3339)),
	)
	if err != nil {
		return "", fmt.Errorf("oss put %s: %w", key, err)
	}
	return a.PublicURL(key), nil
}

func (a *OSSArchive) PublicURL(key string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(a.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", a.BucketName, host, key)
}

func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	if ep == "" {
		return ep
	}
	if strings.HasPrefix(ep, "http://") || strings.HasPrefix(ep, "https://") {
		return ep
	}
	return "https://" + ep
}
