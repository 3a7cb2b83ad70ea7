package storage

import (
	"strings"

	"github.com/ioann7/api-yatube/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Bucket describes a S3 (or S3 compatible) bucket holding the media files
type Bucket struct {
	Name     string
	Region   string
	Endpoint string
	Key      string
	Secret   string
	Prefix   string // prepended to every object key
}

func BucketFromConfig() Bucket {
	return Bucket{
		Name:     config.S3_BUCKET,
		Region:   config.S3_REGION,
		Endpoint: config.S3_ENDPOINT,
		Key:      config.S3_KEY,
		Secret:   config.S3_SECRET,
		Prefix:   config.S3_PREFIX,
	}
}

func (b *Bucket) CreateSVC() *s3.S3 {
	cfg := aws.NewConfig().WithRegion(b.Region)
	if b.Key != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(b.Key, b.Secret, ""))
	}
	if b.Endpoint != "" {
		cfg = cfg.WithEndpoint(b.Endpoint).WithS3ForcePathStyle(true)
	}
	sess := session.Must(session.NewSession(cfg))
	return s3.New(sess)
}

func (b *Bucket) GetRemotePath(path string) string {
	if b.Prefix == "" {
		return path
	}
	return strings.TrimSuffix(b.Prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}
