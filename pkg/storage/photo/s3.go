package photo

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Options struct {
	Endpoint   string // empty for AWS, e.g. http://127.0.0.1:9000 for MinIO
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PublicBase string // base of the returned URL; defaults to Endpoint
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads photos to an S3-compatible bucket.
type S3Store struct {
	client     objectAPI
	bucket     string
	publicBase string
}

// NewS3Client builds a path-style client with static credentials.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	}), nil
}

func NewS3Store(client objectAPI, bucket, publicBase string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicBase: strings.TrimRight(publicBase, "/")}
}

func (s *S3Store) Save(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	name, contentType, err := objectName(filename, contentType, len(data))
	if err != nil {
		return "", err
	}
	key := "photos/" + name
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put photo object: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucket, key), nil
}

// Delete removes an object previously returned by Save.
func (s *S3Store) Delete(ctx context.Context, url string) error {
	name, err := nameFromURL(url, s.publicBase+"/"+s.bucket+"/photos")
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String("photos/" + name),
	})
	if err != nil {
		return fmt.Errorf("delete photo object: %w", err)
	}
	return nil
}
