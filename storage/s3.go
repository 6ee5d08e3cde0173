package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Store keeps blobs in a bucket. Objects are keyed by blob name.
type S3Store struct {
	bucket     string
	publicBase string
	uploader   s3manageriface.UploaderAPI
	svc        s3iface.S3API
}

func NewS3Store(region, bucket, publicBase string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return newS3Store(bucket, publicBase, s3manager.NewUploader(sess), s3.New(sess)), nil
}

func newS3Store(bucket, publicBase string, uploader s3manageriface.UploaderAPI, svc s3iface.S3API) *S3Store {
	return &S3Store{
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		uploader:   uploader,
		svc:        svc,
	}
}

func (s *S3Store) Store(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s: %w", name, err)
	}
	if s.publicBase != "" {
		return s.publicBase + "/" + name, nil
	}
	return out.Location, nil
}

func (s *S3Store) Delete(ctx context.Context, rawURL string) error {
	key, err := s.keyFromURL(rawURL)
	if err != nil {
		return err
	}
	_, err = s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// keyFromURL accepts public-base URLs and both virtual-hosted and path-style S3 URLs.
func (s *S3Store) keyFromURL(rawURL string) (string, error) {
	if s.publicBase != "" {
		if key, ok := strings.CutPrefix(rawURL, s.publicBase+"/"); ok && validName(key) {
			return key, nil
		}
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(u.Path, "/")
	key = strings.TrimPrefix(key, s.bucket+"/")
	if !validName(key) {
		return "", ErrForeignURL
	}
	return key, nil
}
