package cloud

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const presignTTL = time.Hour

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	s3.ListObjectsV2APIClient
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Client archives uploaded files and generated reports, keyed by dataset.
type S3Client struct {
	svc     s3API
	presign presignAPI
	bucket  string
}

func NewS3Client(ctx context.Context, region, bucket string) (*S3Client, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	svc := s3.NewFromConfig(cfg)
	return &S3Client{svc: svc, presign: s3.NewPresignClient(svc), bucket: bucket}, nil
}

func reportKey(datasetID int64, name string) string {
	return fmt.Sprintf("reports/%d/%s", datasetID, name)
}

func uploadKey(datasetID int64, name string) string {
	return fmt.Sprintf("uploads/%d/%s", datasetID, name)
}

// ArchiveReport stores a rendered report and returns a presigned download URL.
func (c *S3Client) ArchiveReport(ctx context.Context, datasetID int64, name string, body []byte) (string, error) {
	key := reportKey(datasetID, name)
	if err := c.put(ctx, key, datasetID, body, "application/pdf"); err != nil {
		return "", err
	}

	res, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return res.URL, nil
}

// ArchiveUpload keeps the raw uploaded file next to the dataset's reports.
func (c *S3Client) ArchiveUpload(ctx context.Context, datasetID int64, name string, raw []byte) error {
	return c.put(ctx, uploadKey(datasetID, name), datasetID, raw, "application/octet-stream")
}

func (c *S3Client) put(ctx context.Context, key string, datasetID int64, body []byte, contentType string) error {
	_, err := c.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"dataset-id": strconv.FormatInt(datasetID, 10),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return nil
}

// DeleteDatasetObjects removes every archived object of the dataset.
func (c *S3Client) DeleteDatasetObjects(ctx context.Context, datasetID int64) error {
	for _, prefix := range []string{reportKey(datasetID, ""), uploadKey(datasetID, "")} {
		keys, err := c.list(ctx, prefix)
		if err != nil {
			return err
		}
		// DeleteObjects accepts at most 1000 keys per call
		for start := 0; start < len(keys); start += 1000 {
			end := min(start+1000, len(keys))
			ids := make([]types.ObjectIdentifier, 0, end-start)
			for _, k := range keys[start:end] {
				ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
			}
			_, err := c.svc.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(c.bucket),
				Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return fmt.Errorf("failed to delete from S3: %w", err)
			}
		}
	}
	return nil
}

func (c *S3Client) list(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(c.svc, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}
