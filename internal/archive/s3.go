// Package archive mirrors saved document snapshots to S3-compatible storage.
package archive

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/config"
	"github.com/dmitrijs2005/mindmap/internal/cryptox"
)

const (
	saltSize    = 16
	saltMetaKey = "salt"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// test seams
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig
	newS3Client          = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Archiver writes each snapshot to documents/<owner>/<document>.json,
// overwriting the previous copy. With a passphrase the body is sealed and
// the object key gets a .sealed suffix.
type S3Archiver struct {
	client     putObjectAPI
	bucket     string
	passphrase string
}

// NewS3Archiver returns nil, nil when no bucket is configured.
func NewS3Archiver(ctx context.Context, cfg config.S3Config) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3Client(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			// minio and friends
			o.UsePathStyle = true
		}
	})

	return &S3Archiver{client: client, bucket: cfg.Bucket, passphrase: cfg.Passphrase}, nil
}

// ObjectKey returns where the snapshot of documentID is stored.
func (a *S3Archiver) ObjectKey(ownerID, documentID string) string {
	key := fmt.Sprintf("documents/%s/%s.json", ownerID, documentID)
	if a.passphrase != "" {
		key += ".sealed"
	}
	return key
}

func (a *S3Archiver) Archive(ctx context.Context, ownerID, documentID string, content []byte) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.ObjectKey(ownerID, documentID)),
		ContentType: aws.String("application/json"),
	}

	body := content
	if a.passphrase != "" {
		salt := common.GenerateRandByteArray(saltSize)
		key := cryptox.DeriveArchiveKey([]byte(a.passphrase), salt)
		sealed, err := cryptox.Seal(content, key)
		common.WipeByteArray(key)
		if err != nil {
			return fmt.Errorf("seal snapshot %s: %w", documentID, err)
		}
		body = sealed
		in.ContentType = aws.String("application/octet-stream")
		in.Metadata = map[string]string{saltMetaKey: base64.StdEncoding.EncodeToString(salt)}
	}
	in.Body = bytes.NewReader(body)
	in.ContentLength = aws.Int64(int64(len(body)))

	if _, err := a.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("archive snapshot %s: %w", documentID, err)
	}
	return nil
}

// Unseal reverses the sealing applied by Archive, given the object body and
// its salt metadata.
func (a *S3Archiver) Unseal(body []byte, salt string) ([]byte, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("bad salt: %w", err)
	}
	key := cryptox.DeriveArchiveKey([]byte(a.passphrase), rawSalt)
	defer common.WipeByteArray(key)
	return cryptox.Open(body, key)
}
