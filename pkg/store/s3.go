package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

type s3Store struct {
	client  *s3.Client
	bucket  string
	account string
	logger  *slog.Logger
}

// NewS3 creates an S3 backed System. A custom endpoint switches the client to path-style
// addressing for MinIO and LocalStack.
func NewS3(ctx context.Context, cfg *S3Config, account string, logger *slog.Logger) (System, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Store{
		client:  client,
		bucket:  cfg.Bucket,
		account: account,
		logger:  logger.With("system", "store", "backend", "s3"),
	}, nil
}

func (s *s3Store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system")

	lc.OnStartup(func() {
		_, err := s.client.HeadBucket(lc.Context(), &s3.HeadBucketInput{
			Bucket: aws.String(s.bucket),
		})
		if err != nil {
			s.logger.Error("storage bucket check failed", "bucket", s.bucket, "error", err)
			return
		}
		s.logger.Info("storage bucket ready", "bucket", s.bucket)
	})

	return nil
}

func (s *s3Store) ListChildren(ctx context.Context, folder FolderID) ([]Item, error) {
	prefix, err := prefixOf(folder)
	if err != nil {
		return nil, err
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var items []Item
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects %q: %w", prefix, err)
		}

		for _, p := range page.CommonPrefixes {
			id := strings.TrimSuffix(aws.ToString(p.Prefix), "/")
			items = append(items, Item{ID: id, Name: lastSegment(id), Kind: KindFolder})
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if path.Base(key) == folderMarker || strings.HasSuffix(key, "/") {
				continue
			}
			items = append(items, Item{
				ID:      key,
				Name:    lastSegment(key),
				Kind:    KindFile,
				Version: objectVersion(obj),
			})
		}
	}

	return items, nil
}

func (s *s3Store) CreateFolder(ctx context.Context, parent FolderID, name string) (FolderID, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	folderPath, err := childPath(parent, name)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path.Join(folderPath, folderMarker)),
		Body:        bytes.NewReader(nil),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if isS3Conflict(err) {
			return "", &ConflictError{Name: name, ExistingID: FolderID(folderPath), Err: err}
		}
		return "", fmt.Errorf("create folder %s: %w", folderPath, err)
	}

	return FolderID(folderPath), nil
}

func (s *s3Store) ReadText(ctx context.Context, file FileID) (string, error) {
	key := string(file)
	if key == "" {
		return "", ErrEmptyName
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read object %s: %w", key, err)
	}

	return ExtractText(ctx, key, data)
}

func (s *s3Store) WriteFile(ctx context.Context, folder FolderID, name string, data []byte) (FileID, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	key, err := childPath(folder, name)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeOf(name)),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return FileID(key), nil
}

func (s *s3Store) CurrentAccount(ctx context.Context) (string, error) {
	return s.account, nil
}

// objectVersion combines the modification time with the ETag. The ETag alone is a
// content hash and repeats when identical bytes are uploaded again.
func objectVersion(obj types.Object) string {
	etag := strings.Trim(aws.ToString(obj.ETag), `"`)
	if obj.LastModified == nil {
		return etag
	}
	return strconv.FormatInt(obj.LastModified.UnixNano(), 36) + "-" + etag
}

func isS3Conflict(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
