package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/eventdrop/internal/logging"
	sc "github.com/dmitrijs2005/eventdrop/internal/server/config"
	"github.com/dmitrijs2005/eventdrop/internal/sizex"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// s3API is the subset of *s3.Client used by S3Storage.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutObjectAcl(ctx context.Context, in *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Storage keeps events in an S3-compatible bucket. A folder is the key
// prefix "{root}/{uuid}/" holding a marker object; files are stored under
// "{folder}/{uuid}/{name}" and their id is the object key.
type S3Storage struct {
	client        s3API
	bucket        string
	root          string
	trash         string
	acl           string
	publicBaseURL string
	limit         int64
	logger        logging.Logger
}

func NewS3Storage(ctx context.Context, cfg *sc.Config, logger logging.Logger) (*S3Storage, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			// MinIO and most self-hosted backends do not serve virtual-host buckets.
			o.UsePathStyle = true
		}
	})

	logger = logger.With("module", "storage", "driver", sc.StorageDriverS3)

	limit, err := sizex.Parse(cfg.StorageLimit)
	if err != nil {
		logger.Warn(ctx, "storage limit is not a size, reporting 0", "value", cfg.StorageLimit, "error", err)
		limit = 0
	}

	return &S3Storage{
		client:        client,
		bucket:        cfg.S3Bucket,
		root:          strings.Trim(cfg.StorageRootFolder, "/"),
		trash:         strings.Trim(cfg.StorageTrashFolder, "/"),
		acl:           cfg.S3ObjectACL,
		publicBaseURL: strings.TrimRight(cfg.PublicURL(), "/"),
		limit:         limit,
		logger:        logger,
	}, nil
}

func (s *S3Storage) CreateFolder(ctx context.Context, name string) (string, error) {
	folderID := path.Join(s.root, uuid.NewString())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(folderID + "/" + folderMarker),
		Body:        strings.NewReader(name),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	s.logger.Debug(ctx, "folder created", "folder_id", folderID, "name", name)
	return folderID, nil
}

func (s *S3Storage) DeleteFolder(ctx context.Context, folderID string) error {
	if strings.Trim(folderID, "/") == "" {
		return errors.New("delete folder: empty folder id")
	}

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(strings.TrimRight(folderID, "/") + "/"),
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list folder: %w", err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete objects: %w", err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return fmt.Errorf("delete objects: %d failed, first %s: %s",
				len(out.Errors), aws.ToString(e.Key), aws.ToString(e.Message))
		}
	}
	return nil
}

func (s *S3Storage) UploadFile(ctx context.Context, folderID, name, mimeType string, r io.Reader, size int64) (string, error) {
	key := path.Join(folderID, uuid.NewString(), name)

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	}
	if mimeType != "" {
		in.ContentType = aws.String(mimeType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

// GrantPublicRead applies the configured canned ACL. With no ACL configured
// it does nothing and the bucket policy decides visibility.
func (s *S3Storage) GrantPublicRead(ctx context.Context, fileID string) error {
	if s.acl == "" {
		return nil
	}
	_, err := s.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileID),
		ACL:    types.ObjectCannedACL(s.acl),
	})
	if err != nil {
		return fmt.Errorf("put object acl: %w", err)
	}
	return nil
}

func (s *S3Storage) PublicLink(fileID string) string {
	return s.publicBaseURL + "/" + url.PathEscape(s.bucket) + "/" + escapeKey(fileID)
}

// Quota sums object sizes under the root and trash prefixes.
func (s *S3Storage) Quota(ctx context.Context) (*Quota, error) {
	inDrive, err := s.prefixSize(ctx, s.root)
	if err != nil {
		return nil, err
	}

	var inTrash int64
	if s.trash != "" && s.trash != s.root {
		inTrash, err = s.prefixSize(ctx, s.trash)
		if err != nil {
			return nil, err
		}
	}

	return &Quota{
		Limit:        s.limit,
		Usage:        inDrive + inTrash,
		UsageInDrive: inDrive,
		UsageInTrash: inTrash,
	}, nil
}

func (s *S3Storage) prefixSize(ctx context.Context, prefix string) (int64, error) {
	in := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if prefix != "" {
		in.Prefix = aws.String(prefix + "/")
	}

	var total int64
	p := s3.NewListObjectsV2Paginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			total += aws.ToInt64(obj.Size)
		}
	}
	return total, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
