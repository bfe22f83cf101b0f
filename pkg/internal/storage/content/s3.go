package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/filecdn/pkg/configs"
)

func init() {
	RegisterFactory(configs.ContentTypeS3, newS3Store)
}

const noSuchKey = "NoSuchKey"

// S3Store 把每个文件保存为 bucket 中的 <prefix>/<id> 对象.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// newS3Store 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func newS3Store(ctx context.Context, opts Options) (Store, error) {
	cfg := opts.Config.S3
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("filecdn", configs.AppVersion)

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 content store: bucket is required")
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}

		opts.Logger.Info().Str("bucket", cfg.Bucket).Msg("bucket created")
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = opts.Namespace
	}

	opts.Logger.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Str("prefix", prefix).Msg("s3 content store connected")

	return NewS3Store(cli, cfg.Bucket, prefix), nil
}

// NewS3Store 使用已有的客户端创建存储.
func NewS3Store(client *minio.Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(id string) (string, error) {
	if err := checkKey(id); err != nil {
		return "", err
	}

	if s.prefix == "" {
		return id, nil
	}

	return path.Join(s.prefix, id), nil
}

func (s *S3Store) Write(ctx context.Context, id string, data []byte) ([]byte, error) {
	key, err := s.key(id)
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return data, nil
}

func (s *S3Store) Read(ctx context.Context, id string) ([]byte, error) {
	key, err := s.key(id)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapErr(key, err)
	}

	return data, nil
}

func (s *S3Store) Replace(ctx context.Context, id string, data []byte) ([]byte, error) {
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrNotExist
	}

	return s.Write(ctx, id, data)
}

func (s *S3Store) Exists(ctx context.Context, id string) (bool, error) {
	key, err := s.key(id)
	if err != nil {
		return false, err
	}

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == noSuchKey {
			return false, nil
		}

		return false, fmt.Errorf("stat object %s: %w", key, err)
	}

	return true, nil
}

// Ping 通过检查 bucket 是否存在来验证连接.
func (s *S3Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}

	return nil
}

func (s *S3Store) mapErr(key string, err error) error {
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return ErrNotExist
	}

	return fmt.Errorf("get object %s: %w", key, err)
}
