package endpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API 是 S3FS 用到的客户端子集
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3FS 将 bucket 下的某个前缀视为目录
type S3FS struct {
	client s3API
	bucket string
	prefix string
}

// NewS3FS 使用 AWS 默认配置链创建客户端，opts 中的字段会覆盖默认值
func NewS3FS(ctx context.Context, bucket, prefix string, opts S3Options) (*S3FS, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return newS3FS(client, bucket, prefix), nil
}

func newS3FS(client s3API, bucket, prefix string) *S3FS {
	return &S3FS{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3FS) Root() string {
	return s3Scheme + path.Join(s.bucket, s.prefix)
}

func (s *S3FS) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	key := s.key(relPath)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.wrap("get object", key, err)
	}
	return out.Body, nil
}

func (s *S3FS) Create(ctx context.Context, relPath string, _ fs.FileMode) (io.WriteCloser, error) {
	return &s3Writer{ctx: ctx, fs: s, key: s.key(relPath)}, nil
}

// MkdirAll 对 S3 无意义
func (s *S3FS) MkdirAll(context.Context, string) error {
	return nil
}

func (s *S3FS) Remove(ctx context.Context, relPath string) error {
	key := s.key(relPath)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s.wrap("delete object", key, err)
	}
	return nil
}

func (s *S3FS) Stat(ctx context.Context, relPath string) (FileMeta, error) {
	key := s.key(relPath)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return FileMeta{}, s.wrap("head object", key, err)
	}
	meta := FileMeta{RelPath: relPath, Size: aws.ToInt64(out.ContentLength)}
	if out.LastModified != nil {
		meta.ModTime = *out.LastModified
	}
	return meta, nil
}

func (s *S3FS) Close() error {
	return nil
}

func (s *S3FS) key(relPath string) string {
	return path.Join(s.prefix, filepathToPosix(relPath))
}

func (s *S3FS) wrap(op, key string, err error) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%s s3://%s/%s: %w", op, s.bucket, key, fs.ErrNotExist)
	}
	return fmt.Errorf("%s s3://%s/%s: %w", op, s.bucket, key, err)
}

// s3Writer 缓存全部内容，Close 时一次性上传
type s3Writer struct {
	ctx    context.Context
	fs     *S3FS
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fs.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.fs.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.fs.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(int64(w.buf.Len())),
	})
	if err != nil {
		return w.fs.wrap("put object", w.key, err)
	}
	return nil
}
