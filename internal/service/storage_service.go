package service

import (
	"context"
	"fmt"
	"io"
	"music_exam_backend/internal/config"
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/util"
	"music_exam_backend/pkg/logger"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// StorageProvider 定义通用存储接口，对象以 bucket + path 定位
type StorageProvider interface {
	Upload(ctx context.Context, ref model.FileRef, reader io.Reader, size int64, contentType string) error
	// SignedURL 为受限桶生成短期可访问的 URL
	SignedURL(ctx context.Context, ref model.FileRef, ttl time.Duration) (string, error)
	DefaultBucket() string
}

// LocalStorageProvider 本地存储实现，桶对应 LocalPath 下的子目录
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) filePath(ref model.FileRef) (string, error) {
	clean := filepath.Clean("/" + filepath.Join(ref.Bucket, ref.Path))
	if clean == "/" {
		return "", fmt.Errorf("invalid object path %q", ref.Path)
	}
	return filepath.Join(p.Config.LocalPath, clean), nil
}

func (p *LocalStorageProvider) Upload(ctx context.Context, ref model.FileRef, reader io.Reader, size int64, contentType string) error {
	dst, err := p.filePath(ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	return err
}

// Open 本地存储直接读盘，不经过 HTTP
func (p *LocalStorageProvider) Open(ref model.FileRef) (io.ReadCloser, error) {
	src, err := p.filePath(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(src)
}

func (p *LocalStorageProvider) SignedURL(ctx context.Context, ref model.FileRef, ttl time.Duration) (string, error) {
	return "/uploads/" + path.Join(ref.Bucket, ref.Path), nil
}

func (p *LocalStorageProvider) DefaultBucket() string {
	return "scores"
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, ref model.FileRef, reader io.Reader, size int64, contentType string) error {
	_, err := p.Client.PutObject(ctx, ref.Bucket, ref.Path, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (p *MinioStorageProvider) SignedURL(ctx context.Context, ref model.FileRef, ttl time.Duration) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, ref.Bucket, ref.Path, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (p *MinioStorageProvider) DefaultBucket() string {
	return p.Config.MinioBucket
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, ref model.FileRef, reader io.Reader, size int64, contentType string) error {
	bucket, err := p.Client.Bucket(ref.Bucket)
	if err != nil {
		return err
	}
	return bucket.PutObject(ref.Path, reader, oss.ContentType(contentType))
}

func (p *OSSStorageProvider) SignedURL(ctx context.Context, ref model.FileRef, ttl time.Duration) (string, error) {
	bucket, err := p.Client.Bucket(ref.Bucket)
	if err != nil {
		return "", err
	}
	return bucket.SignURL(ref.Path, oss.HTTPGet, int64(ttl.Seconds()))
}

func (p *OSSStorageProvider) DefaultBucket() string {
	return p.Config.OSSBucket
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to init minio storage, falling back to local", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to init oss storage, falling back to local", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// UploadNotation 上传乐谱文件，返回可写入题目或答案的文件引用
func (s *StorageService) UploadNotation(ctx context.Context, bucket, filename string, reader io.Reader, size int64, contentType string) (model.FileRef, error) {
	if !util.IsNotationFile(filename) {
		return model.FileRef{}, fmt.Errorf("unsupported notation file %q", filename)
	}
	if bucket == "" {
		bucket = s.Provider.DefaultBucket()
	}
	ref := model.FileRef{
		Bucket: bucket,
		Path:   time.Now().Format("2006/01/02") + "/" + model.GenerateUUID() + strings.ToLower(filepath.Ext(filename)),
	}
	if contentType == "" {
		contentType = util.MimeOctetStream
	}
	if err := s.Provider.Upload(ctx, ref, reader, size, contentType); err != nil {
		return model.FileRef{}, errors.Wrapf(err, "upload %s/%s", ref.Bucket, ref.Path)
	}
	return ref, nil
}

func (s *StorageService) SignedURL(ctx context.Context, ref model.FileRef, ttl time.Duration) (string, error) {
	return s.Provider.SignedURL(ctx, ref, ttl)
}
