package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"music_exam_backend/internal/config"
	"music_exam_backend/internal/grading"
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/util"
	"music_exam_backend/pkg/logger"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const notationCacheKeyPrefix = "notation:"

// NotationContentService 读取题目参考谱与学生提交的乐谱文件。
// 公开桶按 {public_base_url}/{bucket}/{path} 访问，受限桶使用签名 URL。
type NotationContentService struct {
	Storage *StorageService
	Cfg     *config.StorageConfig
	Redis   *redis.Client // 可为 nil
	TTL     time.Duration
	Client  *http.Client
}

var _ grading.ContentFetcher = (*NotationContentService)(nil)

func NewNotationContentService(storage *StorageService, cfg *config.Config, rdb *redis.Client) *NotationContentService {
	return &NotationContentService{
		Storage: storage,
		Cfg:     &cfg.Storage,
		Redis:   rdb,
		TTL:     time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second,
		Client:  &http.Client{},
	}
}

func (s *NotationContentService) Fetch(ctx context.Context, ref model.FileRef) ([]byte, error) {
	if ref.Path == "" {
		return nil, util.ErrContentUnavailable
	}

	key := notationCacheKeyPrefix + ref.Bucket + "/" + ref.Path
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, key).Bytes()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			logger.Log.Warn("Notation cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	data, err := s.fetch(ctx, ref)
	if err != nil {
		logger.Log.Warn("Notation content unavailable",
			zap.String("bucket", ref.Bucket),
			zap.String("path", ref.Path),
			zap.Error(err))
		return nil, err
	}

	if s.Redis != nil && s.TTL > 0 {
		if err := s.Redis.Set(ctx, key, data, s.TTL).Err(); err != nil {
			logger.Log.Warn("Notation cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return data, nil
}

func (s *NotationContentService) fetch(ctx context.Context, ref model.FileRef) ([]byte, error) {
	if local, ok := s.Storage.Provider.(*LocalStorageProvider); ok && s.Cfg.PublicBaseURL == "" {
		f, err := local.Open(ref)
		if err != nil {
			return nil, errors.Wrap(err, "open local object")
		}
		defer f.Close()
		return readLimited(f)
	}

	target, err := s.ResolveURL(ctx, ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s/%s", ref.Bucket, ref.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(util.ErrContentUnavailable, "get %s/%s: status %d", ref.Bucket, ref.Path, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !util.IsNotationContentType(ct) {
		return nil, errors.Wrapf(util.ErrContentUnavailable, "get %s/%s: unexpected content type %q", ref.Bucket, ref.Path, ct)
	}
	return readLimited(resp.Body)
}

// ResolveURL 受限桶签名，其余按公开路径拼接
func (s *NotationContentService) ResolveURL(ctx context.Context, ref model.FileRef) (string, error) {
	if s.Cfg.IsRestricted(ref.Bucket) {
		signed, err := s.Storage.SignedURL(ctx, ref, s.Cfg.SignedURLTTL())
		if err != nil {
			return "", errors.Wrapf(err, "sign %s/%s", ref.Bucket, ref.Path)
		}
		return signed, nil
	}
	if s.Cfg.PublicBaseURL == "" {
		return "", errors.Wrap(util.ErrContentUnavailable, "storage.public_base_url not configured")
	}
	u, err := url.JoinPath(s.Cfg.PublicBaseURL, ref.Bucket, strings.TrimPrefix(ref.Path, "/"))
	if err != nil {
		return "", errors.Wrap(err, "join public url")
	}
	return u, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, util.MaxNotationBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if n > util.MaxNotationBytes {
		return nil, fmt.Errorf("notation file exceeds %d bytes", util.MaxNotationBytes)
	}
	return buf.Bytes(), nil
}
