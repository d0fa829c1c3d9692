package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ==================== 接口定义 ====================

// StorageProvider 存储提供者接口（交付物文件存取）
type StorageProvider interface {
	// Upload 上传文件，返回对象 key
	Upload(ctx context.Context, data []byte, filename string, contentType string) (key string, err error)

	// Delete 删除文件
	Delete(ctx context.Context, key string) error

	// GetSignedURL 获取限时下载链接（交付物始终走私有读 + 签名 URL）
	GetSignedURL(ctx context.Context, key string, expires time.Duration) (signedURL string, err error)
}

// ==================== 配置 ====================

type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	BasePath  string // 基础路径前缀
	LocalDir  string // local 模式落盘目录
	SiteURL   string // local 模式拼下载链接用
}

// ==================== 工厂方法 ====================

func NewStorageProvider(cfg *StorageConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(cfg)
	case "local":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== S3 实现 ====================

type S3Storage struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	basePath string
}

func NewS3Storage(cfg *StorageConfig) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %v", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		client:   client,
		presign:  s3.NewPresignClient(client),
		bucket:   cfg.Bucket,
		basePath: strings.Trim(cfg.BasePath, "/"),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := s.objectKey(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("S3 上传失败: %w", err)
	}
	return key, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("S3 删除失败: %w", err)
	}
	return nil
}

func (s *S3Storage) GetSignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("生成签名URL失败: %w", err)
	}
	return req.URL, nil
}

func (s *S3Storage) objectKey(filename string) string {
	name := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(filename))
	if s.basePath == "" {
		return name
	}
	return s.basePath + "/" + name
}

// ==================== 本地实现（开发环境用）====================

type LocalStorage struct {
	dir     string
	siteURL string
}

func NewLocalStorage(cfg *StorageConfig) (*LocalStorage, error) {
	dir := cfg.LocalDir
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败: %w", err)
	}
	return &LocalStorage{dir: dir, siteURL: strings.TrimRight(cfg.SiteURL, "/")}, nil
}

func (l *LocalStorage) Upload(_ context.Context, data []byte, filename string, _ string) (string, error) {
	key := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(filename))
	if err := os.WriteFile(filepath.Join(l.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("本地写文件失败: %w", err)
	}
	return key, nil
}

func (l *LocalStorage) Delete(_ context.Context, key string) error {
	return os.Remove(filepath.Join(l.dir, key))
}

func (l *LocalStorage) GetSignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	// 本地模式没有真正的签名，直接回静态路径
	return l.siteURL + "/files/" + key, nil
}
