package minio

import (
	"InstaCap/internal/api/config"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore 上传原图的对象存储
type ObjectStore struct {
	client *minio.Client
	cfg    config.MinIOConfig
}

// Init 初始化 MinIO 客户端，未启用时返回 nil
func Init(ctx context.Context, cfg config.MinIOConfig) (*ObjectStore, error) {
	if !cfg.Enable {
		log.Info("minio disabled, uploaded images will not be stored")
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("minio bucket created", "bucket", cfg.Bucket)
	}

	return &ObjectStore{client: client, cfg: cfg}, nil
}
