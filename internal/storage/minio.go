package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
)

// ObjectStorage 批量解析使用的对象存储接口
type ObjectStorage interface {
	ListDocuments(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadFile(ctx context.Context, objectName string) ([]byte, error)
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64) (string, error)
}

var _ ObjectStorage = (*MinIO)(nil)

// ObjectInfo 对象的基本信息
type ObjectInfo struct {
	Key  string
	Size int64
}

// MinIO 简历文件来源和批量报告的存放位置
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	bucket string
	log    zerolog.Logger
}

// NewMinIO 创建客户端；存储桶必须已经存在
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("MinIO存储桶名称不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶 %s 失败: %w", cfg.BucketName, err)
	}
	if !exists {
		return nil, fmt.Errorf("存储桶 %s 不存在", cfg.BucketName)
	}

	m := &MinIO{client: client, cfg: cfg, bucket: cfg.BucketName, log: logger.Component("minio")}
	m.log.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("MinIO客户端初始化成功")
	return m, nil
}

// ListDocuments 递归列出前缀下的全部对象，跳过目录占位对象
func (m *MinIO) ListDocuments(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if prefix == "" {
		prefix = m.cfg.Prefix
	}
	var out []ObjectInfo
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("列出对象失败: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size})
	}
	return out, nil
}

// DownloadFile 读取对象全部内容
func (m *MinIO) DownloadFile(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.objectError(ctx, fmt.Errorf("获取对象 %s 失败: %w", objectName, err), objectName)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.objectError(ctx, fmt.Errorf("读取对象 %s 失败: %w", objectName, err), objectName)
	}
	return data, nil
}

// UploadFile 上传对象，返回对象路径
func (m *MinIO) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: ContentType(objectName),
	})
	if err != nil {
		return "", m.objectError(ctx, fmt.Errorf("上传对象 %s 失败: %w", objectName, err), objectName)
	}
	return m.bucket + "/" + objectName, nil
}

// objectError 将错误记录到调用方的 span 上并原样返回
func (m *MinIO) objectError(ctx context.Context, err error, objectName string) error {
	tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeObjectStore,
		attribute.String("object.bucket", m.bucket),
		attribute.String("object.name", objectName))
	return err
}

// ContentType 按扩展名推断 Content-Type
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json", ".jsonl":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
