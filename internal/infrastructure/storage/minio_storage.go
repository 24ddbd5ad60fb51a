package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const exportsPrefix = "exports"

type MinioStorage struct {
	client *minio.Client
	logger logger.Logger
}

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool, timeout time.Duration) (*MinioStorage, error) {
	log := logger.Component("minio_storage")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Minio client: %w", err)
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		return nil, fmt.Errorf("failed to list Minio buckets: %w", err)
	}

	log.Infof("Minio storage connected to %s", endpoint)
	return &MinioStorage{
		client: client,
		logger: log,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (m *MinioStorage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	m.logger.Infof("Created bucket: %s", bucket)
	return nil
}

func (m *MinioStorage) Upload(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType string) error {
	if err := m.EnsureBucket(ctx, bucket); err != nil {
		return err
	}

	info, err := m.client.PutObject(ctx, bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	m.logger.Debugf("Uploaded %s/%s (%d bytes, etag %s)", bucket, key, info.Size, info.ETag)
	return nil
}

func (m *MinioStorage) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	object, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s: %w", key, err)
	}

	if _, err := object.Stat(); err != nil {
		object.Close()
		if isNotFound(err) {
			return nil, fmt.Errorf("object %s: %w", key, entities.ErrExportNotFound)
		}
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	return object, nil
}

func (m *MinioStorage) Delete(ctx context.Context, bucket, key string) error {
	if err := m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (m *MinioStorage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return true, nil
}

func (m *MinioStorage) HealthCheck(ctx context.Context) error {
	if _, err := m.client.ListBuckets(ctx); err != nil {
		return fmt.Errorf("Minio list buckets failed: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

// MinioExportStorage keeps exported workbooks in a single bucket under
// exports/<generation date>/<file name>.
type MinioExportStorage struct {
	storage *MinioStorage
	bucket  string
	logger  logger.Logger
}

func NewMinioExportStorage(storage *MinioStorage, bucket string) *MinioExportStorage {
	return &MinioExportStorage{
		storage: storage,
		bucket:  bucket,
		logger:  logger.Component("minio_export_storage"),
	}
}

func (m *MinioExportStorage) UploadExport(ctx context.Context, export entities.ExportReportEntity, data io.Reader) (string, error) {
	key := StorageKey(export)

	if err := m.storage.Upload(ctx, m.bucket, key, data, export.GetFileSize(), entities.ExcelContentType); err != nil {
		return "", fmt.Errorf("failed to upload export %s: %w", export.GetID(), err)
	}

	m.logger.Infof("Uploaded export %s to %s/%s", export.GetID(), m.bucket, key)
	return key, nil
}

func (m *MinioExportStorage) DownloadExport(ctx context.Context, export entities.ExportReportEntity) (io.ReadCloser, error) {
	return m.storage.Download(ctx, m.bucket, m.keyFor(export))
}

func (m *MinioExportStorage) DeleteExport(ctx context.Context, export entities.ExportReportEntity) error {
	key := m.keyFor(export)
	exists, err := m.storage.Exists(ctx, m.bucket, key)
	if err != nil {
		return err
	}
	if !exists {
		m.logger.Debugf("Export object %s already gone", key)
		return nil
	}
	return m.storage.Delete(ctx, m.bucket, key)
}

func (m *MinioExportStorage) HealthCheck(ctx context.Context) error {
	return m.storage.HealthCheck(ctx)
}

func (m *MinioExportStorage) keyFor(export entities.ExportReportEntity) string {
	if p := export.GetStoragePath(); p != "" {
		return p
	}
	return StorageKey(export)
}

// StorageKey returns the object key an export is stored under.
func StorageKey(export entities.ExportReportEntity) string {
	return path.Join(exportsPrefix, export.GetGeneratedAt().UTC().Format("2006-01-02"), export.GetFileName())
}
