package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageKey(t *testing.T) {
	export := &entities.ExportReport{
		ID:          "abc",
		FileName:    "bike_rentals_daily_registered_20110101_20121231.xlsx",
		GeneratedAt: time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC),
	}

	assert.Equal(t, "exports/2024-03-05/bike_rentals_daily_registered_20110101_20121231.xlsx", StorageKey(export))
}

func TestMinioExportStorage_KeyForPrefersStoredPath(t *testing.T) {
	s := NewMinioExportStorage(nil, "bucket")

	export := &entities.ExportReport{
		FileName:    "report.xlsx",
		StoragePath: "exports/2020-01-01/report.xlsx",
		GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "exports/2020-01-01/report.xlsx", s.keyFor(export))

	export.StoragePath = ""
	assert.Equal(t, "exports/2024-01-01/report.xlsx", s.keyFor(export))
}

// Needs a reachable MinIO at MINIO_TEST_ENDPOINT with default credentials.
func TestMinioExportStorage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MinIO integration test in short mode")
	}
	endpoint := os.Getenv("MINIO_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_TEST_ENDPOINT not set")
	}

	base, err := NewMinioStorage(endpoint, "minioadmin", "minioadmin", false, 5*time.Second)
	require.NoError(t, err)

	s := NewMinioExportStorage(base, "bike-dashboard-test")
	ctx := context.Background()

	payload := []byte("workbook bytes")
	export := &entities.ExportReport{
		ID:          uuid.New().String(),
		FileName:    "integration.xlsx",
		FileSize:    int64(len(payload)),
		GeneratedAt: time.Now(),
	}

	key, err := s.UploadExport(ctx, export, bytes.NewReader(payload))
	require.NoError(t, err)
	export.StoragePath = key

	rc, err := s.DownloadExport(ctx, export)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, s.DeleteExport(ctx, export))
	_, err = s.DownloadExport(ctx, export)
	assert.ErrorIs(t, err, entities.ErrExportNotFound)
}
