package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

const createExportsTable = `
	CREATE TABLE IF NOT EXISTS dashboard_exports (
		id              TEXT PRIMARY KEY,
		granularity     TEXT NOT NULL,
		user_type       TEXT NOT NULL,
		period_start    DATE NOT NULL,
		period_end      DATE NOT NULL,
		rows            INTEGER NOT NULL,
		file_name       TEXT NOT NULL,
		file_size       BIGINT NOT NULL,
		storage_path    TEXT NOT NULL,
		download_url    TEXT NOT NULL DEFAULT '',
		checksum        TEXT NOT NULL,
		dataset_version TEXT NOT NULL,
		generated_at    TIMESTAMPTZ NOT NULL,
		expires_at      TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_dashboard_exports_expires_at ON dashboard_exports (expires_at);
`

const exportColumns = `
	id, granularity, user_type, period_start, period_end, rows,
	file_name, file_size, storage_path, download_url,
	checksum, dataset_version, generated_at, expires_at
`

type PostgresOptions struct {
	Host              string
	Port              int
	User              string
	Password          string
	Database          string
	SSLMode           string
	MaxConnections    int
	ConnectionTimeout time.Duration
}

// ConnString builds a postgres:// URL from the options.
func (o PostgresOptions) ConnString() string {
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.User, o.Password),
		Host:     fmt.Sprintf("%s:%d", o.Host, o.Port),
		Path:     "/" + o.Database,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

type PostgresExportRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresExportRepository(ctx context.Context, opts PostgresOptions) (*PostgresExportRepository, error) {
	log := logger.Component("postgres_export_repository")

	poolConfig, err := pgxpool.ParseConfig(opts.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if opts.MaxConnections > 0 {
		poolConfig.MaxConns = int32(opts.MaxConnections)
	}
	if opts.ConnectionTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = opts.ConnectionTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, createExportsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create dashboard_exports table: %w", err)
	}

	log.Infof("Connected export repository to %s:%d/%s", opts.Host, opts.Port, opts.Database)
	return &PostgresExportRepository{
		pool:   pool,
		logger: log,
	}, nil
}

func (r *PostgresExportRepository) SaveExport(ctx context.Context, export entities.ExportReportEntity) error {
	query := `
		INSERT INTO dashboard_exports (` + exportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			storage_path = EXCLUDED.storage_path,
			download_url = EXCLUDED.download_url,
			expires_at = EXCLUDED.expires_at
	`

	_, err := r.pool.Exec(ctx, query,
		export.GetID(),
		string(export.GetGranularity()),
		string(export.GetUserType()),
		export.GetPeriodStart(),
		export.GetPeriodEnd(),
		export.GetRows(),
		export.GetFileName(),
		export.GetFileSize(),
		export.GetStoragePath(),
		export.GetDownloadURL(),
		export.GetChecksum(),
		export.GetDatasetVersion(),
		export.GetGeneratedAt(),
		export.GetExpiresAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save export %s: %w", export.GetID(), err)
	}

	return nil
}

// FindExportByID returns nil, nil when no export has the id.
func (r *PostgresExportRepository) FindExportByID(ctx context.Context, id string) (entities.ExportReportEntity, error) {
	query := `SELECT ` + exportColumns + ` FROM dashboard_exports WHERE id = $1`

	export, err := scanExport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find export by ID: %w", err)
	}

	return export, nil
}

func (r *PostgresExportRepository) FindExpiredExports(ctx context.Context) ([]entities.ExportReportEntity, error) {
	query := `
		SELECT ` + exportColumns + `
		FROM dashboard_exports
		WHERE expires_at IS NOT NULL AND expires_at < NOW()
		ORDER BY expires_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired exports: %w", err)
	}
	defer rows.Close()

	var results []entities.ExportReportEntity
	for rows.Next() {
		export, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		results = append(results, export)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expired exports: %w", err)
	}

	return results, nil
}

func (r *PostgresExportRepository) DeleteExport(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM dashboard_exports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete export %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debugf("Export %s was already deleted", id)
	}
	return nil
}

func (r *PostgresExportRepository) HealthCheck(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresExportRepository) Close() error {
	r.logger.Info("Closing export repository...")
	r.pool.Close()
	return nil
}

func scanExport(row pgx.Row) (*entities.ExportReport, error) {
	var (
		export      entities.ExportReport
		granularity string
		userType    string
	)

	err := row.Scan(
		&export.ID,
		&granularity,
		&userType,
		&export.PeriodStart,
		&export.PeriodEnd,
		&export.Rows,
		&export.FileName,
		&export.FileSize,
		&export.StoragePath,
		&export.DownloadURL,
		&export.Checksum,
		&export.DatasetVersion,
		&export.GeneratedAt,
		&export.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	export.Granularity = entities.Granularity(granularity)
	export.UserType = entities.UserType(userType)
	return &export, nil
}
