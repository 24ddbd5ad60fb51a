package entities

import (
	"time"
)

const ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportReportEntity interface {
	GetID() string
	GetGranularity() Granularity
	GetUserType() UserType
	GetPeriodStart() time.Time
	GetPeriodEnd() time.Time
	GetRows() int
	GetFileName() string
	GetFileSize() int64
	GetStoragePath() string
	GetDownloadURL() string
	GetChecksum() string
	GetDatasetVersion() string
	GetGeneratedAt() time.Time
	GetExpiresAt() *time.Time
	IsExpired() bool
}

type ExportReport struct {
	ID             string      `json:"id" db:"id"`
	Granularity    Granularity `json:"granularity" db:"granularity"`
	UserType       UserType    `json:"user_type" db:"user_type"`
	PeriodStart    time.Time   `json:"period_start" db:"period_start"`
	PeriodEnd      time.Time   `json:"period_end" db:"period_end"`
	Rows           int         `json:"rows" db:"rows"`
	FileName       string      `json:"file_name" db:"file_name"`
	FileSize       int64       `json:"file_size" db:"file_size"`
	StoragePath    string      `json:"storage_path" db:"storage_path"`
	DownloadURL    string      `json:"download_url,omitempty" db:"download_url"`
	Checksum       string      `json:"checksum" db:"checksum"`
	DatasetVersion string      `json:"dataset_version" db:"dataset_version"`
	GeneratedAt    time.Time   `json:"generated_at" db:"generated_at"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty" db:"expires_at"`
}

func (e *ExportReport) GetID() string               { return e.ID }
func (e *ExportReport) GetGranularity() Granularity { return e.Granularity }
func (e *ExportReport) GetUserType() UserType       { return e.UserType }
func (e *ExportReport) GetPeriodStart() time.Time   { return e.PeriodStart }
func (e *ExportReport) GetPeriodEnd() time.Time     { return e.PeriodEnd }
func (e *ExportReport) GetRows() int                { return e.Rows }
func (e *ExportReport) GetFileName() string         { return e.FileName }
func (e *ExportReport) GetFileSize() int64          { return e.FileSize }
func (e *ExportReport) GetStoragePath() string      { return e.StoragePath }
func (e *ExportReport) GetDownloadURL() string      { return e.DownloadURL }
func (e *ExportReport) GetChecksum() string         { return e.Checksum }
func (e *ExportReport) GetDatasetVersion() string   { return e.DatasetVersion }
func (e *ExportReport) GetGeneratedAt() time.Time   { return e.GeneratedAt }
func (e *ExportReport) GetExpiresAt() *time.Time    { return e.ExpiresAt }

func (e *ExportReport) IsExpired() bool {
	return e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt)
}
