package entities

import (
	"time"
)

type DatasetEventType string

const (
	DatasetEventReload  DatasetEventType = "dataset.reload"
	DatasetEventUpdated DatasetEventType = "dataset.updated"
)

// DatasetEvent asks the dashboard to re-read its input files.
type DatasetEvent struct {
	Type       DatasetEventType `json:"type"`
	Source     string           `json:"source,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func (e DatasetEvent) Validate() error {
	switch e.Type {
	case DatasetEventReload, DatasetEventUpdated:
		return nil
	case "":
		return ValidationError{Field: "type", Reason: "is required"}
	}
	return ValidationError{Field: "type", Reason: "unsupported event type " + string(e.Type)}
}

type ExportEventType string

const ExportEventCreated ExportEventType = "export.created"

type ExportEvent struct {
	Type        ExportEventType `json:"type"`
	ExportID    string          `json:"export_id"`
	FileName    string          `json:"file_name"`
	Granularity Granularity     `json:"granularity"`
	UserType    UserType        `json:"user_type"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Rows        int             `json:"rows"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
