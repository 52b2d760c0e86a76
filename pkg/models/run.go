package models

import (
	"time"

	"gorm.io/datatypes"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// GenerationRun is the ledger row for one scheduler-triggered run: what was
// requested, what came out, and where the CSV snapshots ended up.
type GenerationRun struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	RunDate   time.Time `json:"run_date" gorm:"type:date;not null;index"`
	Seed      int64     `json:"seed" gorm:"not null"`
	UserCount int       `json:"user_count" gorm:"not null"`
	Status    RunStatus `json:"status" gorm:"type:varchar(20);not null;default:'running';index"`

	EventCount   int            `json:"event_count"`
	FunnelStats  datatypes.JSON `json:"funnel_stats,omitempty" gorm:"type:jsonb"`
	UsersCSVURL  *string        `json:"users_csv_url,omitempty" gorm:"type:varchar(500)"`
	EventsCSVURL *string        `json:"events_csv_url,omitempty" gorm:"type:varchar(500)"`
	ErrorMessage *string        `json:"error_message,omitempty" gorm:"type:text"`

	StartedAt  time.Time  `json:"started_at" gorm:"not null"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GenerationRun
func (GenerationRun) TableName() string {
	return "generation_runs"
}
