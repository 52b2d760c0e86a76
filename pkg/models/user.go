package models

import (
	"time"
)

// User is one synthetic marketplace member. Rows are append-only:
// a user belongs to the run that generated it and is never mutated.
type User struct {
	RunDate              time.Time `json:"run_date" gorm:"type:date;primaryKey"`
	UserID               string    `json:"user_id" gorm:"type:varchar(36);primaryKey"`
	RunID                string    `json:"run_id" gorm:"type:varchar(36);index;not null"`
	Name                 string    `json:"name" gorm:"type:varchar(100);not null"`
	Location             string    `json:"location" gorm:"type:varchar(100)"`
	JoinDate             time.Time `json:"join_date" gorm:"type:date;not null;index"`
	VerifiedNeighborhood bool      `json:"verified_neighborhood" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at" gorm:"not null"`
	// Segmentation axes used by the downstream dashboards.
	AgeGroup    string `json:"age_group" gorm:"type:varchar(10)"`
	DeviceType  string `json:"device_type" gorm:"type:varchar(10)"`
	UserSegment string `json:"user_segment" gorm:"type:varchar(20);index"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
