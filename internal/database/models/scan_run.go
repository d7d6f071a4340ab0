package models

import (
	"time"
)

// ScanRun records one fetch invocation: the requested date range and how
// many messages were found, fetched and actually inserted.
type ScanRun struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RunID     string    `gorm:"size:36;uniqueIndex;not null" json:"run_id"`
	StartDate string    `gorm:"size:10" json:"start_date"`
	EndDate   string    `gorm:"size:10" json:"end_date"`
	Found     int       `json:"found"`
	Fetched   int       `json:"fetched"`
	Inserted  int       `json:"inserted"`
	Status    string    `gorm:"size:20;index" json:"status"`
	Error     string    `gorm:"type:text" json:"error"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScanRun status values.
const (
	ScanRunning   = "running"
	ScanCompleted = "completed"
	ScanFailed    = "failed"
)
