package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warterbili/InterviewManager-system/internal/database/models"
)

const (
	// writeBatchSize bounds one database round trip.
	writeBatchSize = 100

	// Column caps applied before insert; the MySQL schema enforces them.
	maxSubjectLen = 500
	maxAddressLen = 255
	maxDateLen    = 100
)

// EmailStore persists normalized messages into the all_emails table.
type EmailStore struct {
	db *gorm.DB
}

// NewEmailStore creates a new EmailStore instance
func NewEmailStore(db *gorm.DB) *EmailStore {
	return &EmailStore{db: db}
}

// SaveEmails inserts records in batches, silently dropping rows whose dedup
// key already exists, and returns the number of rows actually inserted.
// A failed write aborts the whole save with zero rows counted.
func (s *EmailStore) SaveEmails(emails []models.JobEmail) (int, error) {
	if len(emails) == 0 {
		log.Info("No emails to save to database")
		return 0, nil
	}

	rows := make([]models.JobEmail, len(emails))
	for i, e := range emails {
		e.Subject = truncateRunes(e.Subject, maxSubjectLen)
		e.Sender = truncateRunes(e.Sender, maxAddressLen)
		e.Recipient = truncateRunes(e.Recipient, maxAddressLen)
		e.SendDate = truncateRunes(e.SendDate, maxDateLen)
		rows[i] = e
	}

	log.WithField("count", len(rows)).Info("Preparing to insert emails into database")
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, writeBatchSize)
	if result.Error != nil {
		log.WithError(result.Error).Error("Database connection or operation failed")
		return 0, result.Error
	}

	inserted := int(result.RowsAffected)
	log.WithField("inserted", inserted).Info("Successfully inserted emails")
	return inserted, nil
}

// ListByDateRange returns rows whose send_date falls inside the inclusive
// [start, end] day range, ordered by send_date. An empty range returns the
// whole table.
func (s *EmailStore) ListByDateRange(start, end string) ([]models.JobEmail, error) {
	q := s.db.Model(&models.JobEmail{}).Order("send_date")
	if start != "" && end != "" {
		q = q.Where("send_date >= ? AND send_date <= ?", start+" 00:00:00", end+" 23:59:59")
	}
	var emails []models.JobEmail
	if err := q.Find(&emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}

// SearchEmails returns rows whose subject or body contains keyword, newest
// first. An empty keyword returns the whole table.
func (s *EmailStore) SearchEmails(keyword string) ([]models.JobEmail, error) {
	q := s.db.Model(&models.JobEmail{}).Order("send_date DESC")
	if keyword != "" {
		like := "%" + keyword + "%"
		q = q.Where("subject LIKE ? OR body LIKE ?", like, like)
	}
	var emails []models.JobEmail
	if err := q.Find(&emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}

// DeleteEmail removes one stored row by primary key.
func (s *EmailStore) DeleteEmail(id uint) error {
	result := s.db.Delete(&models.JobEmail{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmailNotFound
	}
	return nil
}

// GetByID retrieves a stored email row by primary key.
func (s *EmailStore) GetByID(id uint) (*models.JobEmail, error) {
	var email models.JobEmail
	if err := s.db.First(&email, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}
	return &email, nil
}

// EmailStats summarizes the stored table.
type EmailStats struct {
	Total   int64  `json:"total"`
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
}

// Stats returns the row count and the send_date extremes.
func (s *EmailStore) Stats() (*EmailStats, error) {
	var stats EmailStats
	row := s.db.Model(&models.JobEmail{}).
		Select("COUNT(*), COALESCE(MIN(send_date), ''), COALESCE(MAX(send_date), '')").
		Row()
	if err := row.Scan(&stats.Total, &stats.MinDate, &stats.MaxDate); err != nil {
		return nil, err
	}
	return &stats, nil
}

// BeginScanRun records a new fetch invocation.
func (s *EmailStore) BeginScanRun(run *models.ScanRun) error {
	return s.db.Create(run).Error
}

// FinishScanRun persists the final counters and status of a run.
func (s *EmailStore) FinishScanRun(run *models.ScanRun) error {
	return s.db.Save(run).Error
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
