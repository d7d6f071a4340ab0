package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/warterbili/InterviewManager-system/internal/database/models"
)

var (
	// ErrDeliveryNotFound indicates the delivery row does not exist.
	ErrDeliveryNotFound = errors.New("delivery record not found")
	// ErrDuplicateDelivery indicates an identical delivery row already exists.
	ErrDuplicateDelivery = errors.New("duplicate delivery record")
)

// TrackerStore persists the interview schedule and the delivery log.
type TrackerStore struct {
	db *gorm.DB
}

// NewTrackerStore creates a new TrackerStore instance
func NewTrackerStore(db *gorm.DB) *TrackerStore {
	return &TrackerStore{db: db}
}

// ListInterviews returns all interviews ordered by their scheduled time.
func (s *TrackerStore) ListInterviews() ([]models.Interview, error) {
	var interviews []models.Interview
	if err := s.db.Order("datetime").Find(&interviews).Error; err != nil {
		return nil, err
	}
	return interviews, nil
}

// ReplaceInterviews swaps the whole schedule for the given rows in one
// transaction. The schedule page always submits the full table.
func (s *TrackerStore) ReplaceInterviews(interviews []models.Interview) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM interviews").Error; err != nil {
			return err
		}
		if len(interviews) == 0 {
			return nil
		}
		return tx.CreateInBatches(&interviews, writeBatchSize).Error
	})
}

// ListDeliveries returns all delivery rows, newest first.
func (s *TrackerStore) ListDeliveries() ([]models.Delivery, error) {
	var deliveries []models.Delivery
	if err := s.db.Order("delivery_date DESC").Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

// AddDelivery inserts one delivery row. An identical (company, date, status)
// row is reported as ErrDuplicateDelivery.
func (s *TrackerStore) AddDelivery(d *models.Delivery) error {
	if err := s.db.Create(d).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateDelivery
		}
		return err
	}
	return nil
}

// UpdateDelivery rewrites one delivery row by primary key.
func (s *TrackerStore) UpdateDelivery(id uint, d *models.Delivery) error {
	result := s.db.Model(&models.Delivery{}).Where("id = ?", id).Updates(map[string]interface{}{
		"company_name":  d.CompanyName,
		"delivery_date": d.DeliveryDate,
		"status":        d.Status,
	})
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return ErrDuplicateDelivery
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

// DeleteDelivery removes one delivery row by primary key.
func (s *TrackerStore) DeleteDelivery(id uint) error {
	result := s.db.Delete(&models.Delivery{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

// isDuplicateKeyError matches the unique-violation wording of both backing
// drivers, the same way the migration step tolerates index re-creation.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
