package storage

import (
	"time"

	"tg-vaultgate/internal/models"

	"gorm.io/gorm"
)

// DeliveryRepository handles database operations for DeliveryRecord
type DeliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a new DeliveryRepository
func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// MigrateTable ensures the DeliveryRecord table exists
func (r *DeliveryRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.DeliveryRecord{})
}

// Create inserts a new delivery record
func (r *DeliveryRepository) Create(record *models.DeliveryRecord) error {
	return r.db.Create(record).Error
}

// Remove deletes a delivery record by primary key. Removing an already
// removed record is a no-op, so concurrent reapers stay safe.
func (r *DeliveryRepository) Remove(id uint) error {
	return r.db.Delete(&models.DeliveryRecord{}, id).Error
}

// FindDue returns all records past their expiry, oldest first,
// excluding dead-lettered ones.
func (r *DeliveryRepository) FindDue(now time.Time) ([]models.DeliveryRecord, error) {
	var records []models.DeliveryRecord
	result := r.db.Where("expires_at <= ? AND dead_letter = ?", now, false).
		Order("expires_at").
		Find(&records)
	return records, result.Error
}

// BumpAttempts increments the failed deletion counter for a record
func (r *DeliveryRepository) BumpAttempts(id uint) error {
	return r.db.Model(&models.DeliveryRecord{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// MarkDeadLetter parks a record for operator review after repeated
// deletion failures. Dead-lettered records are skipped by FindDue.
func (r *DeliveryRepository) MarkDeadLetter(id uint) error {
	return r.db.Model(&models.DeliveryRecord{}).
		Where("id = ?", id).
		Update("dead_letter", true).Error
}

// CountOutstanding returns the number of live (non-dead-letter) records
func (r *DeliveryRepository) CountOutstanding() (int64, error) {
	var count int64
	result := r.db.Model(&models.DeliveryRecord{}).
		Where("dead_letter = ?", false).
		Count(&count)
	return count, result.Error
}
