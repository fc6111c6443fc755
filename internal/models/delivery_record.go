package models

import "time"

// DeliveryRecord tracks one copy of vaulted content delivered to a recipient.
// It exists from the moment the copy succeeds until the reaper confirms the
// platform-side deletion, or moves it to dead-letter after repeated failures.
type DeliveryRecord struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChatID     int64     `gorm:"index:idx_chat_message,unique"`
	MessageID  int       `gorm:"index:idx_chat_message,unique"`
	ExpiresAt  time.Time `gorm:"index"`
	Attempts   int       `gorm:"default:0"`
	DeadLetter bool      `gorm:"default:false;index"`
}

// Due reports whether the record has passed its expiry time.
func (r *DeliveryRecord) Due(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
