package models

import "time"

// AuditLog records who did what to which entity. Invoice creation and
// deletion write an entry inside the same transaction as the change itself.
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	RequestID  string `gorm:"size:36;index"` // uuid correlating related entries
	ActorKind  string `gorm:"size:10;not null"`
	ActorID    uint   `gorm:"not null"`
	EntityType string `gorm:"size:40;not null"`
	EntityID   uint   `gorm:"not null"`
	Action     string `gorm:"size:20;not null"`
	CreatedAt  time.Time
}
