package models

import "time"

// EventRecord archives a timeline record observed on a network.
// Rows are insert-only: the same event seen on a later pass hits the unique index and is skipped.
type EventRecord struct {
	ID            uint   `gorm:"primaryKey"`
	NetworkID     uint64 `gorm:"index:ux_event,unique;not null"`
	Kind          string `gorm:"size:32;index:ux_event,unique;index"`
	BlockNumber   uint64 `gorm:"index:ux_event,unique;index"`
	Payload       string `gorm:"size:160;index:ux_event,unique"`
	Address       string `gorm:"size:42;index"`
	ProposalID    uint64
	PreviousPhase int8
	NewPhase      int8
	CreatedAt     time.Time
}
