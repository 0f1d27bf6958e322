package models

import "time"

// AuditLog records mutating operations for the history page. Path and
// action are stored AES-encrypted when an encryption key is configured;
// the plaintext columns stay empty then. Request bodies can carry
// credentials, so they never reach the table in the clear.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *uint  `gorm:"index"`
	Path      string `gorm:"size:255"`
	PathEnc   string `gorm:"size:1024"`
	Method    string `gorm:"size:16"`
	Action    string `gorm:"size:2048"` // method + path + request body
	ActionEnc string `gorm:"size:4096"`
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}
