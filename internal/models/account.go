// Package models contains data structures for the application's domain models.
package models

import "time"

// Account is the authentication record behind a principal. It lives outside
// the ledger: the ledger only ever sees the opaque Address string. Passwords
// are stored as bcrypt hashes and never serialized.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Address      string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"address"`
	Handle       string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"handle"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}
