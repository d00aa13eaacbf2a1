// Package models contains data structures for the application's domain models.
package models

import "time"

// User is an author known to the blog. Identity itself is owned by the upstream
// auth provider; only the display fields needed to resolve authors live here.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
