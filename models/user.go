package models

import (
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// User represents an account that can publish recipes and follow other authors.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:254;not null"`
	Username     string `gorm:"uniqueIndex;size:150;not null"`
	FirstName    string `gorm:"size:150;not null"`
	LastName     string `gorm:"size:150;not null"`
	PasswordHash string `gorm:"not null"`
	IsStaff      bool   `gorm:"not null;default:false"`
}

// ValidUsername reports whether the username only contains letters, digits and @/./+/-/_.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
