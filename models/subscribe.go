package models

import "time"

// Subscribe is a directed follow edge: UserID follows AuthorID.
type Subscribe struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscription_pair"`
	User      *User     `gorm:"foreignKey:UserID"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index"`
	Author    *User     `gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
