package models

import "time"

// Recipe is a dish published by an author. Recipes are hard deleted together
// with their ingredient rows, tag links and collection memberships.
type Recipe struct {
	ID          uint               `gorm:"primaryKey"`
	AuthorID    uint               `gorm:"not null;index"`
	Author      *User              `gorm:"foreignKey:AuthorID"`
	Name        string             `gorm:"size:255;not null"`
	Image       string             `gorm:"size:512"`
	Text        string             `gorm:"type:text;not null"`
	CookingTime int                `gorm:"not null"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID"`
	Tags        []Tag              `gorm:"many2many:recipe_tags"`
	PubDate     time.Time          `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time
}
