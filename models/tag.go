package models

import (
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var (
	colorPattern   = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	slugPattern    = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// Tag categorises recipes, e.g. breakfast or dinner.
type Tag struct {
	gorm.Model
	Name  string `gorm:"uniqueIndex;size:60;not null"`
	Color string `gorm:"uniqueIndex;size:7;not null"`
	Slug  string `gorm:"uniqueIndex;size:100;not null"`
}

// ValidColor reports whether the value is a #RRGGBB hex colour.
func ValidColor(color string) bool {
	return colorPattern.MatchString(color)
}

// ValidSlug reports whether the value only contains slug characters.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// Slugify derives a slug from a free-form tag name.
func Slugify(name string) string {
	slug := nonSlugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}
