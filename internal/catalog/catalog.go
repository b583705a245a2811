// Package catalog serves the reference data recipes are built from: tags and
// ingredients. Reads go through the cache; imports invalidate it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"foodgram/internal/apperr"
	"foodgram/internal/cache"
	applog "foodgram/internal/log"
	"foodgram/models"
)

const (
	tagsKey          = "tags"
	ingredientPrefix = "ingredients:"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Service reads and imports tags and ingredients.
type Service struct {
	db    *gorm.DB
	cache cache.Cache
}

// NewService builds a catalog service. A nil cache disables caching.
func NewService(db *gorm.DB, c cache.Cache) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{db: db, cache: c}
}

// ListTags returns every tag, newest first.
func (s *Service) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if s.cached(ctx, tagsKey, &tags) {
		return tags, nil
	}

	if err := s.db.WithContext(ctx).Order("id desc").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	s.store(ctx, tagsKey, tags)
	return tags, nil
}

// GetTag loads a tag by id.
func (s *Service) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tag")
		}
		return nil, fmt.Errorf("load tag %d: %w", id, err)
	}
	return &tag, nil
}

// ListIngredients returns the ingredients whose name starts with prefix,
// ignoring case, ordered by name. An empty prefix lists everything.
func (s *Service) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	key := ingredientPrefix + prefix

	var ingredients []models.Ingredient
	if s.cached(ctx, key, &ingredients) {
		return ingredients, nil
	}

	query := s.db.WithContext(ctx).Order("name asc, id asc")
	foldInGo := !isASCII(prefix)
	if prefix != "" && !foldInGo {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%")
	}
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	if foldInGo {
		// SQLite's LOWER only folds ASCII letters.
		ingredients = slices.DeleteFunc(ingredients, func(ingredient models.Ingredient) bool {
			return !strings.HasPrefix(strings.ToLower(ingredient.Name), prefix)
		})
	}
	s.store(ctx, key, ingredients)
	return ingredients, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// GetIngredient loads an ingredient by id.
func (s *Service) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ingredient")
		}
		return nil, fmt.Errorf("load ingredient %d: %w", id, err)
	}
	return &ingredient, nil
}

// UpsertIngredient inserts an ingredient unless one with the same name and
// unit already exists. It reports whether a row was created.
func (s *Service) UpsertIngredient(ctx context.Context, name, unit string) (bool, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if name == "" {
		return false, apperr.Invalid("name", "name is required")
	}
	if unit == "" {
		return false, apperr.Invalid("measurement_unit", "measurement unit is required")
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("name = ? AND measurement_unit = ?", name, unit).
		Count(&existing).Error; err != nil {
		return false, fmt.Errorf("check ingredient %s: %w", name, err)
	}
	if existing > 0 {
		return false, nil
	}

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return false, fmt.Errorf("create ingredient %s: %w", name, err)
	}
	s.invalidate(ctx, ingredientPrefix)
	return true, nil
}

// UpsertTag inserts or refreshes a tag identified by its slug. An empty slug
// is derived from the name. It reports whether a row was created.
func (s *Service) UpsertTag(ctx context.Context, name, color, slug string) (bool, error) {
	name = strings.TrimSpace(name)
	color = strings.ToUpper(strings.TrimSpace(color))
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = models.Slugify(name)
	}

	switch {
	case name == "":
		return false, apperr.Invalid("name", "name is required")
	case !models.ValidColor(color):
		return false, apperr.Invalid("color", "color must be a #RRGGBB hex value")
	case !models.ValidSlug(slug):
		return false, apperr.Invalid("slug", "slug may contain only letters, digits, hyphens and underscores")
	}

	var tag models.Tag
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tag).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		tag = models.Tag{Name: name, Color: color, Slug: slug}
		if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return false, apperr.Invalid("", "a tag with that name or color already exists")
			}
			return false, fmt.Errorf("create tag %s: %w", slug, err)
		}
		s.invalidate(ctx, tagsKey)
		return true, nil
	case err != nil:
		return false, fmt.Errorf("load tag %s: %w", slug, err)
	}

	if tag.Name == name && tag.Color == color {
		return false, nil
	}
	if err := s.db.WithContext(ctx).Model(&tag).Updates(map[string]any{"name": name, "color": color}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, apperr.Invalid("", "a tag with that name or color already exists")
		}
		return false, fmt.Errorf("update tag %s: %w", slug, err)
	}
	s.invalidate(ctx, tagsKey)
	return false, nil
}

func (s *Service) cached(ctx context.Context, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		applog.Warn(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		applog.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context, prefix string) {
	if err := s.cache.Invalidate(ctx, prefix); err != nil {
		applog.Warn(ctx, "cache invalidation failed", "prefix", prefix, "error", err)
	}
}
