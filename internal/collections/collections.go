// Package collections implements the per-user recipe sets: favorites and the
// shopping cart. Each user owns at most one row per kind, created on first add;
// membership lives in the kind's many-to-many join table.
package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodgram/internal/apperr"
	applog "foodgram/internal/log"
	"foodgram/models"
)

// Kind describes the tables and messages of one collection.
type Kind struct {
	Name        string
	ownerTable  string
	joinTable   string
	ownerColumn string
	existsMsg   string
	missingMsg  string
}

var (
	Favorites = Kind{
		Name:        "favorites",
		ownerTable:  "favorite_recipes",
		joinTable:   "favorite_recipe_recipes",
		ownerColumn: "favorite_recipe_id",
		existsMsg:   "recipe is already in favorites",
		missingMsg:  "recipe is not in favorites",
	}
	ShoppingCart = Kind{
		Name:        "shopping_cart",
		ownerTable:  "shopping_carts",
		joinTable:   "shopping_cart_recipes",
		ownerColumn: "shopping_cart_id",
		existsMsg:   "recipe is already in the shopping cart",
		missingMsg:  "recipe is not in the shopping cart",
	}
)

// Kinds lists every collection kind.
func Kinds() []Kind {
	return []Kind{Favorites, ShoppingCart}
}

// PurgeRecipe drops recipeID from every user's collection of this kind.
func (k Kind) PurgeRecipe(tx *gorm.DB, recipeID uint) error {
	if err := tx.Exec("DELETE FROM "+k.joinTable+" WHERE recipe_id = ?", recipeID).Error; err != nil {
		return fmt.Errorf("purge recipe %d from %s: %w", recipeID, k.Name, err)
	}
	return nil
}

// Store manages one collection kind.
type Store struct {
	db   *gorm.DB
	kind Kind
}

// New returns a Store for kind.
func New(db *gorm.DB, kind Kind) *Store {
	return &Store{db: db, kind: kind}
}

// Kind returns the collection kind handled by the store.
func (s *Store) Kind() Kind {
	return s.kind
}

// Add puts recipeID into the user's collection and returns the recipe.
func (s *Store) Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownerID, err := s.ensureOwner(tx, userID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Table(s.kind.joinTable).
			Where(s.kind.ownerColumn+" = ? AND recipe_id = ?", ownerID, recipeID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check %s membership: %w", s.kind.Name, err)
		}
		if count > 0 {
			return apperr.Invalid("", "%s", s.kind.existsMsg)
		}

		if err := tx.Table(s.kind.joinTable).Create(map[string]any{
			s.kind.ownerColumn: ownerID,
			"recipe_id":        recipeID,
		}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Invalid("", "%s", s.kind.existsMsg)
			}
			return fmt.Errorf("add recipe to %s: %w", s.kind.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "collection item added", "collection", s.kind.Name, "userID", userID, "recipeID", recipeID)
	return recipe, nil
}

// Remove takes recipeID out of the user's collection.
func (s *Store) Remove(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.loadRecipe(ctx, recipeID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Exec(
		"DELETE FROM "+s.kind.joinTable+" WHERE recipe_id = ? AND "+s.kind.ownerColumn+
			" IN (SELECT id FROM "+s.kind.ownerTable+" WHERE user_id = ?)",
		recipeID, userID,
	)
	if result.Error != nil {
		return fmt.Errorf("remove recipe from %s: %w", s.kind.Name, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Invalid("", "%s", s.kind.missingMsg)
	}

	applog.Debug(ctx, "collection item removed", "collection", s.kind.Name, "userID", userID, "recipeID", recipeID)
	return nil
}

// Contains reports which of recipeIDs are in the user's collection, in a
// single query. A zero userID is an anonymous viewer with empty collections.
func (s *Store) Contains(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return out, nil
	}

	var ids []uint
	if err := s.MemberQuery(ctx, userID).
		Where("recipe_id IN ?", recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load %s membership: %w", s.kind.Name, err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// MemberQuery selects the recipe ids in the user's collection. It is meant to
// be used as a subquery.
func (s *Store) MemberQuery(ctx context.Context, userID uint) *gorm.DB {
	owners := s.db.WithContext(ctx).Table(s.kind.ownerTable).Select("id").Where("user_id = ?", userID)
	return s.db.WithContext(ctx).
		Table(s.kind.joinTable).
		Select("recipe_id").
		Where(s.kind.ownerColumn+" IN (?)", owners)
}

// ensureOwner returns the id of the user's collection row, creating it when
// missing. A concurrent insert for the same user is absorbed by the conflict
// clause so the surrounding transaction stays usable.
func (s *Store) ensureOwner(tx *gorm.DB, userID uint) (uint, error) {
	now := time.Now().UTC()
	err := tx.Table(s.kind.ownerTable).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(map[string]any{
			"user_id":    userID,
			"created_at": now,
			"updated_at": now,
		}).Error
	if err != nil {
		return 0, fmt.Errorf("create %s owner: %w", s.kind.Name, err)
	}

	var ids []uint
	if err := tx.Table(s.kind.ownerTable).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("load %s owner: %w", s.kind.Name, err)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%s owner for user %d was not created", s.kind.Name, userID)
	}
	return ids[0], nil
}

func (s *Store) loadRecipe(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("recipe")
		}
		return nil, fmt.Errorf("load recipe %d: %w", recipeID, err)
	}
	return &recipe, nil
}
