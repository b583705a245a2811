package collections

import (
	"context"
	"fmt"
)

// Item is one line of a shopping list: the total amount of an ingredient
// across every recipe in the cart.
type Item struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingList sums ingredient amounts over the recipes in the user's
// collection, grouped by ingredient name and unit and ordered by name.
func (s *Store) ShoppingList(ctx context.Context, userID uint) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("ingredients.deleted_at IS NULL").
		Where("recipe_ingredients.recipe_id IN (?)", s.MemberQuery(ctx, userID)).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name asc, ingredients.measurement_unit asc").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
