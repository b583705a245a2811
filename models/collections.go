package models

import "time"

// FavoriteRecipe holds the set of recipes a user marked as favorite.
// There is at most one row per user.
type FavoriteRecipe struct {
	ID        uint     `gorm:"primaryKey"`
	UserID    uint     `gorm:"not null;uniqueIndex"`
	User      *User    `gorm:"foreignKey:UserID"`
	Recipes   []Recipe `gorm:"many2many:favorite_recipe_recipes"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShoppingCart holds the set of recipes a user plans to shop for.
// There is at most one row per user.
type ShoppingCart struct {
	ID        uint     `gorm:"primaryKey"`
	UserID    uint     `gorm:"not null;uniqueIndex"`
	User      *User    `gorm:"foreignKey:UserID"`
	Recipes   []Recipe `gorm:"many2many:shopping_cart_recipes"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&RecipeIngredient{},
		&Subscribe{},
		&FavoriteRecipe{},
		&ShoppingCart{},
		&Session{},
	}
}
