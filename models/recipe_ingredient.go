package models

// RecipeIngredient links a recipe to an ingredient with the amount used.
type RecipeIngredient struct {
	ID           uint        `gorm:"primaryKey"`
	RecipeID     uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID"`
	Amount       int         `gorm:"not null;default:1"`
}
