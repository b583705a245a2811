package testdb

import (
	"fmt"
	"testing"

	"gorm.io/gorm"

	"foodgram/models"
)

// CreateUser inserts a user whose email is derived from username.
func CreateUser(t testing.TB, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    username,
		LastName:     "Tester",
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateIngredient inserts a reference ingredient.
func CreateIngredient(t testing.TB, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// CreateTag inserts a tag with a colour derived from its position.
func CreateTag(t testing.TB, db *gorm.DB, name string) models.Tag {
	t.Helper()

	var count int64
	db.Model(&models.Tag{}).Count(&count)
	tag := models.Tag{
		Name:  name,
		Color: fmt.Sprintf("#%06X", 0x100000+count),
		Slug:  models.Slugify(name),
	}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", name, err)
	}
	return tag
}

// CreateRecipe inserts a recipe for authorID. amounts maps ingredient ids to
// the quantity used.
func CreateRecipe(t testing.TB, db *gorm.DB, authorID uint, name string, amounts map[uint]int, tags ...models.Tag) models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Image:       "recipes/" + models.Slugify(name) + ".jpg",
		Text:        "Cook " + name + " well.",
		CookingTime: 15,
		Tags:        tags,
	}
	for id, amount := range amounts {
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{IngredientID: id, Amount: amount})
	}
	if err := db.Omit("Tags.*").Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return recipe
}
