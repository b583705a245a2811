package mock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/db"
	applog "foodgram/internal/log"
	"foodgram/models"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "foodgram-demo"

// New returns an in-memory sqlite database seeded with a small recipe book.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := db.OpenSQLite(fmt.Sprintf("file:foodgram-mock-%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cooks := []models.User{
			{Email: "marta@foodgram.app", Username: "marta", FirstName: "Marta", LastName: "Ruiz", PasswordHash: string(password)},
			{Email: "kenji@foodgram.app", Username: "kenji", FirstName: "Kenji", LastName: "Ito", PasswordHash: string(password)},
		}
		if err := tx.Create(&cooks).Error; err != nil {
			return err
		}

		tags := []models.Tag{
			{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
			{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
			{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
		}
		if err := tx.Create(&tags).Error; err != nil {
			return err
		}

		ingredients := []models.Ingredient{
			{Name: "eggs", MeasurementUnit: "pcs"},
			{Name: "milk", MeasurementUnit: "ml"},
			{Name: "wheat flour", MeasurementUnit: "g"},
			{Name: "butter", MeasurementUnit: "g"},
			{Name: "salt", MeasurementUnit: "pinch"},
			{Name: "rice", MeasurementUnit: "g"},
			{Name: "soy sauce", MeasurementUnit: "tbsp"},
			{Name: "spring onion", MeasurementUnit: "pcs"},
		}
		if err := tx.Create(&ingredients).Error; err != nil {
			return err
		}
		byName := make(map[string]uint, len(ingredients))
		for _, ingredient := range ingredients {
			byName[ingredient.Name] = ingredient.ID
		}

		recipes := []struct {
			recipe  models.Recipe
			amounts map[string]int
		}{
			{
				recipe: models.Recipe{
					AuthorID: cooks[0].ID, Name: "Buttermilk pancakes", CookingTime: 25,
					Image: "recipes/pancakes.jpg", Text: "Whisk the batter, rest it for ten minutes and fry in butter.",
					Tags: []models.Tag{tags[0]},
				},
				amounts: map[string]int{"eggs": 2, "milk": 300, "wheat flour": 200, "butter": 30},
			},
			{
				recipe: models.Recipe{
					AuthorID: cooks[0].ID, Name: "French omelette", CookingTime: 10,
					Image: "recipes/omelette.jpg", Text: "Stir the eggs constantly over low heat and roll.",
					Tags: []models.Tag{tags[0], tags[1]},
				},
				amounts: map[string]int{"eggs": 3, "butter": 10, "salt": 1},
			},
			{
				recipe: models.Recipe{
					AuthorID: cooks[1].ID, Name: "Egg fried rice", CookingTime: 15,
					Image: "recipes/fried-rice.jpg", Text: "Fry day-old rice on high heat, push aside and scramble the eggs.",
					Tags: []models.Tag{tags[1], tags[2]},
				},
				amounts: map[string]int{"rice": 300, "eggs": 2, "soy sauce": 2, "spring onion": 2},
			},
		}
		created := make([]models.Recipe, 0, len(recipes))
		for _, item := range recipes {
			recipe := item.recipe
			for name, amount := range item.amounts {
				recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{IngredientID: byName[name], Amount: amount})
			}
			if err := tx.Omit("Tags.*").Create(&recipe).Error; err != nil {
				return err
			}
			created = append(created, recipe)
		}

		if err := tx.Create(&models.Subscribe{UserID: cooks[1].ID, AuthorID: cooks[0].ID}).Error; err != nil {
			return err
		}
		favorites := models.FavoriteRecipe{UserID: cooks[1].ID, Recipes: []models.Recipe{created[0]}}
		if err := tx.Omit("Recipes.*").Create(&favorites).Error; err != nil {
			return err
		}
		cart := models.ShoppingCart{UserID: cooks[1].ID, Recipes: []models.Recipe{created[0], created[2]}}
		return tx.Omit("Recipes.*").Create(&cart).Error
	})
}
