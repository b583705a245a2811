package handlers

import (
	"context"
	"time"

	"foodgram/internal/recipes"
	"foodgram/internal/subscriptions"
	"foodgram/models"
)

type userResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type registeredUserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type tagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type ingredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type recipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []tagResponse              `json:"tags"`
	Author           userResponse               `json:"author"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	PubDate          time.Time                  `json:"pub_date"`
}

type shortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type subscriptionResponse struct {
	userResponse
	Recipes      []shortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func newUserResponse(user models.User, subscribed bool) userResponse {
	return userResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

// userResponses projects a page of users with is_subscribed computed in one query.
func userResponses(ctx context.Context, viewer uint, list []models.User) ([]userResponse, error) {
	ids := make([]uint, 0, len(list))
	for _, user := range list {
		ids = append(ids, user.ID)
	}
	subscribed, err := app.subscriptions.SubscribedTo(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}
	out := make([]userResponse, 0, len(list))
	for _, user := range list {
		out = append(out, newUserResponse(user, subscribed[user.ID]))
	}
	return out, nil
}

func newTagResponse(tag models.Tag) tagResponse {
	return tagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
}

func newIngredientResponse(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{ID: ingredient.ID, Name: ingredient.Name, MeasurementUnit: ingredient.MeasurementUnit}
}

func newRecipeResponse(view recipes.View) recipeResponse {
	recipe := view.Recipe
	resp := recipeResponse{
		ID:               recipe.ID,
		Tags:             make([]tagResponse, 0, len(recipe.Tags)),
		Ingredients:      make([]recipeIngredientResponse, 0, len(recipe.Ingredients)),
		IsFavorited:      view.IsFavorited,
		IsInShoppingCart: view.IsInShoppingCart,
		Name:             recipe.Name,
		Image:            app.media.URL(recipe.Image),
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		PubDate:          recipe.PubDate,
	}
	if recipe.Author != nil {
		resp.Author = newUserResponse(*recipe.Author, view.AuthorSubscribed)
	}
	for _, tag := range recipe.Tags {
		resp.Tags = append(resp.Tags, newTagResponse(tag))
	}
	for _, row := range recipe.Ingredients {
		item := recipeIngredientResponse{ID: row.IngredientID, Amount: row.Amount}
		if row.Ingredient != nil {
			item.Name = row.Ingredient.Name
			item.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, item)
	}
	return resp
}

func newShortRecipeResponse(recipe models.Recipe) shortRecipeResponse {
	return shortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       app.media.URL(recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}

func newSubscriptionResponse(entry subscriptions.Entry) subscriptionResponse {
	resp := subscriptionResponse{
		userResponse: newUserResponse(entry.Author, true),
		Recipes:      make([]shortRecipeResponse, 0, len(entry.Recipes)),
		RecipesCount: entry.RecipesCount,
	}
	for _, recipe := range entry.Recipes {
		resp.Recipes = append(resp.Recipes, newShortRecipeResponse(recipe))
	}
	return resp
}
