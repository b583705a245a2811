package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"foodgram/internal/collections"
	applog "foodgram/internal/log"
	"foodgram/internal/paging"
	"foodgram/internal/recipes"
	"foodgram/internal/views/shoppinglist"
)

// ListRecipes returns a filtered page of recipes, newest first.
func ListRecipes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := paging.FromQuery(query, app.rules.PageSize)
	filter := recipeFilter(r)

	views, total, err := app.recipes.List(r.Context(), viewerID(r), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	results := make([]recipeResponse, 0, len(views))
	for _, view := range views {
		results = append(results, newRecipeResponse(view))
	}
	writeJSON(w, r, http.StatusOK, paging.NewEnvelope(r.URL, page, total, results))
}

// CreateRecipe publishes a recipe authored by the current user.
func CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var in recipes.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := app.recipes.Create(r.Context(), viewerID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	app.metrics.RecipesCreated.Inc()
	writeJSON(w, r, http.StatusCreated, newRecipeResponse(*view))
}

// GetRecipe returns one recipe.
func GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "recipe")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := app.recipes.Get(r.Context(), viewerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newRecipeResponse(*view))
}

// UpdateRecipe applies a partial update from the recipe's author.
func UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "recipe")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in recipes.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := app.recipes.Update(r.Context(), viewerID(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newRecipeResponse(*view))
}

// DeleteRecipe removes a recipe owned by the current user.
func DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "recipe")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := app.recipes.Delete(r.Context(), viewerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	app.metrics.RecipesDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// AddFavorite, RemoveFavorite, AddToShoppingCart and RemoveFromShoppingCart
// toggle collection membership of the recipe in the URL.
func AddFavorite(w http.ResponseWriter, r *http.Request) { addToCollection(w, r, app.favorites) }

func RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	removeFromCollection(w, r, app.favorites)
}

func AddToShoppingCart(w http.ResponseWriter, r *http.Request) { addToCollection(w, r, app.cart) }

func RemoveFromShoppingCart(w http.ResponseWriter, r *http.Request) {
	removeFromCollection(w, r, app.cart)
}

func addToCollection(w http.ResponseWriter, r *http.Request, store *collections.Store) {
	id, err := pathID(r, "id", "recipe")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recipe, err := store.Add(r.Context(), viewerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	app.metrics.CollectionChanges.WithLabelValues(store.Kind().Name, "add").Inc()
	writeJSON(w, r, http.StatusCreated, newShortRecipeResponse(*recipe))
}

func removeFromCollection(w http.ResponseWriter, r *http.Request, store *collections.Store) {
	id, err := pathID(r, "id", "recipe")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := store.Remove(r.Context(), viewerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	app.metrics.CollectionChanges.WithLabelValues(store.Kind().Name, "remove").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated ingredient list as a text file.
func DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	items, err := app.cart.ShoppingList(r.Context(), viewerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines := make([]shoppinglist.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, shoppinglist.Line{Name: item.Name, Unit: item.MeasurementUnit, Amount: item.Amount})
	}

	var buf bytes.Buffer
	if err := shoppinglist.Text(lines).Render(r.Context(), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	applog.Debug(r.Context(), "shopping list rendered", "items", len(lines))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+shoppinglist.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func recipeFilter(r *http.Request) recipes.Filter {
	query := r.URL.Query()
	filter := recipes.Filter{
		IsFavorited:      flagParam(query.Get("is_favorited")),
		IsInShoppingCart: flagParam(query.Get("is_in_shopping_cart")),
	}
	if author, err := strconv.ParseUint(query.Get("author"), 10, 64); err == nil {
		filter.AuthorID = uint(author)
	}
	for _, slug := range query["tags"] {
		if slug = strings.TrimSpace(slug); slug != "" {
			filter.Tags = append(filter.Tags, slug)
		}
	}
	return filter
}

// flagParam parses 1/0 (or true/false) filter values; anything else is unset.
func flagParam(value string) *bool {
	var flag bool
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true":
		flag = true
	case "0", "false":
		flag = false
	default:
		return nil
	}
	return &flag
}
