package handlers

import (
	"net/http"
)

// ListTags returns every tag.
func ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := app.catalog.ListTags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, newTagResponse(tag))
	}
	writeJSON(w, r, http.StatusOK, out)
}

// GetTag returns one tag.
func GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "tag")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tag, err := app.catalog.GetTag(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newTagResponse(*tag))
}

// ListIngredients returns ingredients whose name starts with ?name=.
func ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := app.catalog.ListIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]ingredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		out = append(out, newIngredientResponse(ingredient))
	}
	writeJSON(w, r, http.StatusOK, out)
}

// GetIngredient returns one ingredient.
func GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "ingredient")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ingredient, err := app.catalog.GetIngredient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newIngredientResponse(*ingredient))
}
