package recipes

import (
	"strings"

	"foodgram/internal/apperr"
	"foodgram/internal/config"
)

const maxNameLength = 255

// IngredientAmount is one ingredient line of a recipe submission.
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// Input is a recipe submission. Nil fields are absent: on create they are
// reported as missing, on update the stored value is kept. Ingredients and
// tags replace the stored set when present.
type Input struct {
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
	Image       *string            `json:"image"`
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uint             `json:"tags"`
}

// references holds the ids of the ingredients and tags that exist.
type references struct {
	ingredients map[uint]bool
	tags        map[uint]bool
}

// validateInput checks a submission in a fixed order and reports the first
// problem. The image payload itself is decoded later by the image store.
func validateInput(in Input, rules config.RecipeRules, known references, creating bool) error {
	if creating || in.Name != nil {
		name := strings.TrimSpace(deref(in.Name))
		if name == "" {
			return apperr.Invalid("name", "name is required")
		}
		if len([]rune(name)) > maxNameLength {
			return apperr.Invalid("name", "name must be at most %d characters", maxNameLength)
		}
	}
	if creating || in.Text != nil {
		if strings.TrimSpace(deref(in.Text)) == "" {
			return apperr.Invalid("text", "text is required")
		}
	}

	if creating || in.Ingredients != nil {
		if err := validateIngredients(in.Ingredients, rules, known.ingredients); err != nil {
			return err
		}
	}

	if creating || in.Tags != nil {
		if err := validateTags(in.Tags, known.tags); err != nil {
			return err
		}
	}

	if creating || in.CookingTime != nil {
		if in.CookingTime == nil || *in.CookingTime < rules.MinCookingTime {
			return apperr.Invalid("cooking_time", "cooking time must be at least %d %s", rules.MinCookingTime, plural(rules.MinCookingTime, "minute"))
		}
	}

	if creating || in.Image != nil {
		if strings.TrimSpace(deref(in.Image)) == "" {
			return apperr.Invalid("image", "image is required")
		}
	}
	return nil
}

func validateIngredients(items []IngredientAmount, rules config.RecipeRules, known map[uint]bool) error {
	if len(items) == 0 {
		return apperr.Invalid("ingredients", "recipe must contain at least one ingredient")
	}
	for _, item := range items {
		if item.Amount < rules.MinIngredientAmount {
			return apperr.Invalid("ingredients", "ingredient %d amount must be at least %d", item.ID, rules.MinIngredientAmount)
		}
	}
	for _, item := range items {
		if !known[item.ID] {
			return apperr.Invalid("ingredients", "ingredient %d does not exist", item.ID)
		}
	}
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return apperr.Invalid("ingredients", "duplicate ingredient %d", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

func validateTags(ids []uint, known map[uint]bool) error {
	if len(ids) == 0 {
		return apperr.Invalid("tags", "recipe must have at least one tag")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if !known[id] {
			return apperr.Invalid("tags", "tag %d does not exist", id)
		}
		if _, dup := seen[id]; dup {
			return apperr.Invalid("tags", "duplicate tag %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
