// Package recipes implements recipe composition: validated create and update
// of recipes with their ingredient amounts and tags, filtered listing, and the
// per-viewer relationship flags.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"foodgram/internal/apperr"
	"foodgram/internal/collections"
	"foodgram/internal/config"
	applog "foodgram/internal/log"
	"foodgram/internal/paging"
	"foodgram/models"
)

// ImageStore persists submitted recipe pictures.
type ImageStore interface {
	// SaveImage decodes a base64 data URI and returns the stored key.
	SaveImage(ctx context.Context, dataURI string) (string, error)
	DeleteImage(ctx context.Context, key string) error
}

// Collection is a per-user recipe set such as favorites.
type Collection interface {
	Contains(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
	MemberQuery(ctx context.Context, userID uint) *gorm.DB
}

// SubscriptionChecker reports which authors a user follows.
type SubscriptionChecker interface {
	SubscribedTo(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
}

// Dependencies wires a Service to its collaborators.
type Dependencies struct {
	Rules         config.RecipeRules
	Images        ImageStore
	Favorites     Collection
	ShoppingCart  Collection
	Subscriptions SubscriptionChecker
}

// Service creates, updates and queries recipes.
type Service struct {
	db   *gorm.DB
	deps Dependencies
}

// NewService builds a recipe service.
func NewService(db *gorm.DB, deps Dependencies) *Service {
	return &Service{db: db, deps: deps}
}

// View is a recipe as seen by one viewer.
type View struct {
	Recipe           models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// Filter narrows a recipe listing. Nil flag filters are not applied.
type Filter struct {
	AuthorID         uint
	Tags             []string
	IsFavorited      *bool
	IsInShoppingCart *bool
}

// Create validates in and stores a new recipe authored by authorID.
func (s *Service) Create(ctx context.Context, authorID uint, in Input) (*View, error) {
	known, err := s.loadReferences(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in, s.deps.Rules, known, true); err != nil {
		return nil, err
	}

	imageKey, err := s.deps.Images.SaveImage(ctx, *in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(*in.Name),
		Text:        *in.Text,
		CookingTime: *in.CookingTime,
		Image:       imageKey,
		Ingredients: ingredientRows(0, in.Ingredients),
		Tags:        tagRefs(in.Tags),
	}
	if err := s.db.WithContext(ctx).Omit("Tags.*").Create(&recipe).Error; err != nil {
		s.discardImage(ctx, imageKey)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Invalid("ingredients", "duplicate ingredient")
		}
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	applog.Debug(ctx, "recipe created", "recipeID", recipe.ID, "authorID", authorID)
	return s.Get(ctx, authorID, recipe.ID)
}

// Update applies a partial change to a recipe owned by userID.
func (s *Service) Update(ctx context.Context, userID, id uint, in Input) (*View, error) {
	existing, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	known, err := s.loadReferences(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in, s.deps.Rules, known, false); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Text != nil {
		changes["text"] = *in.Text
	}
	if in.CookingTime != nil {
		changes["cooking_time"] = *in.CookingTime
	}
	oldImage := existing.Image
	var newImage string
	if in.Image != nil {
		newImage, err = s.deps.Images.SaveImage(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		changes["image"] = newImage
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(changes) > 0 {
			if err := tx.Model(existing).Updates(changes).Error; err != nil {
				return fmt.Errorf("update recipe: %w", err)
			}
		}
		if in.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return fmt.Errorf("clear recipe ingredients: %w", err)
			}
			rows := ingredientRows(id, in.Ingredients)
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("store recipe ingredients: %w", err)
			}
		}
		if in.Tags != nil {
			if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
				return fmt.Errorf("clear recipe tags: %w", err)
			}
			links := make([]map[string]any, 0, len(in.Tags))
			for _, tagID := range in.Tags {
				links = append(links, map[string]any{"recipe_id": id, "tag_id": tagID})
			}
			if err := tx.Table("recipe_tags").Create(links).Error; err != nil {
				return fmt.Errorf("store recipe tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if newImage != "" {
			s.discardImage(ctx, newImage)
		}
		return nil, err
	}
	if newImage != "" && oldImage != "" {
		s.discardImage(ctx, oldImage)
	}

	applog.Debug(ctx, "recipe updated", "recipeID", id, "userID", userID)
	return s.Get(ctx, userID, id)
}

// Delete removes a recipe owned by userID together with its ingredient rows,
// tag links and collection memberships.
func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	existing, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("delete recipe ingredients: %w", err)
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete recipe tags: %w", err)
		}
		for _, kind := range collections.Kinds() {
			if err := kind.PurgeRecipe(tx, id); err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Recipe{}, id).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if existing.Image != "" {
		s.discardImage(ctx, existing.Image)
	}

	applog.Debug(ctx, "recipe deleted", "recipeID", id, "userID", userID)
	return nil
}

// Get loads one recipe with its flags for viewerID (zero for anonymous).
func (s *Service) Get(ctx context.Context, viewerID, id uint) (*View, error) {
	var recipe models.Recipe
	if err := s.withDetails(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("recipe")
		}
		return nil, fmt.Errorf("load recipe %d: %w", id, err)
	}

	views, err := s.annotate(ctx, viewerID, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of recipes matching filter, newest first, with the
// total number of matches.
func (s *Service) List(ctx context.Context, viewerID uint, filter Filter, page paging.Page) ([]View, int64, error) {
	query, empty := s.filtered(ctx, viewerID, filter)
	if empty {
		return []View{}, 0, nil
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Model(&models.Recipe{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var recipes []models.Recipe
	if err := s.withDetails(query.Session(&gorm.Session{})).
		Order("recipes.pub_date desc, recipes.id desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}

	views, err := s.annotate(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// filtered builds the base listing query. empty is true when the filter can
// never match, which is the case for an anonymous viewer asking for members
// of a collection.
func (s *Service) filtered(ctx context.Context, viewerID uint, filter Filter) (*gorm.DB, bool) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.Tags) > 0 {
		tagged := s.db.WithContext(ctx).
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ? AND tags.deleted_at IS NULL", filter.Tags)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	flags := []struct {
		want       *bool
		collection Collection
	}{
		{filter.IsFavorited, s.deps.Favorites},
		{filter.IsInShoppingCart, s.deps.ShoppingCart},
	}
	for _, flag := range flags {
		if flag.want == nil || flag.collection == nil {
			continue
		}
		if viewerID == 0 {
			if *flag.want {
				return nil, true
			}
			continue
		}
		members := flag.collection.MemberQuery(ctx, viewerID)
		if *flag.want {
			query = query.Where("recipes.id IN (?)", members)
		} else {
			query = query.Where("recipes.id NOT IN (?)", members)
		}
	}
	return query, false
}

func (s *Service) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id asc") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id asc") }).
		Preload("Ingredients.Ingredient")
}

// annotate computes the viewer flags for a page with one query per flag.
func (s *Service) annotate(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]View, error) {
	views := make([]View, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	ids := make([]uint, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for i, recipe := range recipes {
		ids[i] = recipe.ID
		authorIDs = append(authorIDs, recipe.AuthorID)
	}

	favorited, err := contains(ctx, s.deps.Favorites, viewerID, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := contains(ctx, s.deps.ShoppingCart, viewerID, ids)
	if err != nil {
		return nil, err
	}
	subscribed := map[uint]bool{}
	if s.deps.Subscriptions != nil && viewerID != 0 {
		subscribed, err = s.deps.Subscriptions.SubscribedTo(ctx, viewerID, authorIDs)
		if err != nil {
			return nil, err
		}
	}

	for i, recipe := range recipes {
		views[i] = View{
			Recipe:           recipe,
			IsFavorited:      favorited[recipe.ID],
			IsInShoppingCart: inCart[recipe.ID],
			AuthorSubscribed: subscribed[recipe.AuthorID],
		}
	}
	return views, nil
}

func contains(ctx context.Context, collection Collection, viewerID uint, ids []uint) (map[uint]bool, error) {
	if collection == nil || viewerID == 0 {
		return map[uint]bool{}, nil
	}
	return collection.Contains(ctx, viewerID, ids)
}

func (s *Service) loadOwned(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("recipe")
		}
		return nil, fmt.Errorf("load recipe %d: %w", id, err)
	}
	if recipe.AuthorID != userID {
		return nil, apperr.Forbidden("you do not have permission to modify this recipe")
	}
	return &recipe, nil
}

// loadReferences fetches which of the submitted ingredient and tag ids exist,
// one query per table.
func (s *Service) loadReferences(ctx context.Context, in Input) (references, error) {
	known := references{ingredients: map[uint]bool{}, tags: map[uint]bool{}}

	if len(in.Ingredients) > 0 {
		ids := make([]uint, 0, len(in.Ingredients))
		for _, item := range in.Ingredients {
			ids = append(ids, item.ID)
		}
		var found []uint
		if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return known, fmt.Errorf("load ingredients: %w", err)
		}
		for _, id := range found {
			known.ingredients[id] = true
		}
	}

	if len(in.Tags) > 0 {
		var found []uint
		if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", in.Tags).Pluck("id", &found).Error; err != nil {
			return known, fmt.Errorf("load tags: %w", err)
		}
		for _, id := range found {
			known.tags[id] = true
		}
	}
	return known, nil
}

func (s *Service) discardImage(ctx context.Context, key string) {
	if err := s.deps.Images.DeleteImage(ctx, key); err != nil {
		applog.Error(ctx, "failed to delete recipe image", "key", key, "error", err)
	}
}

func ingredientRows(recipeID uint, items []IngredientAmount) []models.RecipeIngredient {
	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: item.ID, Amount: item.Amount})
	}
	return rows
}

func tagRefs(ids []uint) []models.Tag {
	tags := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		tags = append(tags, models.Tag{Model: gorm.Model{ID: id}})
	}
	return tags
}
