// Package subscriptions manages follow edges between users.
package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"foodgram/internal/apperr"
	applog "foodgram/internal/log"
	"foodgram/internal/paging"
	"foodgram/models"
)

// Service stores and queries subscriptions.
type Service struct {
	db *gorm.DB
}

// NewService builds a subscription service on top of db.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Entry is one followed author with a preview of their recipes.
type Entry struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// Subscribe makes userID follow authorID.
func (s *Service) Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error) {
	if userID == authorID {
		return nil, apperr.Invalid("", "you cannot subscribe to yourself")
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("load author %d: %w", authorID, err)
	}

	subscribed, err := s.SubscribedTo(ctx, userID, []uint{authorID})
	if err != nil {
		return nil, err
	}
	if subscribed[authorID] {
		return nil, alreadySubscribed()
	}

	edge := models.Subscribe{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, alreadySubscribed()
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	applog.Debug(ctx, "subscribed", "userID", userID, "authorID", authorID)
	return &author, nil
}

// Unsubscribe removes the edge from userID to authorID.
func (s *Service) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return fmt.Errorf("check author %d: %w", authorID, err)
	}
	if count == 0 {
		return apperr.NotFound("user")
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscribe{})
	if result.Error != nil {
		return fmt.Errorf("delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Invalid("", "you are not subscribed to this author")
	}

	applog.Debug(ctx, "unsubscribed", "userID", userID, "authorID", authorID)
	return nil
}

// SubscribedTo reports which of authorIDs userID follows, in a single query.
// A zero userID is an anonymous viewer and follows nobody.
func (s *Service) SubscribedTo(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return out, nil
	}

	var ids []uint
	if err := s.db.WithContext(ctx).
		Model(&models.Subscribe{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// NoRecipeLimit asks for every recipe of each author.
const NoRecipeLimit = -1

// List returns the authors userID follows, newest subscription first. Each
// entry carries at most recipesLimit recipes unless it is NoRecipeLimit.
func (s *Service) List(ctx context.Context, userID uint, page paging.Page, recipesLimit int) ([]Entry, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Subscribe{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	var edges []models.Subscribe
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&edges).Error; err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}
	if len(edges) == 0 {
		return []Entry{}, total, nil
	}

	authors := make([]models.User, 0, len(edges))
	for _, edge := range edges {
		if edge.Author != nil {
			authors = append(authors, *edge.Author)
		}
	}
	entries, err := s.describe(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Describe builds the entry shown for a single followed author.
func (s *Service) Describe(ctx context.Context, author models.User, recipesLimit int) (Entry, error) {
	entries, err := s.describe(ctx, []models.User{author}, recipesLimit)
	if err != nil {
		return Entry{}, err
	}
	return entries[0], nil
}

func (s *Service) describe(ctx context.Context, authors []models.User, recipesLimit int) ([]Entry, error) {
	if len(authors) == 0 {
		return []Entry{}, nil
	}
	authorIDs := make([]uint, 0, len(authors))
	for _, author := range authors {
		authorIDs = append(authorIDs, author.ID)
	}

	counts, err := s.recipeCounts(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("pub_date desc, id desc").
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("load author recipes: %w", err)
	}
	byAuthor := make(map[uint][]models.Recipe, len(authorIDs))
	for _, recipe := range recipes {
		if recipesLimit >= 0 && len(byAuthor[recipe.AuthorID]) >= recipesLimit {
			continue
		}
		byAuthor[recipe.AuthorID] = append(byAuthor[recipe.AuthorID], recipe)
	}

	entries := make([]Entry, 0, len(authors))
	for _, author := range authors {
		entries = append(entries, Entry{
			Author:       author,
			Recipes:      byAuthor[author.ID],
			RecipesCount: counts[author.ID],
		})
	}
	return entries, nil
}

func (s *Service) recipeCounts(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, count(*) as total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count author recipes: %w", err)
	}
	out := make(map[uint]int64, len(rows))
	for _, row := range rows {
		out[row.AuthorID] = row.Total
	}
	return out, nil
}

func alreadySubscribed() error {
	return apperr.Invalid("", "you are already subscribed to this author")
}
