// Package users manages accounts: registration, credential checks and
// password changes.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/apperr"
	applog "foodgram/internal/log"
	"foodgram/internal/paging"
	"foodgram/models"
)

// Service persists and authenticates users.
type Service struct {
	db       *gorm.DB
	hashCost int
}

// Option customises a Service.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost, mostly to keep tests fast.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

// NewService builds a user service on top of db.
func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput is the payload accepted when creating an account.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required"`
}

// Register validates the input and creates a new account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = models.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := validatePassword("password", in.Password, in.Username, in.Email); err != nil {
		return nil, err
	}

	if taken, err := s.exists(ctx, "lower(email) = ?", in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.Invalid("email", "a user with that email already exists")
	}
	if taken, err := s.exists(ctx, "username = ?", in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.Invalid("username", "a user with that username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashed),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Invalid("", "a user with that email or username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	applog.Debug(ctx, "user registered", "userID", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, apperr.Invalid("email", "email is required")
	}
	if password == "" {
		return nil, apperr.Invalid("password", "password is required")
	}

	user, err := s.findByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}
	return user, nil
}

// PasswordChange is the payload of the set-password operation.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ChangePassword replaces the password of userID after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uint, in PasswordChange) error {
	if err := validateStruct(in); err != nil {
		return err
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return &apperr.ValidationError{Field: "current_password", Message: "invalid credentials"}
	}
	if err := validatePassword("new_password", in.NewPassword, user.Username, user.Email); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", string(hashed)).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	applog.Debug(ctx, "password changed", "userID", userID)
	return nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

// List returns one page of users ordered by id together with the total count.
func (s *Service) List(ctx context.Context, page paging.Page) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("id asc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("lower(email) = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *Service) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return count > 0, nil
}

func invalidCredentials() error {
	return &apperr.ValidationError{Message: "invalid credentials"}
}
