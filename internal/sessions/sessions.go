// Package sessions backs auth tokens with scs sessions persisted through GORM.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodgram/internal/config"
	applog "foodgram/internal/log"
	"foodgram/models"
)

// Store implements scs.Store and scs.CtxStore on the sessions table.
type Store struct {
	db *gorm.DB
}

// NewStore returns a store writing to db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// NewManager builds a session manager for token authentication. A nil db
// keeps sessions in memory.
func NewManager(db *gorm.DB, cfg config.SessionConfig) *scs.SessionManager {
	sm := scs.New()
	if cfg.Lifetime > 0 {
		sm.Lifetime = cfg.Lifetime
	}
	if cfg.IdleTimeout > 0 {
		sm.IdleTimeout = cfg.IdleTimeout
	}
	if db != nil {
		sm.Store = NewStore(db)
	}
	return sm
}

func (s *Store) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

func (s *Store) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

func (s *Store) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

// FindCtx returns the payload of an unexpired session.
func (s *Store) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("token = ? AND expiry > ?", token, time.Now().UTC()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find session: %w", err)
	}
	return session.Data, true, nil
}

// CommitCtx inserts or replaces a session.
func (s *Store) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	session := models.Session{Token: token, Data: b, Expiry: expiry.UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expiry"}),
	}).Create(&session).Error
	if err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// DeleteCtx removes a session. Deleting an unknown token is not an error.
func (s *Store) DeleteCtx(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired drops every expired session and returns how many were removed.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expiry <= ?", time.Now().UTC()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// StartCleanup removes expired sessions every interval until ctx is done.
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.DeleteExpired(ctx)
				if err != nil {
					applog.Error(ctx, "session cleanup failed", "error", err)
					continue
				}
				if removed > 0 {
					applog.Debug(ctx, "expired sessions removed", "count", removed)
				}
			}
		}
	}()
}
