package repository

import (
	"context"
	"errors"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository persists the single refresh-token record per user.
type RefreshTokenRepository interface {
	Upsert(rec *domain.RefreshToken) error
	FindByUserID(userID uint) (*domain.RefreshToken, error)
	// Rotate atomically replaces the stored token, guarded on the record
	// still holding oldToken unrevoked and unexpired. Returns false when the
	// guard fails, which is how exactly one of two concurrent rotations for
	// the same token wins.
	Rotate(userID uint, oldToken, newToken string, expiresAt time.Time) (bool, error)
	Revoke(userID uint) error
	DeleteExpired() (int64, error)
}

type GormRefreshTokenRepository struct{ db *gorm.DB }

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

func (r *GormRefreshTokenRepository) Upsert(rec *domain.RefreshToken) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "is_revoked", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "upsert", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "upsert", "success")
	return nil
}

func (r *GormRefreshTokenRepository) FindByUserID(userID uint) (*domain.RefreshToken, error) {
	var rec domain.RefreshToken
	err := r.db.Where("user_id = ?", userID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "refresh_token", "find_by_user_id", "not_found")
			return nil, ErrRefreshTokenNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "find_by_user_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "find_by_user_id", "success")
	return &rec, nil
}

func (r *GormRefreshTokenRepository) Rotate(userID uint, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	res := r.db.Model(&domain.RefreshToken{}).
		Where("user_id = ? AND token = ? AND is_revoked = ? AND expires_at > ?", userID, oldToken, false, time.Now()).
		Updates(map[string]any{"token": newToken, "expires_at": expiresAt, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "rotate", "error")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "rotate", "stale")
		return false, nil
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "rotate", "success")
	return true, nil
}

func (r *GormRefreshTokenRepository) Revoke(userID uint) error {
	err := r.db.Model(&domain.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "revoke", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "revoke", "success")
	return nil
}

func (r *GormRefreshTokenRepository) DeleteExpired() (int64, error) {
	res := r.db.Where("expires_at <= ?", time.Now()).Delete(&domain.RefreshToken{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "refresh_token", "delete_expired", "error")
		return res.RowsAffected, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "refresh_token", "delete_expired", "success")
	return res.RowsAffected, nil
}
