package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "polopay_backend/internals/features/users/auth/model"
)

/* ====================== USER ====================== */

func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*authModel.UserModel, error) {
	var user authModel.UserModel
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*authModel.UserModel, error) {
	var user authModel.UserModel
	if err := db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db *gorm.DB, user *authModel.UserModel) error {
	return db.WithContext(ctx).Create(user).Error
}

func UpdateLastLogin(ctx context.Context, db *gorm.DB, userID uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).Model(&authModel.UserModel{}).
		Where("id = ?", userID).
		Update("last_login_at", at).Error
}

/* ====================== SESSIONS ====================== */

func CreateSession(ctx context.Context, db *gorm.DB, s *authModel.UserSessionModel) error {
	return db.WithContext(ctx).Create(s).Error
}

func FindSessionByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*authModel.UserSessionModel, error) {
	var s authModel.UserSessionModel
	if err := db.WithContext(ctx).First(&s, "user_session_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func RevokeSession(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).Model(&authModel.UserSessionModel{}).
		Where("user_session_id = ? AND user_session_revoked_at IS NULL", id).
		Update("user_session_revoked_at", at).Error
}

func TouchSession(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).Model(&authModel.UserSessionModel{}).
		Where("user_session_id = ?", id).
		Update("user_session_last_seen_at", at).Error
}

// DeleteStaleSessions removes sessions that expired or were revoked before cutoff.
func DeleteStaleSessions(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_session_expires_at < ? OR (user_session_revoked_at IS NOT NULL AND user_session_revoked_at < ?)", cutoff, cutoff).
		Delete(&authModel.UserSessionModel{})
	return res.RowsAffected, res.Error
}
