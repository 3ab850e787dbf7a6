package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSessionModel is the server-side record behind every issued session token.
// A token is honoured only while its row is neither revoked nor expired.
type UserSessionModel struct {
	UserSessionID         uuid.UUID  `gorm:"column:user_session_id;type:uuid;primaryKey" json:"user_session_id"`
	UserSessionUserID     uuid.UUID  `gorm:"column:user_session_user_id;type:uuid;not null;index" json:"user_session_user_id"`
	UserSessionTenantID   *uuid.UUID `gorm:"column:user_session_tenant_id;type:uuid" json:"user_session_tenant_id"`
	UserSessionRole       string     `gorm:"column:user_session_role;size:20;not null" json:"user_session_role"`
	UserSessionUserAgent  string     `gorm:"column:user_session_user_agent;size:255" json:"user_session_user_agent"`
	UserSessionIP         string     `gorm:"column:user_session_ip;size:64" json:"user_session_ip"`
	UserSessionExpiresAt  time.Time  `gorm:"column:user_session_expires_at;not null;index" json:"user_session_expires_at"`
	UserSessionRevokedAt  *time.Time `gorm:"column:user_session_revoked_at" json:"user_session_revoked_at"`
	UserSessionLastSeenAt *time.Time `gorm:"column:user_session_last_seen_at" json:"user_session_last_seen_at"`
	UserSessionCreatedAt  time.Time  `gorm:"column:user_session_created_at;autoCreateTime" json:"user_session_created_at"`
}

func (UserSessionModel) TableName() string {
	return "user_sessions"
}

func (s *UserSessionModel) BeforeCreate(*gorm.DB) error {
	if s.UserSessionID == uuid.Nil {
		s.UserSessionID = uuid.New()
	}
	return nil
}

func (s *UserSessionModel) Usable(now time.Time) bool {
	return s.UserSessionRevokedAt == nil && now.Before(s.UserSessionExpiresAt)
}
