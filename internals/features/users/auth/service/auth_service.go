package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authModel "polopay_backend/internals/features/users/auth/model"
	authRepo "polopay_backend/internals/features/users/auth/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("account is disabled")
	ErrSessionInvalid     = errors.New("session is invalid or expired")
)

// touchInterval bounds how often last_seen_at is written for a busy session.
const touchInterval = time.Minute

type AuthService struct {
	DB     *gorm.DB
	Cache  SessionCache // nil disables caching
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func NewAuthService(db *gorm.DB, cache SessionCache, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{DB: db, Cache: cache, Secret: secret, TTL: ttl, Now: time.Now}
}

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Actor     authModel.Actor `json:"actor"`
}

// ========================== LOGIN ==========================
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ip string) (*LoginResult, error) {
	user, err := authRepo.FindUserByEmail(ctx, s.DB, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := CheckPasswordHash(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	now := s.Now()
	sess := &authModel.UserSessionModel{
		UserSessionUserID:    user.ID,
		UserSessionTenantID:  user.TenantID,
		UserSessionRole:      user.Role,
		UserSessionUserAgent: truncate(userAgent, 255),
		UserSessionIP:        truncate(ip, 64),
		UserSessionExpiresAt: now.Add(s.TTL),
	}
	if err := authRepo.CreateSession(ctx, s.DB, sess); err != nil {
		return nil, err
	}

	token, err := IssueSessionToken(s.Secret, sess.UserSessionID, user.ID, now, sess.UserSessionExpiresAt)
	if err != nil {
		return nil, err
	}
	if err := authRepo.UpdateLastLogin(ctx, s.DB, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("update last login failed")
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: sess.UserSessionExpiresAt,
		Actor:     actorFrom(user, sess),
	}, nil
}

// ========================== LOGOUT ==========================
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := authRepo.RevokeSession(ctx, s.DB, sessionID, s.Now()); err != nil {
		return err
	}
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, sessionID); err != nil {
			log.Warn().Err(err).Str("sid", sessionID.String()).Msg("session cache delete failed")
		}
	}
	return nil
}

// ========================== RESOLVE ==========================
// Resolve maps a raw session token to the caller it represents.
func (s *AuthService) Resolve(ctx context.Context, token string) (authModel.Actor, error) {
	sid, err := ParseSessionToken(s.Secret, token)
	if err != nil {
		return authModel.Actor{}, ErrSessionInvalid
	}
	now := s.Now()

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, sid)
		if err != nil {
			log.Warn().Err(err).Msg("session cache read failed")
		} else if cached != nil && now.Before(cached.ExpiresAt) {
			return cached.Actor, nil
		}
	}

	sess, err := authRepo.FindSessionByID(ctx, s.DB, sid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authModel.Actor{}, ErrSessionInvalid
		}
		return authModel.Actor{}, err
	}
	if !sess.Usable(now) {
		return authModel.Actor{}, ErrSessionInvalid
	}

	user, err := authRepo.FindUserByID(ctx, s.DB, sess.UserSessionUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authModel.Actor{}, ErrSessionInvalid
		}
		return authModel.Actor{}, err
	}
	if !user.IsActive {
		return authModel.Actor{}, ErrUserInactive
	}

	actor := actorFrom(user, sess)
	if sess.UserSessionLastSeenAt == nil || now.Sub(*sess.UserSessionLastSeenAt) > touchInterval {
		if err := authRepo.TouchSession(ctx, s.DB, sid, now); err != nil {
			log.Warn().Err(err).Msg("session touch failed")
		}
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, sid, CachedSession{Actor: actor, ExpiresAt: sess.UserSessionExpiresAt}); err != nil {
			log.Warn().Err(err).Msg("session cache write failed")
		}
	}
	return actor, nil
}

// ========================== USERS ==========================
func (s *AuthService) CreateUser(ctx context.Context, email, password, fullName, role string, tenantID *uuid.UUID) (*authModel.UserModel, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &authModel.UserModel{
		TenantID:     tenantID,
		FullName:     fullName,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := authRepo.CreateUser(ctx, s.DB, u); err != nil {
		return nil, err
	}
	return u, nil
}

func actorFrom(u *authModel.UserModel, s *authModel.UserSessionModel) authModel.Actor {
	return authModel.Actor{
		UserID:    u.ID,
		TenantID:  s.UserSessionTenantID,
		Role:      s.UserSessionRole,
		SessionID: s.UserSessionID,
		Email:     u.Email,
		FullName:  u.FullName,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
