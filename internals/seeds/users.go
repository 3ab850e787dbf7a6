// Package seeds loads fixture data from JSON files.
package seeds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"polopay_backend/internals/constants"
	authModel "polopay_backend/internals/features/users/auth/model"
	authService "polopay_backend/internals/features/users/auth/service"
)

type UserSeed struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
}

// SeedResult counts what happened to each entry of the file.
type SeedResult struct {
	Created int
	Skipped int
	Failed  int
}

// SeedUsersFromJSON creates every user in filePath whose email is not taken yet.
// A bad entry is logged and counted, it never aborts the run.
func SeedUsersFromJSON(ctx context.Context, db *gorm.DB, svc *authService.AuthService, filePath string) (*SeedResult, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	var inputs []UserSeed
	if err := sonic.Unmarshal(raw, &inputs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}

	res := &SeedResult{}
	for _, in := range inputs {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		var n int64
		if err := db.WithContext(ctx).Model(&authModel.UserModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return res, err
		}
		if n > 0 {
			log.Info().Str("email", email).Msg("seed user exists, skipped")
			res.Skipped++
			continue
		}

		tenantID, err := in.tenant()
		if err != nil {
			log.Warn().Err(err).Str("email", email).Msg("seed user rejected")
			res.Failed++
			continue
		}
		if _, err := svc.CreateUser(ctx, email, in.Password, in.FullName, in.Role, tenantID); err != nil {
			log.Error().Err(err).Str("email", email).Msg("seed user insert failed")
			res.Failed++
			continue
		}
		log.Info().Str("email", email).Str("role", in.Role).Msg("seed user created")
		res.Created++
	}
	return res, nil
}

func (u UserSeed) tenant() (*uuid.UUID, error) {
	if u.Email == "" || len(u.Password) < 6 {
		return nil, fmt.Errorf("email and a password of at least 6 characters are required")
	}
	if !constants.IsValidRole(u.Role) {
		return nil, fmt.Errorf("unknown role %q", u.Role)
	}
	if u.TenantID == "" {
		if u.Role != constants.RoleMaster {
			return nil, fmt.Errorf("tenant_id is required for role %s", u.Role)
		}
		return nil, nil
	}
	id, err := uuid.Parse(u.TenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant_id: %w", err)
	}
	return &id, nil
}
