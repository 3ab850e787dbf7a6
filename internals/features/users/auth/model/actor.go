package model

import (
	"github.com/google/uuid"

	"polopay_backend/internals/constants"
)

// Actor is the authenticated caller resolved from a session, passed explicitly
// into services instead of living in request globals.
type Actor struct {
	UserID    uuid.UUID  `json:"user_id"`
	TenantID  *uuid.UUID `json:"tenant_id"`
	Role      string     `json:"role"`
	SessionID uuid.UUID  `json:"session_id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
}

func (a Actor) Can(perm string) bool {
	return constants.RoleHas(a.Role, perm)
}

func (a Actor) IsMaster() bool {
	return a.Role == constants.RoleMaster
}

// CanAccessTenant reports whether the actor may read or write data scoped to tenantID.
func (a Actor) CanAccessTenant(tenantID *uuid.UUID) bool {
	if a.IsMaster() {
		return true
	}
	if a.TenantID == nil || tenantID == nil {
		return false
	}
	return *a.TenantID == *tenantID
}
