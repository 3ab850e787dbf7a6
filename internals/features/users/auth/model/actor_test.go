package model

import (
	"testing"

	"github.com/google/uuid"

	"polopay_backend/internals/constants"
)

func TestActorCanAccessTenant(t *testing.T) {
	polo := uuid.New()
	other := uuid.New()

	master := Actor{Role: constants.RoleMaster}
	admin := Actor{Role: constants.RoleAdmin, TenantID: &polo}
	orphan := Actor{Role: constants.RoleAdmin}

	if !master.CanAccessTenant(&other) || !master.CanAccessTenant(nil) {
		t.Error("master should reach every tenant")
	}
	if !admin.CanAccessTenant(&polo) {
		t.Error("admin should reach own tenant")
	}
	if admin.CanAccessTenant(&other) {
		t.Error("admin reached a foreign tenant")
	}
	if orphan.CanAccessTenant(&polo) {
		t.Error("actor without tenant reached a tenant")
	}
}
