package constants

import "fmt"

const (
	RoleMaster   = "master"
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

const (
	PermInstallmentsCreate  = "installments.create"
	PermInstallmentsView    = "installments.view"
	PermInstallmentsSync    = "installments.sync"
	PermSplitsManage        = "splits.manage"
	PermPaymentBookGenerate = "payment_book.generate"
	PermReportsView         = "reports.view"
	PermGatewayHealth       = "gateway.health"
	PermUsersManage         = "users.manage"
)

// Error message templates
const (
	ErrPermissionDenied = "permission denied: %s"
)

func PermissionError(perm string) string {
	return fmt.Sprintf(ErrPermissionDenied, perm)
}

// ==========================
// Role -> permissions
// ==========================
var rolePermissions = map[string]map[string]bool{
	RoleAdmin: set(
		PermInstallmentsCreate, PermInstallmentsView, PermInstallmentsSync,
		PermSplitsManage, PermPaymentBookGenerate, PermReportsView, PermGatewayHealth,
	),
	RoleOperator: set(
		PermInstallmentsCreate, PermInstallmentsView, PermInstallmentsSync, PermPaymentBookGenerate,
	),
	RoleViewer: set(PermInstallmentsView, PermReportsView),
}

var AllRoles = []string{RoleMaster, RoleAdmin, RoleOperator, RoleViewer}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleHas reports whether role grants perm. Master holds every permission.
func RoleHas(role, perm string) bool {
	if role == RoleMaster {
		return true
	}
	return rolePermissions[role][perm]
}

func set(perms ...string) map[string]bool {
	m := make(map[string]bool, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return m
}
