// Package rbac contiene la tabla estática rol → permisos.
package rbac

import "github.com/jhoicas/Bodega-api/internal/domain/entity"

// Permisos del sistema.
const (
	CatalogRead       = "catalog:read"
	CatalogWrite      = "catalog:write"
	InventoryRead     = "inventory:read"
	InventoryReceive  = "inventory:receive"
	InventoryAdjust   = "inventory:adjust"
	InventoryTransfer = "inventory:transfer"
	PurchasingRead    = "purchasing:read"
	PurchasingWrite   = "purchasing:write"
	PurchasingReceive = "purchasing:receive"
	SalesRead         = "sales:read"
	SalesWrite        = "sales:write"
	SalesShip         = "sales:ship"
	AssemblyWrite     = "assembly:write"
	ApprovalsReview   = "approvals:review"
	ReportsRead       = "reports:read"
	AuditRead         = "audit:read"
	UsersManage       = "users:manage"
)

// All lista completa de permisos (admin los tiene todos).
var All = []string{
	CatalogRead, CatalogWrite,
	InventoryRead, InventoryReceive, InventoryAdjust, InventoryTransfer,
	PurchasingRead, PurchasingWrite, PurchasingReceive,
	SalesRead, SalesWrite, SalesShip,
	AssemblyWrite, ApprovalsReview, ReportsRead, AuditRead, UsersManage,
}

var rolePermissions = map[string][]string{
	entity.RoleAdmin: All,
	entity.RoleSupervisor: {
		CatalogRead, CatalogWrite,
		InventoryRead, InventoryReceive, InventoryAdjust, InventoryTransfer,
		PurchasingRead, PurchasingWrite, PurchasingReceive,
		SalesRead, SalesWrite, SalesShip,
		AssemblyWrite, ApprovalsReview, ReportsRead, AuditRead,
	},
	entity.RoleBodeguero: {
		CatalogRead,
		InventoryRead, InventoryReceive, InventoryAdjust, InventoryTransfer,
		PurchasingRead, PurchasingReceive,
		SalesRead, SalesShip,
		AssemblyWrite,
	},
	entity.RoleComprador: {
		CatalogRead, InventoryRead,
		PurchasingRead, PurchasingWrite,
		ReportsRead,
	},
	entity.RoleVendedor: {
		CatalogRead, InventoryRead,
		SalesRead, SalesWrite,
	},
	entity.RoleAuditor: {
		CatalogRead, InventoryRead, PurchasingRead, SalesRead,
		ReportsRead, AuditRead,
	},
}

// IsValidRole informa si el rol existe en la tabla.
func IsValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission indica si el rol tiene el permiso.
func HasPermission(role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Permissions devuelve una copia de los permisos del rol.
func Permissions(role string) []string {
	src := rolePermissions[role]
	out := make([]string, len(src))
	copy(out, src)
	return out
}
