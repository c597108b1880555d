// Package authz holds the role/permission policy table. It is the
// single source of truth for both the request gate in the router and
// the capability grants returned to clients from /api/me.
package authz

import "shopfront/internal/model"

// Permission names an operation class a role may be granted.
type Permission string

const (
	// ViewCatalog covers product detail and category reads.
	ViewCatalog Permission = "view_catalog"
	// ManageProducts covers product create/update/delete.
	ManageProducts Permission = "manage_products"
	// ManageCategories covers category create/update/delete.
	ManageCategories Permission = "manage_categories"
	// ManageUsers covers all user management operations.
	ManageUsers Permission = "manage_users"
)

var rolePermissions = map[model.Role][]Permission{
	model.RoleAdmin: {ViewCatalog, ManageProducts, ManageCategories, ManageUsers},
	model.RoleUser:  {ViewCatalog},
}

// Can reports whether the role is granted the permission. Unknown
// roles hold no permissions.
func Can(role model.Role, p Permission) bool {
	for _, granted := range rolePermissions[role] {
		if granted == p {
			return true
		}
	}
	return false
}

// Grants returns the full permission map for a role. Clients use it to
// decide what UI to show; the server-side check stays authoritative.
func Grants(role model.Role) map[Permission]bool {
	grants := map[Permission]bool{
		ViewCatalog:      false,
		ManageProducts:   false,
		ManageCategories: false,
		ManageUsers:      false,
	}
	for _, p := range rolePermissions[role] {
		grants[p] = true
	}
	return grants
}
