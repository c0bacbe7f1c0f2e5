package service

const (
	PermissionAdministerUsers      = "administer users"
	PermissionAccessUserProfiles   = "access user profiles"
	PermissionAdministerSiteConfig = "administer site configuration"
)

// Viewer is the account a page is rendered for.
type Viewer struct {
	ID          int64
	permissions map[string]bool
}

// NewViewer creates a viewer holding permissions.
func NewViewer(id int64, permissions ...string) Viewer {
	v := Viewer{ID: id, permissions: make(map[string]bool, len(permissions))}
	for _, p := range permissions {
		v.permissions[p] = true
	}
	return v
}

func (v Viewer) HasPermission(permission string) bool {
	return v.permissions[permission]
}
